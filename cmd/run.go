package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalnine/lhci-action/internal/config"
	"github.com/signalnine/lhci-action/internal/logging"
	"github.com/signalnine/lhci-action/internal/metrics"
	"github.com/signalnine/lhci-action/internal/pipeline"
	"github.com/signalnine/lhci-action/internal/report"
	"github.com/signalnine/lhci-action/internal/runner"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Collect, assert and upload every configured URL, then print a summary",
		RunE:  runPipeline,
	}
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	logger, err := logging.New(!flagLogJSON)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	gha := githubactions.New(githubactions.WithWriter(cmd.OutOrStdout()))
	gha.Group("Action config")
	logger.Info("inputs resolved",
		zap.Strings("targets", cfg.Targets()),
		zap.Int("runs", cfg.NumberOfRuns),
		zap.String("budget_path", cfg.BudgetPath),
		zap.Bool("rc_file", cfg.RcFile != nil),
		zap.Stringer("upload", cfg.Upload),
		zap.String("engine", cfg.Engine),
	)
	gha.EndGroup()

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}
	m := metrics.New()
	res := pipeline.New(r,
		pipeline.WithLogger(logger),
		pipeline.WithConsole(gha),
		pipeline.WithMetrics(m),
	).Run(cmd.Context(), cfg)

	if cfg.MetricsPath != "" {
		if err := m.WriteTextfile(cfg.MetricsPath); err != nil {
			logger.Warn("metrics not written", zap.Error(err))
		}
	}

	writeSummary(cmd, gha, cfg, logger)

	if err := res.Err(); err != nil {
		gha.Errorf("%s", err.Error())
		return err
	}
	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func newRunner(cfg config.Config) (runner.Runner, error) {
	switch cfg.Engine {
	case "docker":
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working dir: %w", err)
		}
		return runner.NewDocker(cfg.EngineImage, wd)
	default:
		return runner.NewExec(cfg.LHCICommand), nil
	}
}

// writeSummary prints the terminal summary and, inside a workflow, appends
// the markdown form to the job's step summary. Neither can fail the run.
func writeSummary(cmd *cobra.Command, gha *githubactions.Action, cfg config.Config, logger *zap.Logger) {
	gha.Group("Summary")
	err := report.Generate(cfg.ResultsPath, "table", cmd.OutOrStdout(),
		report.WithLogger(logger),
		report.WithForceColor(os.Getenv("GITHUB_ACTIONS") == "true"),
	)
	gha.EndGroup()
	if err != nil {
		logger.Warn("summary not rendered", zap.Error(err))
	}

	if os.Getenv("GITHUB_STEP_SUMMARY") == "" {
		return
	}
	var md bytes.Buffer
	if err := report.Generate(cfg.ResultsPath, "markdown", &md, report.WithLogger(logger)); err != nil {
		logger.Warn("step summary not rendered", zap.Error(err))
		return
	}
	gha.AddStepSummary(md.String())
}
