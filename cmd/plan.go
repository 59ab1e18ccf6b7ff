package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/lhci-action/internal/config"
	"github.com/signalnine/lhci-action/internal/pipeline"
	"github.com/signalnine/lhci-action/internal/runner"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Validate inputs and print the engine commands a run would execute",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			rec := &runner.Recorder{}
			pipeline.New(rec).Run(cmd.Context(), cfg)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Targets: %d  Upload: %s  Engine: %s\n", len(cfg.Targets()), cfg.Upload, cfg.Engine)
			prefix := enginePrefix(cfg)
			for _, inv := range rec.Calls {
				fmt.Fprintf(out, "  %s %s\n", prefix, redact(inv).String())
			}
			return nil
		},
	}
}

func enginePrefix(cfg config.Config) string {
	if cfg.Engine == "docker" {
		return "docker run " + cfg.EngineImage + " lhci"
	}
	return strings.Join(cfg.LHCICommand, " ")
}

func redact(inv runner.Invocation) runner.Invocation {
	args := make([]string, len(inv.Args))
	for i, a := range inv.Args {
		if strings.HasPrefix(a, "--token=") {
			a = "--token=***"
		}
		args[i] = a
	}
	return runner.Invocation{Verb: inv.Verb, Args: args}
}
