// Package pipeline drives the collect, assert and upload stages for each
// target URL and aggregates assertion failures into the run's verdict.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/signalnine/lhci-action/internal/config"
	"github.com/signalnine/lhci-action/internal/metrics"
	"github.com/signalnine/lhci-action/internal/runner"
)

var ErrAssertionsFailed = errors.New("assertions failed")

type Status int

const (
	StatusSkipped Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "skipped"
	}
}

// Outcome is the per-stage status of one target.
type Outcome struct {
	URL     string
	Collect Status
	Assert  Status
	Upload  Status
}

type Result struct {
	Outcomes []Outcome
	// FailedURLs lists targets whose assertions failed, in input order,
	// each at most once.
	FailedURLs []string
}

// Err is nil when no target failed its assertions.
func (r *Result) Err() error {
	if len(r.FailedURLs) == 0 {
		return nil
	}
	return fmt.Errorf("%w for %d url(s): %s", ErrAssertionsFailed, len(r.FailedURLs), strings.Join(r.FailedURLs, ", "))
}

// Console receives the operator-facing stage markers and annotations.
// *githubactions.Action satisfies it.
type Console interface {
	Group(title string)
	EndGroup()
	Errorf(msg string, args ...any)
	Warningf(msg string, args ...any)
}

type Orchestrator struct {
	runner  runner.Runner
	logger  *zap.Logger
	console Console
	metrics *metrics.Recorder
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

func WithConsole(c Console) Option { return func(o *Orchestrator) { o.console = c } }

func WithMetrics(m *metrics.Recorder) Option { return func(o *Orchestrator) { o.metrics = m } }

func New(r runner.Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:  r,
		logger:  zap.NewNop(),
		console: nopConsole{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every target sequentially. Stage failures never stop the
// loop; only assertion failures affect the result's verdict.
func (o *Orchestrator) Run(ctx context.Context, cfg config.Config) *Result {
	res := &Result{}
	for _, target := range cfg.Targets() {
		out := o.runTarget(ctx, cfg, target)
		res.Outcomes = append(res.Outcomes, out)
		if out.Assert == StatusFailure && !slices.Contains(res.FailedURLs, target) {
			res.FailedURLs = append(res.FailedURLs, target)
		}
	}
	o.metrics.SetFailedURLs(len(res.FailedURLs))
	o.logger.Info("pipeline finished",
		zap.Int("targets", len(res.Outcomes)),
		zap.Strings("failed_urls", res.FailedURLs),
	)
	return res
}

func (o *Orchestrator) runTarget(ctx context.Context, cfg config.Config, target string) Outcome {
	out := Outcome{URL: target}

	out.Collect = o.stage(ctx, runner.Collect, "Collecting", target, CollectArgs(cfg, target))
	if out.Collect == StatusFailure {
		o.console.Errorf("LHCI 'collect' has encountered a problem for %s", target)
		return out
	}

	if args, ok := AssertArgs(cfg); ok {
		out.Assert = o.stage(ctx, runner.Assert, "Asserting", target, args)
		if out.Assert == StatusFailure {
			o.console.Warningf("Assertions have failed for %s", target)
		}
	} else {
		o.metrics.ObserveStage(string(runner.Assert), StatusSkipped.String(), 0)
	}

	if args, ok := UploadArgs(cfg.Upload); ok {
		out.Upload = o.stage(ctx, runner.Upload, "Uploading", target, args)
		if out.Upload == StatusFailure {
			o.console.Errorf("LHCI 'upload' has encountered a problem for %s", target)
		}
	} else {
		o.metrics.ObserveStage(string(runner.Upload), StatusSkipped.String(), 0)
	}
	return out
}

func (o *Orchestrator) stage(ctx context.Context, verb runner.Verb, title, target string, args []string) Status {
	o.console.Group(title + " " + target)
	defer o.console.EndGroup()

	log := o.logger.With(zap.String("stage", string(verb)), zap.String("url", target))
	start := time.Now()
	code, err := o.runner.RunStage(ctx, verb, args)
	elapsed := time.Since(start)

	status := StatusSuccess
	switch {
	case err != nil:
		status = StatusFailure
		log.Error("stage could not run", zap.Error(err))
	case code != 0:
		status = StatusFailure
		log.Warn("stage failed", zap.Int("exit_code", code), zap.Duration("elapsed", elapsed))
	default:
		log.Info("stage succeeded", zap.Duration("elapsed", elapsed))
	}
	o.metrics.ObserveStage(string(verb), status.String(), elapsed)
	return status
}

type nopConsole struct{}

func (nopConsole) Group(string)            {}
func (nopConsole) EndGroup()               {}
func (nopConsole) Errorf(string, ...any)   {}
func (nopConsole) Warningf(string, ...any) {}
