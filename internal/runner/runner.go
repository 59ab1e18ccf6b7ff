// Package runner invokes the audit engine's collect, assert and upload
// commands. Failures are detected by exit status alone.
package runner

import (
	"context"
	"slices"
	"strings"
)

type Verb string

const (
	Collect Verb = "collect"
	Assert  Verb = "assert"
	Upload  Verb = "upload"
)

// Runner runs one engine stage to completion and reports its exit code. A
// non-nil error means the stage could not be started at all.
type Runner interface {
	RunStage(ctx context.Context, verb Verb, args []string) (int, error)
}

type Func func(ctx context.Context, verb Verb, args []string) (int, error)

func (f Func) RunStage(ctx context.Context, verb Verb, args []string) (int, error) {
	return f(ctx, verb, args)
}

type Invocation struct {
	Verb Verb
	Args []string
}

func (i Invocation) String() string {
	return strings.Join(append([]string{string(i.Verb)}, i.Args...), " ")
}

// Recorder records every invocation without running anything. ExitCode, when
// set, decides each stage's exit code; otherwise every stage succeeds.
type Recorder struct {
	Calls    []Invocation
	ExitCode func(inv Invocation) int
}

func (r *Recorder) RunStage(_ context.Context, verb Verb, args []string) (int, error) {
	inv := Invocation{Verb: verb, Args: slices.Clone(args)}
	r.Calls = append(r.Calls, inv)
	if r.ExitCode == nil {
		return 0, nil
	}
	return r.ExitCode(inv), nil
}

// CallsFor returns the recorded invocations whose arguments contain arg.
func (r *Recorder) CallsFor(arg string) []Invocation {
	var out []Invocation
	for _, c := range r.Calls {
		if slices.Contains(c.Args, arg) {
			out = append(out, c)
		}
	}
	return out
}
