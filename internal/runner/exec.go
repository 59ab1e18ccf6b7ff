package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Exec runs the engine as a local process that shares the parent's
// standard streams.
type Exec struct {
	Command []string
	Dir     string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

func NewExec(command []string) *Exec {
	return &Exec{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func (e *Exec) RunStage(ctx context.Context, verb Verb, args []string) (int, error) {
	if len(e.Command) == 0 {
		return -1, errors.New("no engine command configured")
	}
	argv := make([]string, 0, len(e.Command)+len(args))
	argv = append(argv, e.Command[1:]...)
	argv = append(argv, string(verb))
	argv = append(argv, args...)

	cmd := exec.CommandContext(ctx, e.Command[0], argv...)
	cmd.Dir = e.Dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("running %s %s: %w", strings.Join(e.Command, " "), verb, err)
	}
	return 0, nil
}
