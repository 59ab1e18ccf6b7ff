package runner_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/lhci-action/internal/runner"
)

// fakeEngine prints its verb and arguments, then succeeds only for collect.
var fakeEngine = []string{"sh", "-c", `echo "$0 $*"; [ "$0" = collect ]`}

func newFakeExec(t *testing.T) (*runner.Exec, *bytes.Buffer) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var out bytes.Buffer
	e := runner.NewExec(fakeEngine)
	e.Stdin = nil
	e.Stdout = &out
	e.Stderr = &out
	return e, &out
}

func TestExecSuccess(t *testing.T) {
	e, out := newFakeExec(t)
	code, err := e.RunStage(context.Background(), runner.Collect, []string{"--url=https://a.test", "--numberOfRuns=2"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "collect --url=https://a.test --numberOfRuns=2\n", out.String())
}

func TestExecNonZeroExit(t *testing.T) {
	e, _ := newFakeExec(t)
	code, err := e.RunStage(context.Background(), runner.Assert, []string{"--budgetsFile=budget.json"})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestExecMissingBinary(t *testing.T) {
	e := runner.NewExec([]string{"lhci-action-no-such-binary"})
	code, err := e.RunStage(context.Background(), runner.Upload, nil)
	require.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestExecNoCommand(t *testing.T) {
	e := runner.NewExec(nil)
	_, err := e.RunStage(context.Background(), runner.Collect, nil)
	require.Error(t, err)
}
