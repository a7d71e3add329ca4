package shell

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/targets2config/internal/logger"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunnerOutput(t *testing.T) {
	skipWithoutShell(t)
	r := NewExecRunner(logger.NewNop())

	out, err := r.Output(context.Background(), t.TempDir(), "sh", "-c", "printf 'a\\nb'")
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(out))
}

func TestExecRunnerExitError(t *testing.T) {
	skipWithoutShell(t)
	r := NewExecRunner(logger.NewNop())

	out, err := r.Output(context.Background(), "", "sh", "-c", "echo partial; echo broken >&2; exit 3")
	require.Error(t, err)

	var exit *ExitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 3, exit.Code)
	assert.Equal(t, "broken", exit.Stderr)
	assert.Equal(t, "partial\n", string(out))
	assert.Contains(t, err.Error(), "exit code 3")
}

func TestExecRunnerMissingCommand(t *testing.T) {
	r := NewExecRunner(logger.NewNop())

	_, err := r.Output(context.Background(), "", "targets2config-no-such-binary")
	require.Error(t, err)
	var exit *ExitError
	assert.False(t, errors.As(err, &exit))
}

func TestExecRunnerContextTimeout(t *testing.T) {
	skipWithoutShell(t)
	r := NewExecRunner(logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Output(ctx, "", "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
