// Package shell runs the external commands every collaborator of
// targets2config is built on (build graph queries, the type checker,
// the linter and version control).
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dbsmedya/targets2config/internal/logger"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("running %q failed with exit code %d", e.Command, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	logger *logger.Logger
}

// NewExecRunner creates a Runner that executes real processes.
func NewExecRunner(log *logger.Logger) *ExecRunner {
	if log == nil {
		log = logger.NewDefault()
	}
	return &ExecRunner{logger: log}
}

// Output runs name with args in dir. When the command exits non-zero the
// captured stdout is still returned alongside an *ExitError.
func (r *ExecRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	quoted := make([]string, 0, len(args))
	for i := range args {
		quoted = append(quoted, fmt.Sprintf("%q", args[i]))
	}
	r.logger.WithCommand(name).Debugw("exec", "args", strings.Join(quoted, " "), "dir", dir)

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.Bytes(), fmt.Errorf("running %q: %w", name, ctxErr)
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return stdout.Bytes(), &ExitError{
			Command: strings.TrimSpace(name + " " + strings.Join(args, " ")),
			Code:    ee.ExitCode(),
			Stderr:  strings.TrimSpace(stderr.String()),
		}
	}
	return nil, fmt.Errorf("failed to run %q: %w", name, err)
}

// LookPath reports whether name resolves to an executable.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
