// Package lint runs the repository linter and formatter over converted
// directories.
package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/shell"
)

// Linter runs the configured lint command.
type Linter struct {
	runner  shell.Runner
	root    string
	command string
	args    []string
	logger  *logger.Logger
}

// New creates a Linter that runs in root.
func New(runner shell.Runner, root string, cfg config.CommandConfig, log *logger.Logger) *Linter {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Linter{
		runner:  runner,
		root:    root,
		command: cfg.Command,
		args:    append([]string(nil), cfg.Args...),
		logger:  log,
	}
}

// Lint runs `<command> <args...> <dir>`. Lint findings are reported through
// the exit status and are not an error; only a linter that could not run is.
func (l *Linter) Lint(ctx context.Context, dir string) error {
	args := append(append([]string(nil), l.args...), dir)
	out, err := l.runner.Output(ctx, l.root, l.command, args...)
	if err != nil {
		var exit *shell.ExitError
		if errors.As(err, &exit) && ctx.Err() == nil {
			l.logger.WithDirectory(dir).Warnw("Linter reported problems", "error", err)
			return nil
		}
		return fmt.Errorf("failed to lint %s: %w", dir, err)
	}
	l.logger.WithDirectory(dir).Debugw("Lint finished", "output_bytes", len(out))
	return nil
}
