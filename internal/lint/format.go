package lint

import (
	"context"
	"fmt"

	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/shell"
)

// Formatter runs the configured formatter over the files a conversion
// touched.
type Formatter struct {
	runner  shell.Runner
	root    string
	command string
	args    []string
	logger  *logger.Logger
}

// NewFormatter creates a Formatter that runs in root.
func NewFormatter(runner shell.Runner, root string, cfg config.CommandConfig, log *logger.Logger) *Formatter {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Formatter{
		runner:  runner,
		root:    root,
		command: cfg.Command,
		args:    append([]string(nil), cfg.Args...),
		logger:  log,
	}
}

// Format runs `<command> <args...> <files...>`. Nothing runs for an empty
// file list. Unlike Lint, a non-zero exit is an error.
func (f *Formatter) Format(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	args := append(append([]string(nil), f.args...), files...)
	if _, err := f.runner.Output(ctx, f.root, f.command, args...); err != nil {
		return fmt.Errorf("failed to format %d files: %w", len(files), err)
	}
	f.logger.WithCommand(f.command).Debugw("Formatted files", "files", len(files))
	return nil
}
