// Package vcs stages and commits the files a conversion run touches.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/shell"
)

// ErrNotRepository is returned when the root is not inside a work tree.
var ErrNotRepository = errors.New("not a version controlled repository")

// Repository is the version control collaborator.
type Repository interface {
	Stage(ctx context.Context, paths []string) error
	Submit(ctx context.Context, message string) error
	RevertAll(ctx context.Context) error
	IsRepository(ctx context.Context) error
}

// Git drives the git command line in the repository root.
type Git struct {
	runner  shell.Runner
	root    string
	command string
	logger  *logger.Logger
}

// NewGit creates a Git collaborator.
func NewGit(runner shell.Runner, root string, cfg config.VCSConfig, log *logger.Logger) *Git {
	if log == nil {
		log = logger.NewDefault()
	}
	command := cfg.Command
	if command == "" {
		command = "git"
	}
	return &Git{runner: runner, root: root, command: command, logger: log}
}

// Stage adds paths to the index. An empty list is a no-op.
func (g *Git) Stage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if _, err := g.runner.Output(ctx, g.root, g.command, args...); err != nil {
		return fmt.Errorf("failed to stage %d paths: %w", len(paths), err)
	}
	g.logger.Debugw("Staged paths", "paths", paths)
	return nil
}

// Submit commits every tracked change with message.
func (g *Git) Submit(ctx context.Context, message string) error {
	if message == "" {
		message = config.DefaultCommitMessage
	}
	if _, err := g.runner.Output(ctx, g.root, g.command, "commit", "--all", "--message", message); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	g.logger.Infow("Committed changes", "message", firstLine(message))
	return nil
}

// RevertAll discards every uncommitted change to tracked files.
func (g *Git) RevertAll(ctx context.Context) error {
	if _, err := g.runner.Output(ctx, g.root, g.command, "checkout", "--", "."); err != nil {
		return fmt.Errorf("failed to revert changes: %w", err)
	}
	g.logger.Warnw("Reverted uncommitted changes")
	return nil
}

// IsRepository returns ErrNotRepository when root is not a git work tree.
func (g *Git) IsRepository(ctx context.Context) error {
	out, err := g.runner.Output(ctx, g.root, g.command, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(string(out)) != "true" {
		return fmt.Errorf("%w: %s", ErrNotRepository, g.root)
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
