package converter

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/graph"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/shell"
	"github.com/dbsmedya/targets2config/internal/vcs"
)

// PreflightError represents a preflight check failure.
type PreflightError struct {
	Check   string
	Message string
	Items   []string
	Err     error
}

func (e *PreflightError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Check, e.Message)
	if len(e.Items) > 0 {
		msg += fmt.Sprintf(" (%v)", e.Items)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PreflightError) Unwrap() error {
	return e.Err
}

// PreflightChecker verifies the environment before a run touches any file.
type PreflightChecker struct {
	cfg      *config.Config
	fs       afero.Fs
	repo     vcs.Repository
	lookPath func(string) (string, error)
	logger   *logger.Logger
}

// NewPreflightChecker creates a new preflight checker.
func NewPreflightChecker(cfg *config.Config, fs afero.Fs, repo vcs.Repository, log *logger.Logger) (*PreflightChecker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if fs == nil {
		return nil, fmt.Errorf("filesystem is nil")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &PreflightChecker{
		cfg:      cfg,
		fs:       fs,
		repo:     repo,
		lookPath: shell.LookPath,
		logger:   log,
	}, nil
}

// RunAllChecks runs all preflight checks and stops at the first failure.
func (p *PreflightChecker) RunAllChecks(ctx context.Context) error {
	p.logger.Info("Running preflight checks...")

	if err := p.ValidateCommands(); err != nil {
		return err
	}
	if err := p.ValidateSubdirectory(); err != nil {
		return err
	}
	if err := p.ValidateRepository(ctx); err != nil {
		return err
	}

	p.logger.Info("All preflight checks PASSED")
	return nil
}

// RequiredCommands returns the external commands the configuration uses.
func (p *PreflightChecker) RequiredCommands() []string {
	commands := []string{p.cfg.Build.Command, p.cfg.Checker.Command, p.cfg.VCS.Command}
	if p.cfg.Run.Lint {
		commands = append(commands, p.cfg.Lint.Command, p.cfg.Format.Command)
	}
	return lo.Uniq(lo.Compact(commands))
}

// ValidateCommands checks that every required command is on PATH.
func (p *PreflightChecker) ValidateCommands() error {
	p.logger.Debug("Checking required commands...")

	missing := lo.Filter(p.RequiredCommands(), func(command string, _ int) bool {
		_, err := p.lookPath(command)
		return err != nil
	})
	if len(missing) > 0 {
		return &PreflightError{
			Check:   "COMMAND_CHECK",
			Message: "required commands not found on PATH",
			Items:   missing,
		}
	}

	p.logger.Debugf("Command check PASSED (%d commands)", len(p.RequiredCommands()))
	return nil
}

// ValidateSubdirectory checks that the subdirectory exists.
func (p *PreflightChecker) ValidateSubdirectory() error {
	dir := graph.Clean(p.cfg.Run.Subdirectory)
	exists, err := afero.DirExists(p.fs, dir)
	if err != nil {
		return &PreflightError{Check: "SUBDIRECTORY_CHECK", Message: "cannot inspect subdirectory", Items: []string{dir}, Err: err}
	}
	if !exists {
		return &PreflightError{Check: "SUBDIRECTORY_CHECK", Message: "subdirectory does not exist", Items: []string{dir}}
	}
	return nil
}

// ValidateRepository checks that the root is under version control.
func (p *PreflightChecker) ValidateRepository(ctx context.Context) error {
	if err := p.repo.IsRepository(ctx); err != nil {
		message := "repository check failed"
		if errors.Is(err, vcs.ErrNotRepository) {
			message = "root is not a version controlled repository"
		}
		return &PreflightError{Check: "REPOSITORY_CHECK", Message: message, Err: err}
	}
	return nil
}
