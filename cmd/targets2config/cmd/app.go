package cmd

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/dbsmedya/targets2config/internal/buck"
	"github.com/dbsmedya/targets2config/internal/buildfile"
	"github.com/dbsmedya/targets2config/internal/checker"
	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/converter"
	"github.com/dbsmedya/targets2config/internal/expander"
	"github.com/dbsmedya/targets2config/internal/lint"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/reducer"
	"github.com/dbsmedya/targets2config/internal/shell"
	"github.com/dbsmedya/targets2config/internal/suppress"
	"github.com/dbsmedya/targets2config/internal/vcs"
)

// app bundles the wired collaborators of one command invocation.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	fs        afero.Fs
	repo      *vcs.Git
	converter *converter.Converter
}

// newApp wires the real collaborators: external commands run through
// shell.ExecRunner and files are accessed through an afero filesystem
// rooted at the repository root.
func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	return newAppWithRunner(cfg, log, shell.NewExecRunner(log), afero.NewBasePathFs(afero.NewOsFs(), cfg.Root))
}

func newAppWithRunner(cfg *config.Config, log *logger.Logger, runner shell.Runner, fs afero.Fs) (*app, error) {
	client := buck.NewClient(runner, cfg.Root, cfg.Build)
	repo := vcs.NewGit(runner, cfg.Root, cfg.VCS, log)

	deps := converter.Dependencies{
		Fs:         fs,
		Expander:   expander.New(client, cfg.Build.Kinds, log),
		Reducer:    reducer.New(client, log),
		Checker:    checker.New(runner, cfg.Checker, log),
		Suppressor: suppress.New(fs, cfg.Tool, cfg.Suppression, log),
		Cleaner:    buildfile.NewCleaner(fs, cfg.Build, log),
		VCS:        repo,
	}
	if cfg.Run.Lint {
		deps.Linter = lint.New(runner, cfg.Root, cfg.Lint, log)
		if cfg.Format.Command != "" {
			deps.Formatter = lint.NewFormatter(runner, cfg.Root, cfg.Format, log)
		}
	}

	conv, err := converter.New(cfg, deps, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create converter: %w", err)
	}
	return &app{cfg: cfg, log: log, fs: fs, repo: repo, converter: conv}, nil
}

// setup loads configuration, builds the logger and wires the app.
func setup() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApp(cfg, log)
}
