// Package converter turns discovered build targets into per-directory type
// checker configurations and drives a whole conversion run.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/dbsmedya/targets2config/internal/checker"
	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/graph"
	"github.com/dbsmedya/targets2config/internal/localconfig"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/suppress"
	"github.com/dbsmedya/targets2config/internal/vcs"
)

// Dependencies are the collaborators a Converter drives. Fs is rooted at the
// repository root; every path handed to it is repository relative.
type Dependencies struct {
	Fs         afero.Fs
	Expander   TargetExpander
	Reducer    TargetDeduplicator
	Checker    ErrorCollector
	Suppressor ErrorSuppressor
	Cleaner    TypingFieldCleaner
	Linter     DirectoryLinter
	Formatter  FileFormatter
	VCS        vcs.Repository
}

// Converter coordinates discovery, merging, persistence and suppression for
// every directory of a run.
type Converter struct {
	cfg      *config.Config
	deps     Dependencies
	filename string
	only     []glob.Glob
	staged   []string
	logger   *logger.Logger
}

// New creates a Converter. All dependencies except Linter and Formatter are
// required. Both run only when linting is enabled, and Formatter may be nil
// when no format command is configured.
func New(cfg *config.Config, deps Dependencies, log *logger.Logger) (*Converter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if deps.Fs == nil || deps.Expander == nil || deps.Reducer == nil || deps.Checker == nil ||
		deps.Suppressor == nil || deps.Cleaner == nil || deps.VCS == nil {
		return nil, fmt.Errorf("missing converter dependency")
	}
	if cfg.Run.Lint && deps.Linter == nil {
		return nil, fmt.Errorf("linting is enabled but no linter is configured")
	}
	if cfg.Run.Lint && cfg.Format.Command != "" && deps.Formatter == nil {
		return nil, fmt.Errorf("a format command is configured but no formatter is set")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	only := make([]glob.Glob, 0, len(cfg.Run.Only))
	for _, pattern := range cfg.Run.Only {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid directory pattern %q: %w", pattern, err)
		}
		only = append(only, g)
	}

	return &Converter{
		cfg:      cfg,
		deps:     deps,
		filename: cfg.ConfigurationFilename(),
		only:     only,
		logger:   log,
	}, nil
}

// Staged returns the newly created configuration files waiting to be staged.
func (c *Converter) Staged() []string {
	return append([]string(nil), c.staged...)
}

func (c *Converter) subdirectory() string {
	return graph.Clean(c.cfg.Run.Subdirectory)
}

func (c *Converter) configPath(dir string) string {
	return path.Join(dir, c.filename)
}

// ConfigurationFiles returns every configuration file under the
// subdirectory, outer configurations before the ones nested in them.
func (c *Converter) ConfigurationFiles() ([]string, error) {
	forest, err := c.forest()
	if err != nil {
		return nil, err
	}
	return lo.Map(forest.TopologicalOrder(), func(dir string, _ int) string {
		return c.configPath(dir)
	}), nil
}

// forest links the directories holding a configuration file under the
// subdirectory to their nearest configured ancestor.
func (c *Converter) forest() (*graph.Forest, error) {
	root := c.subdirectory()
	forest := graph.NewForest()
	err := afero.Walk(c.deps.Fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == c.filename {
			forest.Add(path.Dir(filepath.ToSlash(p)))
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to search %s for configurations: %w", root, err)
	}
	return forest, nil
}

// Directories returns the directories a run converts: the outermost
// directories already holding a configuration, ordered by (depth, path),
// or the subdirectory itself when there are none. Nested configurations
// are covered by their nearest configured ancestor.
func (c *Converter) Directories() ([]string, error) {
	forest, err := c.forest()
	if err != nil {
		return nil, err
	}

	dirs := forest.Roots()
	if len(dirs) == 0 {
		dirs = []string{c.subdirectory()}
	}
	for _, dir := range dirs {
		if nested := forest.Descendants(dir); len(nested) > 0 {
			c.logger.WithDirectory(dir).Debugw("Skipping nested configurations", "nested", nested)
		}
	}

	if len(c.only) == 0 {
		return dirs, nil
	}
	return lo.Filter(dirs, func(dir string, _ int) bool {
		return lo.SomeBy(c.only, func(g glob.Glob) bool { return g.Match(dir) })
	}), nil
}

// ConvertDirectory creates or merges the configuration for dir, then cleans
// build files and suppresses the resulting type errors. With linting on, the
// touched files are formatted and dir is linted afterwards; failures there
// are warnings. Newly created configurations are queued for staging.
func (c *Converter) ConvertDirectory(ctx context.Context, dir string) (*DirectoryResult, error) {
	start := time.Now()
	dir = graph.Clean(dir)
	log := c.logger.WithDirectory(dir)
	result := &DirectoryResult{Dir: dir, ConfigPath: c.configPath(dir)}
	defer func() { result.Duration = time.Since(start) }()

	discovered, dirs := c.deps.Expander.Targets(ctx, dir, c.cfg.Run.Glob)
	if dirs != nil {
		result.Discovered = dirs.TargetCount()
	}
	if len(discovered) == 0 {
		log.Warnw("No targets discovered, skipping directory")
		result.Skipped = true
		return result, nil
	}

	configuration, err := c.merge(ctx, result.ConfigPath, discovered)
	if err != nil {
		result.Err = err
		return result, err
	}
	result.Created = configuration.Created()

	if err := configuration.Write(c.deps.Fs); err != nil {
		result.Err = err
		return result, err
	}
	result.Targets = configuration.Targets()
	sort.Strings(result.Targets)
	if result.Created {
		c.staged = append(c.staged, result.ConfigPath)
	}
	log.Infow("Wrote configuration",
		"path", result.ConfigPath,
		"created", result.Created,
		"targets", len(result.Targets),
	)

	cleaned, err := c.deps.Cleaner.RemoveTypingFields(ctx, []string{dir})
	if err != nil {
		log.Warnw("Failed to remove typing fields", "error", err)
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.CleanedFiles = cleaned

	if err := c.suppress(ctx, dir, result); err != nil {
		result.Err = err
		return result, err
	}

	if c.cfg.Run.Lint {
		if c.deps.Formatter != nil {
			if err := c.deps.Formatter.Format(ctx, result.Touched()); err != nil {
				log.Warnw("Format failed", "error", err)
				result.Warnings = append(result.Warnings, err.Error())
			}
		}
		if err := c.deps.Linter.Lint(ctx, dir); err != nil {
			log.Warnw("Lint failed", "error", err)
			result.Warnings = append(result.Warnings, err.Error())
		}
	}

	return result, nil
}

// merge loads the configuration at configPath and merges discovered into it,
// or creates a new strict configuration when none exists.
func (c *Converter) merge(ctx context.Context, configPath string, discovered []string) (*localconfig.Configuration, error) {
	exists, err := localconfig.Exists(c.deps.Fs, configPath)
	if err != nil {
		return nil, &localconfig.ParseError{Path: configPath, Err: err}
	}
	if !exists {
		return localconfig.New(configPath, discovered), nil
	}

	configuration, err := localconfig.Load(c.deps.Fs, configPath)
	if err != nil {
		return nil, err
	}
	configuration.AddTargets(discovered)
	configuration.DropStrict()
	configuration.Deduplicate(ctx, c.deps.Reducer)
	return configuration, nil
}

func (c *Converter) suppress(ctx context.Context, dir string, result *DirectoryResult) error {
	unignored, err := c.deps.Suppressor.RemoveForeignIgnores(ctx, dir)
	if err != nil {
		return &SuppressionError{Dir: dir, Err: err}
	}
	result.UnignoredFiles = unignored

	errs, err := c.deps.Checker.Check(ctx, filepath.Join(c.cfg.Root, filepath.FromSlash(dir)))
	if err != nil {
		return &SuppressionError{Dir: dir, Err: err}
	}
	result.TypeErrors = len(errs)

	remaining := errs
	if threshold := c.cfg.Run.FixmeThreshold; threshold != nil {
		over := make(map[string]bool)
		for file, count := range errs.Counts() {
			if count > *threshold {
				over[file] = true
			}
		}
		files := lo.Keys(over)
		sort.Strings(files)
		for _, file := range files {
			target := path.Join(dir, file)
			if _, err := c.deps.Suppressor.AddLocalMode(ctx, target, suppress.Ignore); err != nil {
				return &SuppressionError{Dir: dir, Err: err}
			}
			result.IgnoredFiles = append(result.IgnoredFiles, target)
		}
		remaining = lo.Reject(errs, func(e checker.Error, _ int) bool { return over[e.Path] })
	}

	suppressed, err := c.deps.Suppressor.Suppress(ctx, dir, remaining)
	if err != nil {
		return &SuppressionError{Dir: dir, Err: err}
	}
	result.SuppressedFiles = suppressed
	return nil
}

// Run converts every directory, stages the newly created configurations
// once and commits unless no_commit is set. A persistence failure reverts
// all uncommitted changes and aborts the run. A configuration that cannot
// be parsed fails only its own directory.
func (c *Converter) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := c.logger.WithRun(result.RunID)
	defer func() {
		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(result.StartedAt)
	}()

	dirs, err := c.Directories()
	if err != nil {
		return result, err
	}
	log.Infow("Starting conversion run",
		"subdirectory", c.subdirectory(),
		"directories", len(dirs),
		"no_commit", c.cfg.Run.NoCommit,
	)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			log.Warnw("Run cancelled", "converted", len(result.Directories))
			return result, fmt.Errorf("run cancelled: %w", err)
		}

		dirResult, err := c.ConvertDirectory(ctx, dir)
		result.Directories = append(result.Directories, dirResult)
		if err == nil {
			continue
		}

		var parseErr *localconfig.ParseError
		if errors.As(err, &parseErr) {
			log.Errorw("Skipping directory with unreadable configuration", "dir", dir, "error", err)
			continue
		}

		var persistErr *localconfig.PersistenceError
		if errors.As(err, &persistErr) {
			log.Errorw("Failed to persist configuration, reverting changes", "dir", dir, "error", err)
			if revertErr := c.deps.VCS.RevertAll(context.WithoutCancel(ctx)); revertErr != nil {
				log.Errorw("Failed to revert changes", "error", revertErr)
				return result, errors.Join(err, revertErr)
			}
			result.Reverted = true
		}
		return result, err
	}

	result.Staged = c.Staged()
	if err := c.deps.VCS.Stage(ctx, result.Staged); err != nil {
		return result, err
	}
	c.staged = nil

	if !c.cfg.Run.NoCommit {
		message := c.cfg.VCS.CommitMessage
		if message == "" {
			message = config.DefaultCommitMessage
		}
		if err := c.deps.VCS.Submit(ctx, message); err != nil {
			return result, err
		}
		result.Committed = true
	}

	if failed := result.Failed(); len(failed) > 0 {
		return result, fmt.Errorf("%d of %d directories failed to convert", len(failed), len(result.Directories))
	}

	result.Success = true
	log.Infow("Conversion run completed",
		"directories", len(result.Directories),
		"staged", len(result.Staged),
		"committed", result.Committed,
	)
	return result, nil
}

// Plan reports what Run would do without writing anything.
func (c *Converter) Plan(ctx context.Context) ([]PlannedDirectory, error) {
	dirs, err := c.Directories()
	if err != nil {
		return nil, err
	}

	planned := make([]PlannedDirectory, 0, len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return planned, err
		}
		configPath := c.configPath(dir)
		exists, err := localconfig.Exists(c.deps.Fs, configPath)
		if err != nil {
			return planned, err
		}
		targets, discovered := c.deps.Expander.Targets(ctx, dir, c.cfg.Run.Glob)
		p := PlannedDirectory{
			Dir:        dir,
			ConfigPath: configPath,
			Exists:     exists,
			Targets:    targets,
		}
		if discovered != nil {
			p.Directories = discovered.Len()
		}
		planned = append(planned, p)
	}
	return planned, nil
}

// DeduplicateFile minimizes the targets of an existing configuration file
// and rewrites it when anything was dropped.
func (c *Converter) DeduplicateFile(ctx context.Context, file string) (*DedupeResult, error) {
	configuration, err := localconfig.Load(c.deps.Fs, file)
	if err != nil {
		return nil, err
	}

	result := &DedupeResult{Path: file, Before: configuration.Targets()}
	configuration.Deduplicate(ctx, c.deps.Reducer)
	result.After = configuration.Targets()

	if result.Removed() == 0 {
		c.logger.Debugw("Configuration already minimal", "path", file)
		return result, nil
	}
	if err := configuration.Write(c.deps.Fs); err != nil {
		return result, err
	}
	c.logger.Infow("Deduplicated configuration", "path", file, "removed", result.Removed())
	return result, nil
}
