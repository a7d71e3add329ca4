package converter

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/dbsmedya/targets2config/internal/checker"
	"github.com/dbsmedya/targets2config/internal/suppress"
	"github.com/dbsmedya/targets2config/internal/target"
)

// TargetExpander discovers the targets owned by a directory.
type TargetExpander interface {
	Targets(ctx context.Context, root string, globThreshold *int) ([]string, *target.DirectoryTargetMap)
}

// TargetDeduplicator minimizes a target list.
type TargetDeduplicator interface {
	Deduplicate(ctx context.Context, targets []string) []string
}

// ErrorCollector runs the type checker over a directory.
type ErrorCollector interface {
	Check(ctx context.Context, dir string) (checker.Errors, error)
}

// ErrorSuppressor silences type errors in source files.
type ErrorSuppressor interface {
	Suppress(ctx context.Context, dir string, errs checker.Errors) ([]string, error)
	AddLocalMode(ctx context.Context, file string, mode suppress.LocalMode) (bool, error)
	RemoveForeignIgnores(ctx context.Context, dir string) ([]string, error)
}

// TypingFieldCleaner strips per-target typing fields from build files.
type TypingFieldCleaner interface {
	RemoveTypingFields(ctx context.Context, dirs []string) ([]string, error)
}

// DirectoryLinter lints a converted directory.
type DirectoryLinter interface {
	Lint(ctx context.Context, dir string) error
}

// FileFormatter formats the files a conversion wrote.
type FileFormatter interface {
	Format(ctx context.Context, files []string) error
}

// DirectoryResult describes the conversion of one directory.
type DirectoryResult struct {
	Dir             string
	ConfigPath      string
	Targets         []string // targets persisted to the configuration
	Discovered      int      // explicit targets found by discovery
	Created         bool
	Skipped         bool // nothing was discovered
	TypeErrors      int
	SuppressedFiles []string
	IgnoredFiles    []string // files switched to ignore-all-errors mode
	CleanedFiles    []string // build files that lost typing fields
	UnignoredFiles  []string // sources stripped of foreign ignore comments
	Warnings        []string
	Err             error
	Duration        time.Duration
}

// Touched returns every file the conversion wrote, sorted.
func (r *DirectoryResult) Touched() []string {
	files := []string{r.ConfigPath}
	for _, group := range [][]string{r.CleanedFiles, r.UnignoredFiles, r.SuppressedFiles, r.IgnoredFiles} {
		files = append(files, group...)
	}
	files = lo.Uniq(files)
	sort.Strings(files)
	return files
}

// RunResult contains statistics and status of a conversion run.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Directories []*DirectoryResult
	Staged      []string
	Committed   bool
	Reverted    bool
	Success     bool
}

// Failed returns the directories whose conversion failed.
func (r *RunResult) Failed() []*DirectoryResult {
	var failed []*DirectoryResult
	for _, d := range r.Directories {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// PlannedDirectory describes what a conversion would do to one directory.
type PlannedDirectory struct {
	Dir         string
	ConfigPath  string
	Exists      bool
	Targets     []string
	Directories int // sub-directories holding targets
}

// DedupeResult describes the deduplication of one configuration file.
type DedupeResult struct {
	Path   string
	Before []string
	After  []string
}

// Removed returns how many targets were dropped.
func (r *DedupeResult) Removed() int {
	return len(r.Before) - len(r.After)
}

// SuppressionError is returned when type errors could not be collected or
// suppressed for a directory.
type SuppressionError struct {
	Dir string
	Err error
}

func (e *SuppressionError) Error() string {
	return fmt.Sprintf("failed to suppress type errors in %s: %v", e.Dir, e.Err)
}

func (e *SuppressionError) Unwrap() error {
	return e.Err
}
