// Package buildfile edits build files in place.
package buildfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/logger"
)

// Cleaner removes per-target typing fields that a directory configuration
// makes redundant.
type Cleaner struct {
	fs         afero.Fs
	buildFiles []string
	field      *regexp.Regexp
	logger     *logger.Logger
}

// NewCleaner creates a Cleaner for the configured build file names and
// typing fields.
func NewCleaner(fs afero.Fs, cfg config.BuildConfig, log *logger.Logger) *Cleaner {
	if log == nil {
		log = logger.NewDefault()
	}
	var field *regexp.Regexp
	if len(cfg.TypingFields) > 0 {
		quoted := lo.Map(cfg.TypingFields, func(f string, _ int) string { return regexp.QuoteMeta(f) })
		field = regexp.MustCompile(`^\s*(` + strings.Join(quoted, "|") + `)\s*=[^=]`)
	}
	return &Cleaner{
		fs:         fs,
		buildFiles: append([]string(nil), cfg.BuildFiles...),
		field:      field,
		logger:     log,
	}
}

// RemoveTypingFields deletes single-line typing field assignments from every
// build file under dirs and returns the files that changed, sorted.
func (c *Cleaner) RemoveTypingFields(ctx context.Context, dirs []string) ([]string, error) {
	if c.field == nil {
		return nil, nil
	}

	files, err := c.findBuildFiles(dirs)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		modified, err := c.cleanFile(file)
		if err != nil {
			return changed, fmt.Errorf("failed to clean %s: %w", file, err)
		}
		if modified {
			changed = append(changed, file)
		}
	}

	c.logger.Infow("Removed typing fields from build files", "scanned", len(files), "changed", len(changed))
	return changed, nil
}

func (c *Cleaner) findBuildFiles(dirs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range dirs {
		err := afero.Walk(c.fs, dir, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !lo.Contains(c.buildFiles, info.Name()) {
				return nil
			}
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				files = append(files, filepath.ToSlash(p))
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to scan %s for build files: %w", dir, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (c *Cleaner) cleanFile(file string) (bool, error) {
	data, err := afero.ReadFile(c.fs, file)
	if err != nil {
		return false, err
	}

	lines := strings.SplitAfter(string(data), "\n")
	kept := lo.Reject(lines, func(line string, _ int) bool {
		return c.field.MatchString(line)
	})
	if len(kept) == len(lines) {
		return false, nil
	}

	c.logger.Debugw("Removing typing fields", "file", file, "lines", len(lines)-len(kept))
	return true, afero.WriteFile(c.fs, file, []byte(strings.Join(kept, "")), 0o644)
}
