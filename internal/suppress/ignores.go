package suppress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// RemoveForeignIgnores strips generic `type: ignore` comments from the
// source files under dir so the checker reports what they were hiding.
// Comments in the tool's own syntax are kept. A line left empty by the
// removal is dropped. It returns the files that were modified.
func (s *Suppressor) RemoveForeignIgnores(ctx context.Context, dir string) ([]string, error) {
	var changed []string
	err := afero.Walk(s.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !lo.Contains(s.extensions, path.Ext(info.Name())) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		file := filepath.ToSlash(p)
		modified, err := s.removeIgnores(file)
		if err != nil {
			return fmt.Errorf("failed to remove ignores in %s: %w", file, err)
		}
		if modified {
			changed = append(changed, file)
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return changed, err
	}

	if len(changed) > 0 {
		s.logger.WithDirectory(dir).Infow("Removed foreign ignore comments", "files", len(changed))
	}
	return changed, nil
}

func (s *Suppressor) removeIgnores(file string) (bool, error) {
	data, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return false, err
	}
	if !s.foreignIgnore.Match(data) {
		return false, nil
	}

	lines := splitLines(data)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := s.foreignIgnore.ReplaceAllString(line, "")
		if stripped == line {
			out = append(out, line)
			continue
		}
		if strings.TrimSpace(stripped) != "" {
			out = append(out, stripped)
		}
	}
	return true, writeLines(s.fs, file, out, data)
}
