// Package suppress writes error suppression comments into source files.
package suppress

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/dbsmedya/targets2config/internal/checker"
	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/logger"
)

// LocalMode is a whole-file checking mode.
type LocalMode string

const (
	// Ignore silences every error in the file.
	Ignore LocalMode = "ignore-all-errors"
	// Strict opts the file into strict checking.
	Strict LocalMode = "strict"
	// Unsafe opts the file out of strict checking.
	Unsafe LocalMode = "unsafe"
)

// Suppressor inserts fixme comments above erroneous lines.
type Suppressor struct {
	fs             afero.Fs
	tool           string
	prefix         string
	maxDescription int
	extensions     []string
	foreignIgnore  *regexp.Regexp
	logger         *logger.Logger
}

// New creates a Suppressor writing comments for tool.
func New(fs afero.Fs, tool string, cfg config.SuppressionConfig, log *logger.Logger) *Suppressor {
	if log == nil {
		log = logger.NewDefault()
	}
	prefix := cfg.CommentPrefix
	if prefix == "" {
		prefix = "#"
	}
	return &Suppressor{
		fs:             fs,
		tool:           tool,
		prefix:         prefix,
		maxDescription: cfg.MaxDescription,
		extensions:     cfg.SourceExtensions,
		foreignIgnore:  regexp.MustCompile(`\s*` + regexp.QuoteMeta(prefix) + ` ?type: ?ignore(\[[^\]]*\])?`),
		logger:         log,
	}
}

// Suppress adds one comment per (line, code) for errs, whose paths are
// relative to dir. Errors outside the checked project are skipped. It returns
// the files that were modified.
func (s *Suppressor) Suppress(ctx context.Context, dir string, errs checker.Errors) ([]string, error) {
	var changed []string
	grouped := errs.ByPath()
	for el := grouped.Front(); el != nil; el = el.Next() {
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		var local checker.Errors
		for _, e := range el.Value {
			if !e.ExternalToGlobalRoot && !e.IgnoreError {
				local = append(local, e)
			}
		}
		if len(local) == 0 {
			continue
		}

		file := resolve(dir, el.Key)
		modified, err := s.suppressFile(file, local)
		if err != nil {
			return changed, fmt.Errorf("failed to suppress errors in %s: %w", file, err)
		}
		if modified {
			changed = append(changed, file)
		}
	}

	s.logger.WithDirectory(dir).Infow("Suppressed type errors", "errors", len(errs), "files", len(changed))
	return changed, nil
}

type fixme struct {
	code        int
	description string
}

func (s *Suppressor) suppressFile(file string, errs checker.Errors) (bool, error) {
	data, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return false, err
	}
	lines := splitLines(data)

	byLine := make(map[int][]fixme)
	for _, e := range errs {
		if e.Line < 1 || e.Line > len(lines) {
			s.logger.Warnw("Error line out of range", "file", file, "line", e.Line)
			continue
		}
		duplicate := false
		for _, f := range byLine[e.Line] {
			if f.code == e.Code {
				duplicate = true
				break
			}
		}
		if !duplicate {
			byLine[e.Line] = append(byLine[e.Line], fixme{code: e.Code, description: s.describe(e)})
		}
	}

	var out []string
	modified := false
	for i, line := range lines {
		fixmes := byLine[i+1]
		sort.Slice(fixmes, func(a, b int) bool { return fixmes[a].code < fixmes[b].code })
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		for _, f := range fixmes {
			marker := fmt.Sprintf("%s-fixme[%d]", s.tool, f.code)
			if i > 0 && strings.Contains(lines[i-1], marker) {
				continue
			}
			comment := fmt.Sprintf("%s%s %s", indent, s.prefix, marker)
			if f.description != "" {
				comment += ": " + f.description
			}
			out = append(out, comment)
			modified = true
		}
		out = append(out, line)
	}
	if !modified {
		return false, nil
	}
	return true, writeLines(s.fs, file, out, data)
}

var codePrefix = regexp.MustCompile(`^[^\[]*\[\d+\]:\s*`)

func (s *Suppressor) describe(e checker.Error) string {
	description := codePrefix.ReplaceAllString(e.ConciseDescription, "")
	description = strings.TrimSpace(strings.ReplaceAll(description, "\n", " "))
	if s.maxDescription > 0 && len(description) > s.maxDescription {
		description = strings.TrimSpace(description[:s.maxDescription]) + "..."
	}
	return description
}

// AddLocalMode marks file with mode. Files already carrying the mode are
// left alone. The comment goes after a leading shebang line.
func (s *Suppressor) AddLocalMode(ctx context.Context, file string, mode LocalMode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", file, err)
	}

	comment := fmt.Sprintf("%s %s-%s", s.prefix, s.tool, mode)
	lines := splitLines(data)
	for _, line := range lines {
		if strings.TrimSpace(line) == comment {
			return false, nil
		}
	}

	insert := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		insert = 1
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insert]...)
	out = append(out, comment)
	out = append(out, lines[insert:]...)

	if err := writeLines(s.fs, file, out, data); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", file, err)
	}
	s.logger.Infow("Added local mode", "file", file, "mode", string(mode))
	return true, nil
}

func resolve(dir, file string) string {
	if path.IsAbs(file) {
		return file
	}
	return path.Join(dir, file)
}

func splitLines(data []byte) []string {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func writeLines(fs afero.Fs, file string, lines []string, original []byte) error {
	content := strings.Join(lines, "\n")
	if len(original) == 0 || bytes.HasSuffix(original, []byte("\n")) {
		content += "\n"
	}
	return afero.WriteFile(fs, file, []byte(content), 0o644)
}
