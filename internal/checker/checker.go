// Package checker collects type errors by running the type checker in JSON
// output mode.
package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/shell"
)

// Error is one type error reported by the checker.
type Error struct {
	Line                 int            `json:"line"`
	Column               int            `json:"column"`
	Path                 string         `json:"path"`
	Code                 int            `json:"code"`
	Name                 string         `json:"name"`
	ConciseDescription   string         `json:"concise_description"`
	Description          string         `json:"description,omitempty"`
	Inference            map[string]any `json:"inference"`
	IgnoreError          bool           `json:"ignore_error"`
	ExternalToGlobalRoot bool           `json:"external_to_global_root"`
}

// Errors is the list of errors from one checker run.
type Errors []Error

// ByPath groups the errors by file, keeping the order in which each file was
// first reported.
func (e Errors) ByPath() *orderedmap.OrderedMap[string, Errors] {
	grouped := orderedmap.NewOrderedMap[string, Errors]()
	for _, err := range e {
		existing, _ := grouped.Get(err.Path)
		grouped.Set(err.Path, append(existing, err))
	}
	return grouped
}

// Counts returns the number of errors per file.
func (e Errors) Counts() map[string]int {
	counts := make(map[string]int)
	for _, err := range e {
		counts[err.Path]++
	}
	return counts
}

// Checker runs the configured type checker command.
type Checker struct {
	runner  shell.Runner
	command string
	args    []string
	logger  *logger.Logger
}

// New creates a Checker.
func New(runner shell.Runner, cfg config.CommandConfig, log *logger.Logger) *Checker {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Checker{
		runner:  runner,
		command: cfg.Command,
		args:    append([]string(nil), cfg.Args...),
		logger:  log,
	}
}

// Check runs the checker in dir. The checker exits non-zero when it finds
// errors, so the exit status is ignored as long as stdout decodes.
func (c *Checker) Check(ctx context.Context, dir string) (Errors, error) {
	out, runErr := c.runner.Output(ctx, dir, c.command, c.args...)
	if runErr != nil {
		var exit *shell.ExitError
		if !errors.As(runErr, &exit) {
			return nil, fmt.Errorf("failed to run type checker: %w", runErr)
		}
	}

	errs, err := Parse(out)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("type checker failed: %w", runErr)
		}
		return nil, err
	}

	c.logger.WithDirectory(dir).Debugw("Collected type errors", "errors", len(errs))
	return errs, nil
}

// Parse decodes the checker's JSON output. Empty output means no errors.
func Parse(data []byte) (Errors, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Errors{}, nil
	}
	var errs Errors
	if err := json.Unmarshal(data, &errs); err != nil {
		return nil, fmt.Errorf("failed to parse type checker output: %w", err)
	}
	return errs, nil
}
