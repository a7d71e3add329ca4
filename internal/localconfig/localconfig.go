// Package localconfig reads and writes per-directory type checker
// configuration files (.<tool>_configuration.local).
package localconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

const (
	targetsKey = "targets"
	strictKey  = "strict"
)

// ParseError is returned when an existing configuration file cannot be read
// or does not contain a valid target list.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse configuration %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when a configuration could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to write configuration %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Deduplicator minimizes a target list. Implemented by reducer.Reducer.
type Deduplicator interface {
	Deduplicate(ctx context.Context, targets []string) []string
}

// Configuration is a per-directory target configuration. Keys other than
// targets and strict are carried through untouched.
type Configuration struct {
	Path    string
	targets []string
	fields  map[string]any
	created bool
}

// New creates a configuration for a directory that has none yet. New
// configurations are strict.
func New(filePath string, targets []string) *Configuration {
	return &Configuration{
		Path:    filePath,
		targets: lo.Uniq(targets),
		fields:  map[string]any{strictKey: true},
		created: true,
	}
}

// Load reads the configuration at filePath.
func Load(fs afero.Fs, filePath string) (*Configuration, error) {
	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return nil, &ParseError{Path: filePath, Err: err}
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, &ParseError{Path: filePath, Err: err}
	}
	if fields == nil {
		return nil, &ParseError{Path: filePath, Err: fmt.Errorf("expected a JSON object")}
	}

	var targets []string
	if raw, ok := fields[targetsKey]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, &ParseError{Path: filePath, Err: fmt.Errorf("%q must be a list", targetsKey)}
		}
		for i, item := range list {
			id, ok := item.(string)
			if !ok {
				return nil, &ParseError{Path: filePath, Err: fmt.Errorf("%s[%d] must be a string", targetsKey, i)}
			}
			targets = append(targets, id)
		}
		delete(fields, targetsKey)
	}

	return &Configuration{Path: filePath, targets: targets, fields: fields}, nil
}

// Exists reports whether a configuration file is present at filePath.
func Exists(fs afero.Fs, filePath string) (bool, error) {
	return afero.Exists(fs, filePath)
}

// Created reports whether the configuration was built by New rather than
// loaded from disk.
func (c *Configuration) Created() bool {
	return c.created
}

// Dir returns the directory holding the configuration.
func (c *Configuration) Dir() string {
	return path.Dir(c.Path)
}

// Targets returns a copy of the target list in its current order.
func (c *Configuration) Targets() []string {
	return append([]string(nil), c.targets...)
}

// AddTargets appends every target not already present, keeping existing
// targets first.
func (c *Configuration) AddTargets(targets []string) {
	c.targets = lo.Uniq(append(c.targets, targets...))
}

// Strict reports whether the configuration enables strict mode.
func (c *Configuration) Strict() bool {
	strict, _ := c.fields[strictKey].(bool)
	return strict
}

// DropStrict removes the strict key.
func (c *Configuration) DropStrict() {
	delete(c.fields, strictKey)
}

// Deduplicate replaces the target list with its minimized form.
func (c *Configuration) Deduplicate(ctx context.Context, d Deduplicator) {
	c.targets = d.Deduplicate(ctx, c.targets)
}

// Marshal renders the configuration with sorted keys, two-space indentation,
// sorted targets and a trailing newline.
func (c *Configuration) Marshal() ([]byte, error) {
	out := make(map[string]any, len(c.fields)+1)
	for k, v := range c.fields {
		out[k] = v
	}
	targets := c.Targets()
	if targets == nil {
		targets = []string{}
	}
	sort.Strings(targets)
	out[targetsKey] = targets

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write persists the configuration, creating its directory when needed.
func (c *Configuration) Write(fs afero.Fs) error {
	data, err := c.Marshal()
	if err != nil {
		return &PersistenceError{Path: c.Path, Err: err}
	}
	if err := fs.MkdirAll(path.Dir(c.Path), 0o755); err != nil {
		return &PersistenceError{Path: c.Path, Err: err}
	}
	if err := afero.WriteFile(fs, c.Path, data, 0o644); err != nil {
		return &PersistenceError{Path: c.Path, Err: err}
	}
	return nil
}
