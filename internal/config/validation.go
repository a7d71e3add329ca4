package config

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

var toolNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if !toolNamePattern.MatchString(c.Tool) {
		errors = append(errors, ValidationError{
			Field:   "tool",
			Message: "tool must be a non-empty name of letters, digits, '-' or '_'",
		})
	}

	if c.Root == "" {
		errors = append(errors, ValidationError{
			Field:   "root",
			Message: "root is required",
		})
	}

	errors = append(errors, c.validateBuild()...)
	errors = append(errors, validateCommand("checker", c.Checker)...)
	if c.Run.Lint {
		errors = append(errors, validateCommand("lint", c.Lint)...)
	}

	if c.VCS.Command == "" {
		errors = append(errors, ValidationError{
			Field:   "vcs.command",
			Message: "command is required",
		})
	}

	if c.Suppression.MaxDescription < 0 {
		errors = append(errors, ValidationError{
			Field:   "suppression.max_description",
			Message: "max_description cannot be negative",
		})
	}

	errors = append(errors, c.validateRun()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateBuild() ValidationErrors {
	var errors ValidationErrors

	if c.Build.Command == "" {
		errors = append(errors, ValidationError{
			Field:   "build.command",
			Message: "command is required",
		})
	}

	if c.Build.QueryTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "build.query_timeout",
			Message: "query_timeout cannot be negative",
		})
	}

	if c.Build.Kinds != "" {
		if _, err := regexp.Compile(c.Build.Kinds); err != nil {
			errors = append(errors, ValidationError{
				Field:   "build.kinds",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if len(c.Build.BuildFiles) == 0 {
		errors = append(errors, ValidationError{
			Field:   "build.build_files",
			Message: "at least one build file name must be defined",
		})
	}

	return errors
}

func validateCommand(prefix string, cmd CommandConfig) ValidationErrors {
	if cmd.Command == "" {
		return ValidationErrors{{
			Field:   prefix + ".command",
			Message: "command is required",
		}}
	}
	return nil
}

func (c *Config) validateRun() ValidationErrors {
	var errors ValidationErrors

	if sub := c.Run.Subdirectory; sub != "" {
		if path.IsAbs(sub) {
			errors = append(errors, ValidationError{
				Field:   "run.subdirectory",
				Message: "subdirectory must be relative to the repository root",
			})
		} else if cleaned := path.Clean(sub); cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			errors = append(errors, ValidationError{
				Field:   "run.subdirectory",
				Message: "subdirectory must not leave the repository root",
			})
		}
	}

	if c.Run.Glob != nil && *c.Run.Glob < 0 {
		errors = append(errors, ValidationError{
			Field:   "run.glob",
			Message: "glob threshold cannot be negative",
		})
	}

	if c.Run.FixmeThreshold != nil && *c.Run.FixmeThreshold < 0 {
		errors = append(errors, ValidationError{
			Field:   "run.fixme_threshold",
			Message: "fixme_threshold cannot be negative",
		})
	}

	for i, pattern := range c.Run.Only {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("run.only[%d]", i),
				Message: fmt.Sprintf("invalid glob pattern %q: %v", pattern, err),
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
