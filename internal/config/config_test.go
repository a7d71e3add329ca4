package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Tool != "pyre" {
		t.Errorf("expected tool 'pyre', got %s", cfg.Tool)
	}
	if cfg.Root != "." {
		t.Errorf("expected root '.', got %s", cfg.Root)
	}

	// Test build defaults
	if cfg.Build.Command != "buck2" {
		t.Errorf("expected build command 'buck2', got %s", cfg.Build.Command)
	}
	if len(cfg.Build.QueryArgs) != 1 || cfg.Build.QueryArgs[0] != "query" {
		t.Errorf("expected query args [query], got %v", cfg.Build.QueryArgs)
	}
	if cfg.Build.QueryTimeout != 120 {
		t.Errorf("expected query_timeout 120, got %d", cfg.Build.QueryTimeout)
	}
	if len(cfg.Build.TypingFields) != 4 {
		t.Errorf("expected 4 typing fields, got %v", cfg.Build.TypingFields)
	}

	// Test checker defaults
	if cfg.Checker.Command != "pyre" {
		t.Errorf("expected checker command 'pyre', got %s", cfg.Checker.Command)
	}

	// Test format and suppression defaults
	if cfg.Format.Command != "arc" || len(cfg.Format.Args) != 1 || cfg.Format.Args[0] != "f" {
		t.Errorf("expected format command 'arc f', got %s %v", cfg.Format.Command, cfg.Format.Args)
	}
	if len(cfg.Suppression.SourceExtensions) != 2 {
		t.Errorf("expected 2 source extensions, got %v", cfg.Suppression.SourceExtensions)
	}

	// Test run defaults
	if cfg.Run.Glob != nil {
		t.Errorf("expected glob unset by default")
	}
	if cfg.Run.FixmeThreshold != nil {
		t.Errorf("expected fixme_threshold unset by default")
	}
	if cfg.Run.NoCommit {
		t.Errorf("expected no_commit false by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logging output 'stderr', got %s", cfg.Logging.Output)
	}
}

func TestConfigurationFilename(t *testing.T) {
	tests := []struct {
		tool     string
		expected string
	}{
		{"pyre", ".pyre_configuration.local"},
		{"mypy", ".mypy_configuration.local"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Tool = tt.tool
			if got := cfg.ConfigurationFilename(); got != tt.expected {
				t.Errorf("ConfigurationFilename() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	lint := true
	noCommit := true
	glob := 5
	threshold := 10

	cfg.ApplyOverrides(Overrides{
		LogLevel:       "debug",
		Subdirectory:   "project/sub",
		Lint:           &lint,
		Glob:           &glob,
		FixmeThreshold: &threshold,
		NoCommit:       &noCommit,
		Only:           []string{"project/**"},
	})

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level override 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected format untouched, got %s", cfg.Logging.Format)
	}
	if cfg.Run.Subdirectory != "project/sub" {
		t.Errorf("expected subdirectory override, got %s", cfg.Run.Subdirectory)
	}
	if !cfg.Run.Lint || !cfg.Run.NoCommit {
		t.Errorf("expected lint and no_commit overrides")
	}
	if cfg.Run.Glob == nil || *cfg.Run.Glob != 5 {
		t.Errorf("expected glob override 5, got %v", cfg.Run.Glob)
	}
	if cfg.Run.FixmeThreshold == nil || *cfg.Run.FixmeThreshold != 10 {
		t.Errorf("expected fixme_threshold override 10, got %v", cfg.Run.FixmeThreshold)
	}

	// Overrides must be copied, not aliased
	glob = 99
	if *cfg.Run.Glob != 5 {
		t.Errorf("expected glob override to be copied, got %d", *cfg.Run.Glob)
	}
}

func TestApplyOverridesEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.Lint = true
	cfg.ApplyOverrides(Overrides{})

	if !cfg.Run.Lint {
		t.Errorf("expected unset override to keep lint=true")
	}
	if cfg.Run.Glob != nil {
		t.Errorf("expected glob to stay unset")
	}
}
