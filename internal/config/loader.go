package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOrDefault behaves like Load, but returns DefaultConfig when the file
// does not exist and optional is true.
func LoadOrDefault(configPath string, optional bool) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			if err := substituteEnvVars(cfg); err != nil {
				return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	cfg.Root = expandEnvVar(cfg.Root)

	cfg.Build.Command = expandEnvVar(cfg.Build.Command)
	cfg.Checker.Command = expandEnvVar(cfg.Checker.Command)
	cfg.Lint.Command = expandEnvVar(cfg.Lint.Command)
	cfg.Format.Command = expandEnvVar(cfg.Format.Command)
	cfg.VCS.Command = expandEnvVar(cfg.VCS.Command)

	cfg.Run.Subdirectory = expandEnvVar(cfg.Run.Subdirectory)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// Overrides contains command line values that take precedence over the file.
// Nil pointers and empty strings leave the file value untouched.
type Overrides struct {
	LogLevel       string
	LogFormat      string
	Subdirectory   string
	Lint           *bool
	Glob           *int
	FixmeThreshold *int
	NoCommit       *bool
	Only           []string
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only set values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Subdirectory != "" {
		c.Run.Subdirectory = o.Subdirectory
	}
	if o.Lint != nil {
		c.Run.Lint = *o.Lint
	}
	if o.Glob != nil {
		glob := *o.Glob
		c.Run.Glob = &glob
	}
	if o.FixmeThreshold != nil {
		threshold := *o.FixmeThreshold
		c.Run.FixmeThreshold = &threshold
	}
	if o.NoCommit != nil {
		c.Run.NoCommit = *o.NoCommit
	}
	if len(o.Only) > 0 {
		c.Run.Only = append([]string(nil), o.Only...)
	}
}
