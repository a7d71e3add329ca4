package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/targets2config/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

const defaultConfigFile = "targets2config.yaml"

// CLI flags that override config file values
var (
	cfgFile        string
	logLevel       string
	logFormat      string
	subdirectory   string
	runLint        bool
	globThreshold  int
	fixmeThreshold int
	noCommit       bool
	only           []string
)

var rootCmd = &cobra.Command{
	Use:   "targets2config",
	Short: "Convert build targets into local type checker configurations",
	Long: `A CLI tool that moves type checking from individual build targets to
per-directory .<tool>_configuration.local files.

Features:
  - Target discovery through the build graph (buck query)
  - Create or merge local configurations, nearest configured ancestor wins
  - Coverage based target deduplication with memoized queries
  - Error suppression with fixme comments or whole-file ignore
  - Staging and committing of the converted files`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&cfgFile, "config", "c", defaultConfigFile,
		"Path to configuration file (defaults are used when the default file is missing)")

	flags.StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	flags.StringVarP(&subdirectory, "subdirectory", "s", "",
		"Only convert configurations under this repository relative directory")
	flags.BoolVar(&runLint, "lint", false,
		"Run the linter over every converted directory")
	flags.IntVar(&globThreshold, "glob", 0,
		"Use a single //dir/... target when more than this many targets are discovered")
	flags.IntVar(&fixmeThreshold, "fixme-threshold", 0,
		"Ignore whole files with more than this many errors instead of adding fixme comments")
	flags.BoolVar(&noCommit, "no-commit", false,
		"Stage converted files without committing them")
	flags.StringSliceVar(&only, "only", nil,
		"Glob patterns restricting which directories are converted")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag values that were explicitly set.
func GetCLIOverrides() config.Overrides {
	flags := rootCmd.PersistentFlags()
	overrides := config.Overrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		Subdirectory: subdirectory,
		Only:         only,
	}
	if flags.Changed("lint") {
		overrides.Lint = &runLint
	}
	if flags.Changed("glob") {
		overrides.Glob = &globThreshold
	}
	if flags.Changed("fixme-threshold") {
		overrides.FixmeThreshold = &fixmeThreshold
	}
	if flags.Changed("no-commit") {
		overrides.NoCommit = &noCommit
	}
	return overrides
}

// loadConfig loads the configuration file, applies CLI overrides and
// validates the result. A missing default file means defaults.
func loadConfig() (*config.Config, error) {
	configFile := GetConfigFile()
	optional := !rootCmd.PersistentFlags().Changed("config") && configFile == defaultConfigFile

	cfg, err := config.LoadOrDefault(configFile, optional)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(GetCLIOverrides())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
