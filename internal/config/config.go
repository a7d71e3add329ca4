// Package config provides configuration structures and loading for targets2config.
package config

// Config represents the complete application configuration.
type Config struct {
	Tool        string            `yaml:"tool" mapstructure:"tool"` // type checker name, e.g. "pyre"
	Root        string            `yaml:"root" mapstructure:"root"` // repository root, all paths are relative to it
	Build       BuildConfig       `yaml:"build" mapstructure:"build"`
	Checker     CommandConfig     `yaml:"checker" mapstructure:"checker"`
	Suppression SuppressionConfig `yaml:"suppression" mapstructure:"suppression"`
	Lint        CommandConfig     `yaml:"lint" mapstructure:"lint"`
	Format      CommandConfig     `yaml:"format" mapstructure:"format"` // runs on changed files when linting, empty disables
	VCS         VCSConfig         `yaml:"vcs" mapstructure:"vcs"`
	Run         RunConfig         `yaml:"run" mapstructure:"run"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// BuildConfig describes how the build graph is queried.
type BuildConfig struct {
	Command      string   `yaml:"command" mapstructure:"command"`
	QueryArgs    []string `yaml:"query_args" mapstructure:"query_args"`
	QueryTimeout int      `yaml:"query_timeout" mapstructure:"query_timeout"` // seconds, 0 disables
	Kinds        string   `yaml:"kinds" mapstructure:"kinds"`                 // rule kind regex used by discovery
	BuildFiles   []string `yaml:"build_files" mapstructure:"build_files"`
	TypingFields []string `yaml:"typing_fields" mapstructure:"typing_fields"`
}

// CommandConfig is an external command with fixed leading arguments.
type CommandConfig struct {
	Command string   `yaml:"command" mapstructure:"command"`
	Args    []string `yaml:"args" mapstructure:"args"`
}

// SuppressionConfig controls how error suppression comments are written.
type SuppressionConfig struct {
	CommentPrefix    string   `yaml:"comment_prefix" mapstructure:"comment_prefix"`
	MaxDescription   int      `yaml:"max_description" mapstructure:"max_description"`     // 0 means unlimited
	SourceExtensions []string `yaml:"source_extensions" mapstructure:"source_extensions"` // files swept for foreign ignore comments
}

// VCSConfig describes the version control collaborator.
type VCSConfig struct {
	Command       string `yaml:"command" mapstructure:"command"`
	CommitMessage string `yaml:"commit_message" mapstructure:"commit_message"`
}

// RunConfig holds the options of a single conversion run.
type RunConfig struct {
	Subdirectory   string   `yaml:"subdirectory" mapstructure:"subdirectory"`
	Lint           bool     `yaml:"lint" mapstructure:"lint"`
	Glob           *int     `yaml:"glob,omitempty" mapstructure:"glob"`                       // collapse to //dir/... above this many targets
	FixmeThreshold *int     `yaml:"fixme_threshold,omitempty" mapstructure:"fixme_threshold"` // ignore whole files above this many errors
	NoCommit       bool     `yaml:"no_commit" mapstructure:"no_commit"`
	Only           []string `yaml:"only" mapstructure:"only"` // glob patterns restricting converted directories
	LockFile       string   `yaml:"lock_file" mapstructure:"lock_file"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultCommitMessage is used when vcs.commit_message is empty.
const DefaultCommitMessage = "Convert type check targets to local configurations"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Tool: "pyre",
		Root: ".",
		Build: BuildConfig{
			Command:      "buck2",
			QueryArgs:    []string{"query"},
			QueryTimeout: 120,
			BuildFiles:   []string{"BUCK", "TARGETS"},
			TypingFields: []string{"typing", "typing_options", "check_types", "check_types_options"},
		},
		Checker: CommandConfig{
			Command: "pyre",
			Args:    []string{"--output=json", "check"},
		},
		Suppression: SuppressionConfig{
			CommentPrefix:    "#",
			SourceExtensions: []string{".py", ".pyi"},
		},
		Lint: CommandConfig{
			Command: "arc",
			Args:    []string{"lint", "--apply-patches"},
		},
		Format: CommandConfig{
			Command: "arc",
			Args:    []string{"f"},
		},
		VCS: VCSConfig{
			Command:       "git",
			CommitMessage: DefaultCommitMessage,
		},
		Run: RunConfig{
			LockFile: ".targets2config.lock",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ConfigurationFilename returns the per-directory configuration file name for the tool.
func (c *Config) ConfigurationFilename() string {
	return "." + c.Tool + "_configuration.local"
}
