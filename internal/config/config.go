package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Specflow configuration
type Config struct {
	Workspace  WorkspaceConfig  `mapstructure:"workspace"`
	Store      StoreConfig      `mapstructure:"store"`
	Delegate   DelegateConfig   `mapstructure:"delegate"`
	Git        GitConfig        `mapstructure:"git"`
	Improve    ImproveConfig    `mapstructure:"improve"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap"`
}

// WorkspaceConfig controls where Specflow stores project-local data
type WorkspaceConfig struct {
	// Dir is the workspace directory, relative to the project root (default: ".specflow").
	// Specs, sessions, expertise, and logs all live under this directory.
	Dir string `mapstructure:"dir"`
}

// StoreConfig controls session persistence behavior
type StoreConfig struct {
	// MaxBackups is the number of rotated session backups to keep per session.
	// When the limit is exceeded the oldest backup (by modification time) is removed.
	MaxBackups int `mapstructure:"max_backups"`
	// AutoBackup rotates a backup of the previous state before each save (default: true)
	AutoBackup bool `mapstructure:"auto_backup"`
}

// DelegateConfig controls how task instructions are handed to agents
type DelegateConfig struct {
	// Mode is the delegation mode (default: "batch")
	// Options: "batch", "print", "file", "cli"
	Mode string `mapstructure:"mode"`
	// Command is the agent CLI invoked in cli mode (default: "claude")
	Command string `mapstructure:"command"`
	// TimeoutSeconds is the maximum runtime for a cli-mode delegation (default: 300)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// GitConfig controls repository inspection behavior
type GitConfig struct {
	// TimeoutSeconds is the maximum runtime for a single git command (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ImproveConfig controls the self-improvement step
type ImproveConfig struct {
	// Enabled controls whether completed tasks record learnings into
	// the expertise files (default: true)
	Enabled bool `mapstructure:"enabled"`
}

// CheckpointConfig controls automatic checkpointing
type CheckpointConfig struct {
	// Enabled controls whether a checkpoint is written after each
	// completed task (default: true)
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// BootstrapConfig controls project analysis during bootstrap
type BootstrapConfig struct {
	// MaxDepth limits how deep the project walk descends (default: 4)
	MaxDepth int `mapstructure:"max_depth"`
	// IgnoreGlobs are directory name patterns skipped during the walk.
	// Patterns use glob syntax and match against the directory base name.
	IgnoreGlobs []string `mapstructure:"ignore_globs"`
}

// Timeout returns the delegation timeout as a time.Duration
func (c *DelegateConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the git command timeout as a time.Duration
func (c *GitConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Dir: ".specflow",
		},
		Store: StoreConfig{
			MaxBackups: 5,
			AutoBackup: true,
		},
		Delegate: DelegateConfig{
			Mode:           "batch",
			Command:        "claude",
			TimeoutSeconds: 300,
		},
		Git: GitConfig{
			TimeoutSeconds: 10,
		},
		Improve: ImproveConfig{
			Enabled: true,
		},
		Checkpoint: CheckpointConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Bootstrap: BootstrapConfig{
			MaxDepth: 4,
			IgnoreGlobs: []string{
				"node_modules", ".git", "dist", "build",
				"__pycache__", ".next", "vendor", ".specflow",
			},
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Workspace defaults
	viper.SetDefault("workspace.dir", defaults.Workspace.Dir)

	// Store defaults
	viper.SetDefault("store.max_backups", defaults.Store.MaxBackups)
	viper.SetDefault("store.auto_backup", defaults.Store.AutoBackup)

	// Delegate defaults
	viper.SetDefault("delegate.mode", defaults.Delegate.Mode)
	viper.SetDefault("delegate.command", defaults.Delegate.Command)
	viper.SetDefault("delegate.timeout_seconds", defaults.Delegate.TimeoutSeconds)

	// Git defaults
	viper.SetDefault("git.timeout_seconds", defaults.Git.TimeoutSeconds)

	// Improve defaults
	viper.SetDefault("improve.enabled", defaults.Improve.Enabled)

	// Checkpoint defaults
	viper.SetDefault("checkpoint.enabled", defaults.Checkpoint.Enabled)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Bootstrap defaults
	viper.SetDefault("bootstrap.max_depth", defaults.Bootstrap.MaxDepth)
	viper.SetDefault("bootstrap.ignore_globs", defaults.Bootstrap.IgnoreGlobs)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "specflow")
	}
	// Fall back to ~/.config/specflow
	home, err := os.UserHomeDir()
	if err != nil {
		return ".specflow"
	}
	return filepath.Join(home, ".config", "specflow")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidDelegateModes returns the list of valid delegation mode values
func ValidDelegateModes() []string {
	return []string{"batch", "print", "file", "cli"}
}

// IsValidDelegateMode checks if the given mode is valid
func IsValidDelegateMode(mode string) bool {
	for _, valid := range ValidDelegateModes() {
		if mode == valid {
			return true
		}
	}
	return false
}
