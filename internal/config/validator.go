package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "store.max_backups")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Workspace config
	errors = append(errors, c.validateWorkspace()...)

	// Validate Store config
	errors = append(errors, c.validateStore()...)

	// Validate Delegate config
	errors = append(errors, c.validateDelegate()...)

	// Validate Git config
	errors = append(errors, c.validateGit()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	// Validate Bootstrap config
	errors = append(errors, c.validateBootstrap()...)

	return errors
}

// validateWorkspace validates the WorkspaceConfig
func (c *Config) validateWorkspace() []ValidationError {
	var errors []ValidationError

	dir := c.Workspace.Dir

	if strings.TrimSpace(dir) == "" {
		errors = append(errors, ValidationError{
			Field:   "workspace.dir",
			Value:   dir,
			Message: "cannot be empty",
		})
		return errors
	}

	if strings.HasPrefix(dir, "/") {
		errors = append(errors, ValidationError{
			Field:   "workspace.dir",
			Value:   dir,
			Message: "must be a relative path (remove leading /)",
		})
	}

	if strings.Contains(dir, "..") {
		errors = append(errors, ValidationError{
			Field:   "workspace.dir",
			Value:   dir,
			Message: "cannot contain parent directory references (..)",
		})
	}

	if strings.ContainsRune(dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "workspace.dir",
			Value:   dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateStore validates the StoreConfig
func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if c.Store.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "store.max_backups",
			Value:   c.Store.MaxBackups,
			Message: "must be non-negative (0 disables rotation)",
		})
	}

	// Reasonable upper bound to keep the backups directory manageable
	const maxBackupsLimit = 100
	if c.Store.MaxBackups > maxBackupsLimit {
		errors = append(errors, ValidationError{
			Field:   "store.max_backups",
			Value:   c.Store.MaxBackups,
			Message: fmt.Sprintf("exceeds maximum of %d", maxBackupsLimit),
		})
	}

	return errors
}

// validateDelegate validates the DelegateConfig
func (c *Config) validateDelegate() []ValidationError {
	var errors []ValidationError

	if c.Delegate.Mode != "" && !IsValidDelegateMode(c.Delegate.Mode) {
		errors = append(errors, ValidationError{
			Field:   "delegate.mode",
			Value:   c.Delegate.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDelegateModes(), ", ")),
		})
	}

	// The command is only executed in cli mode
	if c.Delegate.Mode == "cli" && strings.TrimSpace(c.Delegate.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "delegate.command",
			Value:   c.Delegate.Command,
			Message: "cannot be empty when delegate.mode is 'cli'",
		})
	}

	const minTimeout = 1
	const maxTimeout = 3600 // 1 hour

	if c.Delegate.TimeoutSeconds < minTimeout {
		errors = append(errors, ValidationError{
			Field:   "delegate.timeout_seconds",
			Value:   c.Delegate.TimeoutSeconds,
			Message: fmt.Sprintf("must be at least %d second", minTimeout),
		})
	}
	if c.Delegate.TimeoutSeconds > maxTimeout {
		errors = append(errors, ValidationError{
			Field:   "delegate.timeout_seconds",
			Value:   c.Delegate.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeout),
		})
	}

	return errors
}

// validateGit validates the GitConfig
func (c *Config) validateGit() []ValidationError {
	var errors []ValidationError

	const minTimeout = 1
	const maxTimeout = 600 // 10 minutes

	if c.Git.TimeoutSeconds < minTimeout {
		errors = append(errors, ValidationError{
			Field:   "git.timeout_seconds",
			Value:   c.Git.TimeoutSeconds,
			Message: fmt.Sprintf("must be at least %d second", minTimeout),
		})
	}
	if c.Git.TimeoutSeconds > maxTimeout {
		errors = append(errors, ValidationError{
			Field:   "git.timeout_seconds",
			Value:   c.Git.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeout),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateBootstrap validates the BootstrapConfig
func (c *Config) validateBootstrap() []ValidationError {
	var errors []ValidationError

	const minDepth = 1
	const maxDepth = 16

	if c.Bootstrap.MaxDepth < minDepth {
		errors = append(errors, ValidationError{
			Field:   "bootstrap.max_depth",
			Value:   c.Bootstrap.MaxDepth,
			Message: fmt.Sprintf("must be at least %d", minDepth),
		})
	}
	if c.Bootstrap.MaxDepth > maxDepth {
		errors = append(errors, ValidationError{
			Field:   "bootstrap.max_depth",
			Value:   c.Bootstrap.MaxDepth,
			Message: fmt.Sprintf("exceeds maximum of %d", maxDepth),
		})
	}

	for i, pattern := range c.Bootstrap.IgnoreGlobs {
		fieldName := fmt.Sprintf("bootstrap.ignore_globs[%d]", i)

		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: "pattern cannot be empty",
			})
			continue
		}

		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}

	return errors
}
