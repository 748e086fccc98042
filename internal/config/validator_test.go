package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

// hasFieldError reports whether errs contains an error for the given field path.
func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_Workspace(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		hasError bool
	}{
		{"default", ".specflow", false},
		{"plain name", "workdir", false},
		{"nested relative", "tools/specflow", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"absolute path", "/var/specflow", true},
		{"parent reference", "../elsewhere", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Workspace.Dir = tt.dir
			errs := cfg.Validate()

			if got := hasFieldError(errs, "workspace.dir"); got != tt.hasError {
				t.Errorf("Validate() for dir=%q: hasError=%v, want %v", tt.dir, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_Store(t *testing.T) {
	tests := []struct {
		name       string
		maxBackups int
		hasError   bool
	}{
		{"default", 5, false},
		{"zero disables rotation", 0, false},
		{"upper bound", 100, false},
		{"negative", -1, true},
		{"excessive", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Store.MaxBackups = tt.maxBackups
			errs := cfg.Validate()

			if got := hasFieldError(errs, "store.max_backups"); got != tt.hasError {
				t.Errorf("Validate() for max_backups=%d: hasError=%v, want %v", tt.maxBackups, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_DelegateMode(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		hasError bool
	}{
		{"valid batch", "batch", false},
		{"valid print", "print", false},
		{"valid file", "file", false},
		{"valid cli", "cli", false},
		{"empty is valid", "", false},
		{"invalid mode", "watch", true},
		{"case sensitive", "BATCH", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Delegate.Mode = tt.mode
			errs := cfg.Validate()

			if got := hasFieldError(errs, "delegate.mode"); got != tt.hasError {
				t.Errorf("Validate() for mode=%q: hasError=%v, want %v", tt.mode, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_DelegateCommand(t *testing.T) {
	t.Run("empty command allowed outside cli mode", func(t *testing.T) {
		cfg := Default()
		cfg.Delegate.Mode = "batch"
		cfg.Delegate.Command = ""
		errs := cfg.Validate()

		if hasFieldError(errs, "delegate.command") {
			t.Error("empty command should be valid when mode is not cli")
		}
	})

	t.Run("empty command rejected in cli mode", func(t *testing.T) {
		cfg := Default()
		cfg.Delegate.Mode = "cli"
		cfg.Delegate.Command = ""
		errs := cfg.Validate()

		if !hasFieldError(errs, "delegate.command") {
			t.Error("expected error for empty command in cli mode")
		}
	})
}

func TestConfig_Validate_DelegateTimeout(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		hasError bool
	}{
		{"default", 300, false},
		{"minimum", 1, false},
		{"maximum", 3600, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"excessive", 3601, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Delegate.TimeoutSeconds = tt.seconds
			errs := cfg.Validate()

			if got := hasFieldError(errs, "delegate.timeout_seconds"); got != tt.hasError {
				t.Errorf("Validate() for timeout=%d: hasError=%v, want %v", tt.seconds, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_GitTimeout(t *testing.T) {
	t.Run("zero timeout", func(t *testing.T) {
		cfg := Default()
		cfg.Git.TimeoutSeconds = 0
		errs := cfg.Validate()

		if !hasFieldError(errs, "git.timeout_seconds") {
			t.Error("expected error for zero git timeout")
		}
	})

	t.Run("excessive timeout", func(t *testing.T) {
		cfg := Default()
		cfg.Git.TimeoutSeconds = 601
		errs := cfg.Validate()

		if !hasFieldError(errs, "git.timeout_seconds") {
			t.Error("expected error for git timeout above 600s")
		}
	})
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "verbose"
		errs := cfg.Validate()

		if !hasFieldError(errs, "logging.level") {
			t.Error("expected error for invalid log level")
		}
	})

	t.Run("empty level is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = ""
		errs := cfg.Validate()

		if hasFieldError(errs, "logging.level") {
			t.Error("empty level should be valid")
		}
	})

	t.Run("non-positive max size", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxSizeMB = 0
		errs := cfg.Validate()

		if !hasFieldError(errs, "logging.max_size_mb") {
			t.Error("expected error for zero max_size_mb")
		}
	})

	t.Run("excessive max size", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxSizeMB = 1001
		errs := cfg.Validate()

		if !hasFieldError(errs, "logging.max_size_mb") {
			t.Error("expected error for max_size_mb above 1000")
		}
	})

	t.Run("negative max backups", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxBackups = -1
		errs := cfg.Validate()

		if !hasFieldError(errs, "logging.max_backups") {
			t.Error("expected error for negative max_backups")
		}
	})
}

func TestConfig_Validate_Bootstrap(t *testing.T) {
	t.Run("depth below minimum", func(t *testing.T) {
		cfg := Default()
		cfg.Bootstrap.MaxDepth = 0
		errs := cfg.Validate()

		if !hasFieldError(errs, "bootstrap.max_depth") {
			t.Error("expected error for zero max_depth")
		}
	})

	t.Run("depth above maximum", func(t *testing.T) {
		cfg := Default()
		cfg.Bootstrap.MaxDepth = 17
		errs := cfg.Validate()

		if !hasFieldError(errs, "bootstrap.max_depth") {
			t.Error("expected error for max_depth above 16")
		}
	})

	t.Run("empty glob pattern", func(t *testing.T) {
		cfg := Default()
		cfg.Bootstrap.IgnoreGlobs = []string{"node_modules", ""}
		errs := cfg.Validate()

		if !hasFieldError(errs, "bootstrap.ignore_globs[1]") {
			t.Error("expected error for empty glob pattern")
		}
	})

	t.Run("malformed glob pattern", func(t *testing.T) {
		cfg := Default()
		cfg.Bootstrap.IgnoreGlobs = []string{"[unclosed"}
		errs := cfg.Validate()

		if !hasFieldError(errs, "bootstrap.ignore_globs[0]") {
			t.Error("expected error for malformed glob pattern")
		}
	})

	t.Run("wildcard patterns are valid", func(t *testing.T) {
		cfg := Default()
		cfg.Bootstrap.IgnoreGlobs = []string{"*.tmp", ".cache-*"}
		errs := cfg.Validate()

		if hasFieldError(errs, "bootstrap.ignore_globs[0]") || hasFieldError(errs, "bootstrap.ignore_globs[1]") {
			t.Errorf("wildcard patterns should be valid, got %v", errs)
		}
	})
}
