package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default workspace config
	if cfg.Workspace.Dir != ".specflow" {
		t.Errorf("Workspace.Dir = %q, want %q", cfg.Workspace.Dir, ".specflow")
	}

	// Verify default store config
	if cfg.Store.MaxBackups != 5 {
		t.Errorf("Store.MaxBackups = %d, want 5", cfg.Store.MaxBackups)
	}
	if !cfg.Store.AutoBackup {
		t.Error("Store.AutoBackup should be true by default")
	}

	// Verify default delegate config
	if cfg.Delegate.Mode != "batch" {
		t.Errorf("Delegate.Mode = %q, want %q", cfg.Delegate.Mode, "batch")
	}
	if cfg.Delegate.Command != "claude" {
		t.Errorf("Delegate.Command = %q, want %q", cfg.Delegate.Command, "claude")
	}
	if cfg.Delegate.TimeoutSeconds != 300 {
		t.Errorf("Delegate.TimeoutSeconds = %d, want 300", cfg.Delegate.TimeoutSeconds)
	}

	// Verify default git config
	if cfg.Git.TimeoutSeconds != 10 {
		t.Errorf("Git.TimeoutSeconds = %d, want 10", cfg.Git.TimeoutSeconds)
	}

	// Verify step toggles
	if !cfg.Improve.Enabled {
		t.Error("Improve.Enabled should be true by default")
	}
	if !cfg.Checkpoint.Enabled {
		t.Error("Checkpoint.Enabled should be true by default")
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("Logging.MaxSizeMB = %d, want 10", cfg.Logging.MaxSizeMB)
	}
	if cfg.Logging.Compress {
		t.Error("Logging.Compress should be false by default")
	}

	// Verify default bootstrap config
	if cfg.Bootstrap.MaxDepth != 4 {
		t.Errorf("Bootstrap.MaxDepth = %d, want 4", cfg.Bootstrap.MaxDepth)
	}
	if len(cfg.Bootstrap.IgnoreGlobs) == 0 {
		t.Error("Bootstrap.IgnoreGlobs should not be empty by default")
	}
}

func TestDefault_IgnoreGlobs(t *testing.T) {
	cfg := Default()

	want := map[string]bool{
		"node_modules": true,
		".git":         true,
		".specflow":    true,
		"vendor":       true,
	}
	for _, pattern := range cfg.Bootstrap.IgnoreGlobs {
		delete(want, pattern)
	}
	for missing := range want {
		t.Errorf("Bootstrap.IgnoreGlobs missing %q", missing)
	}
}

func TestDelegateConfig_Timeout(t *testing.T) {
	tests := []struct {
		seconds  int
		expected time.Duration
	}{
		{300, 5 * time.Minute},
		{1, 1 * time.Second},
		{90, 90 * time.Second},
		{0, 0},
	}

	for _, tt := range tests {
		cfg := DelegateConfig{TimeoutSeconds: tt.seconds}
		result := cfg.Timeout()
		if result != tt.expected {
			t.Errorf("Timeout() with %ds = %v, want %v", tt.seconds, result, tt.expected)
		}
	}
}

func TestGitConfig_Timeout(t *testing.T) {
	cfg := GitConfig{TimeoutSeconds: 10}
	if got := cfg.Timeout(); got != 10*time.Second {
		t.Errorf("Timeout() = %v, want %v", got, 10*time.Second)
	}
}

func TestValidDelegateModes(t *testing.T) {
	modes := ValidDelegateModes()

	expected := []string{"batch", "print", "file", "cli"}
	if len(modes) != len(expected) {
		t.Errorf("ValidDelegateModes() length = %d, want %d", len(modes), len(expected))
	}

	for i, mode := range expected {
		if modes[i] != mode {
			t.Errorf("ValidDelegateModes()[%d] = %q, want %q", i, modes[i], mode)
		}
	}
}

func TestIsValidDelegateMode(t *testing.T) {
	tests := []struct {
		mode  string
		valid bool
	}{
		{"batch", true},
		{"print", true},
		{"file", true},
		{"cli", true},
		{"invalid", false},
		{"", false},
		{"CLI", false}, // Case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			result := IsValidDelegateMode(tt.mode)
			if result != tt.valid {
				t.Errorf("IsValidDelegateMode(%q) = %v, want %v", tt.mode, result, tt.valid)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/specflow"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	// Test without XDG_CONFIG_HOME
	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		// Should be based on home directory
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "specflow")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

	_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/specflow/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestGet(t *testing.T) {
	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	// Get() should return defaults when no config file exists
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	// Should have default values
	if cfg.Delegate.Mode != "batch" {
		t.Errorf("Get().Delegate.Mode = %q, want %q", cfg.Delegate.Mode, "batch")
	}
	if cfg.Workspace.Dir != ".specflow" {
		t.Errorf("Get().Workspace.Dir = %q, want %q", cfg.Workspace.Dir, ".specflow")
	}
}
