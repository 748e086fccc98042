package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specflow-dev/specflow/internal/config"
	"github.com/specflow-dev/specflow/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "specflow",
	Short: "Spec-driven task orchestration for coding agents",
	Long: `Specflow turns a spec folder (spec.md + tasks.md) into an ordered
stream of delegated tasks: it selects the next workable task, enforces
phase gates, routes each task to the best-suited agent, and persists
progress so an interrupted run resumes where it stopped.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/specflow/config.yaml)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "project root (default is the current directory)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/specflow")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SPECFLOW")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SPECFLOW_DELEGATE_MODE for delegate.mode
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// projectRoot resolves the directory specflow operates on: the --project
// flag when given, the current directory otherwise.
func projectRoot() (string, error) {
	if p := viper.GetString("project"); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("failed to resolve project root: %w", err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// workspacePaths builds the workspace path helpers for the resolved
// project root.
func workspacePaths(cfg *config.Config) (session.Paths, error) {
	root, err := projectRoot()
	if err != nil {
		return session.Paths{}, err
	}
	return session.NewPaths(root, cfg.Workspace.Dir), nil
}
