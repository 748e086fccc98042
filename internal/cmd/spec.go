package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/specflow-dev/specflow/internal/bootstrap"
	"github.com/specflow-dev/specflow/internal/config"
)

var (
	specName         string
	specRequirements string
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Scaffold a new spec folder",
	Long: `Spec creates a folder under the workspace specs directory with a spec
document, a tasks.md template, and an empty progress file. The name is
slugified into the folder name: "User Auth" becomes user-auth.`,
	RunE: runSpec,
}

func init() {
	rootCmd.AddCommand(specCmd)

	specCmd.Flags().StringVarP(&specName, "name", "n", "", "Spec name (required)")
	specCmd.Flags().StringVarP(&specRequirements, "requirements", "r", "", "Requirements text written into spec.md")
	_ = specCmd.MarkFlagRequired("name")
}

func runSpec(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	paths, err := workspacePaths(cfg)
	if err != nil {
		return err
	}

	dir, err := bootstrap.ScaffoldSpec(paths, specName, specRequirements)
	if err != nil {
		return err
	}

	slug := filepath.Base(dir)
	rel, relErr := filepath.Rel(paths.ProjectRoot(), dir)
	if relErr != nil {
		rel = dir
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created spec %s at %s\n", slug, rel)
	fmt.Fprintf(out, "Next: fill in %s, then run: specflow implement --spec %s\n",
		filepath.Join(rel, "tasks.md"), slug)
	return nil
}
