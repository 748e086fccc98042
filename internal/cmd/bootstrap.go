package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specflow-dev/specflow/internal/bootstrap"
	"github.com/specflow-dev/specflow/internal/config"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Analyze the project and generate expertise and routing files",
	Long: `Bootstrap walks the project, detects its tech stack and architecture,
and seeds the workspace: one expertise file per detected domain, an
expertise index, and a routing.yaml skeleton for hand edits.

Re-running bootstrap regenerates these files, overwriting any learnings
recorded since the last run.`,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	paths, err := workspacePaths(cfg)
	if err != nil {
		return err
	}

	res, err := bootstrap.Run(paths, bootstrap.Options{
		MaxDepth: cfg.Bootstrap.MaxDepth,
		Ignores:  cfg.Bootstrap.IgnoreGlobs,
	})
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Analyzed %s\n", paths.ProjectRoot())
	printStackLine(out, "Languages", res.Stack.Languages)
	printStackLine(out, "Frameworks", res.Stack.Frameworks)
	printStackLine(out, "Databases", res.Stack.Databases)
	printStackLine(out, "Tools", res.Stack.Tools)

	if len(res.Domains) == 0 {
		fmt.Fprintln(out, "No domains detected; expertise library left empty.")
	} else {
		fmt.Fprintf(out, "Expertise generated for: %s\n", strings.Join(res.Domains, ", "))
	}
	fmt.Fprintf(out, "Routing skeleton written to %s\n", res.RoutingFile)
	return nil
}

func printStackLine(out io.Writer, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(out, "  %s: %s\n", label, strings.Join(values, ", "))
}
