package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/specflow-dev/specflow/internal/config"
	"github.com/specflow-dev/specflow/internal/delegate"
	"github.com/specflow-dev/specflow/internal/expertise"
	"github.com/specflow-dev/specflow/internal/progress"
	"github.com/specflow-dev/specflow/internal/session"
	"github.com/specflow-dev/specflow/internal/store"
	"github.com/specflow-dev/specflow/internal/tui"
)

// maxStatusSessions caps how many recent sessions the overview lists.
const maxStatusSessions = 5

var (
	statusSpec  string
	statusWatch bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show spec progress and recent sessions",
	Long: `Status renders per-spec progress (task counts, failures, current
phase) plus recent sessions, the expertise library, and any pending
file-mode delegations.

With --spec it shows one spec in detail; adding --watch keeps the view
live, reloading whenever the progress file changes.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusSpec, "spec", "s", "", "Show one spec in detail")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Live-update the spec view (requires --spec)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	paths, err := workspacePaths(cfg)
	if err != nil {
		return err
	}

	if statusWatch {
		if statusSpec == "" {
			return fmt.Errorf("--watch requires --spec")
		}
		if _, err := os.Stat(paths.SpecDir(statusSpec)); err != nil {
			return fmt.Errorf("spec %q not found under %s", statusSpec, paths.SpecsDir())
		}
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("--watch needs an interactive terminal")
		}
		return tui.RunWatch(statusSpec, paths.ProgressFile(statusSpec))
	}

	out := cmd.OutOrStdout()

	if statusSpec != "" {
		if _, err := os.Stat(paths.SpecDir(statusSpec)); err != nil {
			return fmt.Errorf("spec %q not found under %s", statusSpec, paths.SpecsDir())
		}
		p, err := progress.Load(paths.ProgressFile(statusSpec))
		if err != nil {
			return err
		}
		fmt.Fprint(out, tui.RenderSpecStatus(tui.SpecStatusFromProgress(statusSpec, p)))
		return nil
	}

	report, err := buildStatusReport(paths)
	if err != nil {
		return err
	}
	fmt.Fprint(out, tui.RenderStatusReport(*report))
	return nil
}

// buildStatusReport assembles the overview snapshot: every spec folder's
// progress, the most recent sessions with their checkpoints, the
// expertise domains, and the pending-delegation count. Unreadable specs
// appear with zero counts; unreadable sessions are skipped.
func buildStatusReport(paths session.Paths) (*tui.StatusReport, error) {
	report := &tui.StatusReport{ProjectRoot: paths.ProjectRoot()}

	entries, err := os.ReadDir(paths.SpecsDir())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		p, err := progress.Load(paths.ProgressFile(name))
		if err != nil {
			report.Specs = append(report.Specs, tui.SpecStatus{Name: name})
			continue
		}
		report.Specs = append(report.Specs, tui.SpecStatusFromProgress(name, p))
	}

	infos, err := store.ListSessions(paths.SessionsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, info := range infos {
		if len(report.Sessions) >= maxStatusSessions {
			break
		}
		s := store.New(paths.SessionsDir(), info.ID, store.Options{DisableBackups: true})

		var st session.State
		found, err := s.Load(&st)
		if err != nil || !found {
			continue
		}

		status := tui.SessionStatus{
			ID:        st.Session.ID,
			SpecName:  st.Session.SpecName,
			Mode:      st.Session.Mode,
			StartedAt: st.Session.StartedAt,
			EndedAt:   st.Session.EndedAt,
			Resumed:   st.Session.Resumed,
		}
		if cps, err := s.ListCheckpoints(); err == nil {
			for _, cp := range cps {
				status.Checkpoints = append(status.Checkpoints, cp.Name)
			}
		}
		report.Sessions = append(report.Sessions, status)
	}

	report.Domains = expertise.Load(paths.ExpertiseDir()).DomainNames()

	if pending, err := delegate.ReadPending(paths.PendingDelegationsFile()); err == nil {
		report.PendingDelegations = len(pending)
	}

	return report, nil
}
