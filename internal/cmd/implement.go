package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/specflow-dev/specflow/internal/config"
	"github.com/specflow-dev/specflow/internal/delegate"
	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/flow"
	"github.com/specflow-dev/specflow/internal/gitinfo"
	"github.com/specflow-dev/specflow/internal/logging"
	"github.com/specflow-dev/specflow/internal/router"
	"github.com/specflow-dev/specflow/internal/session"
	"github.com/specflow-dev/specflow/internal/store"
	"github.com/specflow-dev/specflow/internal/task"
)

var (
	implementSpec         string
	implementMode         string
	implementSession      string
	implementFilter       string
	implementNoCheckpoint bool
	implementNoImprove    bool
)

var implementCmd = &cobra.Command{
	Use:   "implement",
	Short: "Work through a spec's backlog, delegating tasks to agents",
	Long: `Implement runs the orchestration loop over one spec: select the next
workable task, check its phase against the gate order, route it to an
agent, and delegate it in the configured mode.

Modes: batch prepares instructions for every workable task, print shows
one instruction and stops, file queues instructions into
pending_delegations.json, and cli hands each instruction to the agent
command and records the result.

State is saved per session. Interrupting a run (Ctrl-C) saves a
checkpoint; rerun with --session to resume where it stopped.`,
	RunE: runImplement,
}

func init() {
	rootCmd.AddCommand(implementCmd)

	implementCmd.Flags().StringVarP(&implementSpec, "spec", "s", "", "Spec folder name (required)")
	implementCmd.Flags().StringVarP(&implementMode, "mode", "m", "", "Delegation mode: batch, print, file, or cli (default from config)")
	implementCmd.Flags().StringVar(&implementSession, "session", "", "Session ID to resume")
	implementCmd.Flags().StringVar(&implementFilter, "filter", "", "Only select tasks whose id, description, or phase contains this text")
	implementCmd.Flags().BoolVar(&implementNoCheckpoint, "no-checkpoint", false, "Disable checkpointing after each completed task")
	implementCmd.Flags().BoolVar(&implementNoImprove, "no-improve", false, "Disable recording learnings into the expertise library")
	_ = implementCmd.MarkFlagRequired("spec")
}

func runImplement(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	paths, err := workspacePaths(cfg)
	if err != nil {
		return err
	}

	mode := implementMode
	if mode == "" {
		mode = cfg.Delegate.Mode
	}
	if !config.IsValidDelegateMode(mode) {
		return fmt.Errorf("invalid mode %q (valid: %s)", mode, strings.Join(config.ValidDelegateModes(), ", "))
	}

	sessionID := implementSession
	resume := sessionID != ""
	if sessionID == "" {
		sessionID = session.NewID()
	}

	log := logging.NopLogger()
	if cfg.Logging.Enabled {
		log, err = logging.NewRotatingLogger(paths.DebugLogFile(sessionID), cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		})
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
	}
	defer log.Close()
	log = log.WithSession(sessionID).WithSpec(implementSpec)

	st := store.New(paths.SessionsDir(), sessionID, store.Options{
		MaxBackups:     cfg.Store.MaxBackups,
		DisableBackups: !cfg.Store.AutoBackup,
		Logger:         log,
	})
	if err := st.AcquireRunLock(); err != nil {
		return err
	}
	defer st.ReleaseRunLock()

	rules := router.DefaultRules()
	if err := rules.MergeFile(paths.RoutingFile()); err != nil {
		log.Warn("routing overrides ignored", "error", err)
	}
	for _, note := range rules.InvalidPatterns() {
		log.Warn("invalid routing pattern", "detail", note)
	}

	out := cmd.OutOrStdout()
	fc := &flow.Context{
		Paths:      paths,
		SpecName:   implementSpec,
		Mode:       mode,
		Resume:     resume,
		Improve:    cfg.Improve.Enabled && !implementNoImprove,
		Checkpoint: cfg.Checkpoint.Enabled && !implementNoCheckpoint,
		Store:      st,
		Router:     router.New(rules, log),
		Delegator: delegate.New(delegate.Options{
			Mode:        mode,
			Command:     cfg.Delegate.Command,
			Timeout:     cfg.Delegate.Timeout(),
			ProjectRoot: paths.ProjectRoot(),
			PendingFile: paths.PendingDelegationsFile(),
			Out:         out,
			Logger:      log,
		}),
		Git: gitinfo.New(paths.ProjectRoot(), cfg.Git.Timeout(), log),
		Log: log,
		Out: out,
	}
	if implementFilter != "" {
		fc.Filter = task.SubstringFilter(implementFilter)
	}

	graph, err := flow.BuildImplementation(fc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := graph.Run(ctx, fc)
	if runErr == nil {
		return nil
	}

	if errors.Is(runErr, context.Canceled) {
		saveInterrupted(fc, st, log)
		fmt.Fprintf(cmd.ErrOrStderr(), "\nInterrupted. State saved. Resume with:\n  %s\n", resumeHint(fc, sessionID))
		// Defers are skipped past os.Exit, so clean up here.
		stop()
		_ = st.ReleaseRunLock()
		_ = log.Close()
		os.Exit(130)
	}
	return runErr
}

// saveInterrupted persists whatever the run held when the signal landed:
// the session snapshot, a labeled checkpoint, and the progress file. All
// writes are atomic, so an ill-timed interrupt never tears a file.
func saveInterrupted(fc *flow.Context, st *store.Store, log *logging.Logger) {
	if fc.State == nil {
		return
	}
	if err := st.Save(fc.State); err != nil {
		log.Error("interrupt save failed", "error", err)
		return
	}
	if _, err := st.Checkpoint(fc.State, "interrupt"); err != nil {
		log.Warn("interrupt checkpoint failed", "error", err)
	}
	if fc.State.Progress != nil {
		if err := fc.State.Progress.Save(fc.Paths.ProgressFile(fc.SpecName)); err != nil {
			log.Warn("interrupt progress save failed", "error", err)
		}
	}
}

// resumeHint builds the resume command line, falling back to the bare
// ids when the run was interrupted before the session document existed.
func resumeHint(fc *flow.Context, sessionID string) string {
	if fc.State != nil {
		return fc.State.Session.ResumeHint()
	}
	return fmt.Sprintf("specflow implement --spec %s --session %s", fc.SpecName, sessionID)
}
