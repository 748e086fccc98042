package session

import (
	"context"
	"strings"
	"time"

	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/gitinfo"
	"github.com/specflow-dev/specflow/internal/logging"
	"github.com/specflow-dev/specflow/internal/progress"
	"github.com/specflow-dev/specflow/internal/store"
	"github.com/specflow-dev/specflow/internal/task"
)

// BeginOptions configures session start. Store must be bound to the
// session id this run uses; Resume asks Begin to restore the store's
// prior state when it has any.
type BeginOptions struct {
	Paths    Paths
	SpecName string
	Mode     string
	Resume   bool
	Store    *store.Store
	Git      *gitinfo.Client
	Log      *logging.Logger
}

// Run is a session hydrated by Begin: the state document, the loaded
// spec folder, and the repository orientation.
type Run struct {
	State       *State
	Spec        *SpecFolder
	Orientation gitinfo.Orientation
}

// Begin starts or resumes a session.
//
// A resumed session restores progress and learnings from the store, then
// reconciles them with the spec folder: progress.json may have moved on
// (an agent finishing work after the interrupt), and tasks.md is
// re-parsed so new tasks join the backlog and externally checked boxes
// count as completed. A fresh session builds its state from the spec
// folder alone. Corrupt saved state is never fatal: the session starts
// fresh with a warning, as the progress file still bounds the rework.
func Begin(ctx context.Context, opts BeginOptions) (*Run, error) {
	log := opts.Log
	if log == nil {
		log = logging.NopLogger()
	}

	state := &State{
		Session: Session{
			ID:          opts.Store.SessionID(),
			SpecName:    opts.SpecName,
			ProjectRoot: opts.Paths.ProjectRoot(),
			Mode:        opts.Mode,
			StartedAt:   time.Now().UTC(),
		},
	}

	if opts.Resume {
		var prior State
		found, err := opts.Store.Load(&prior)
		switch {
		case err != nil:
			log.Warn("saved session unreadable, starting fresh",
				"session", state.Session.ID, "error", err)
		case found && prior.Session.ID != "":
			state.Session.Resumed = true
			state.Progress = prior.Progress
			state.Learnings = prior.Learnings
			completed := 0
			if prior.Progress != nil {
				completed = len(prior.Progress.Completed)
			}
			log.Info("session resumed",
				"session", state.Session.ID, "completed", completed)
		default:
			log.Info("no saved state for session, starting fresh",
				"session", state.Session.ID)
		}
	}

	spec, err := LoadSpecFolder(opts.Paths.SpecDir(opts.SpecName))
	if err != nil {
		return nil, err
	}

	specProgress, err := progress.Load(opts.Paths.ProgressFile(opts.SpecName))
	if err != nil {
		log.Warn("progress file unreadable, starting empty", "error", err)
		specProgress = progress.New()
	}

	if state.Progress == nil {
		state.Progress = specProgress
	} else {
		state.Progress.Merge(specProgress)
	}

	mergeBacklog(state.Progress, spec.Tasks)

	if result := task.ValidateBacklog(state.Progress.Tasks); result.HasErrors() {
		return nil, errors.NewValidationError(validationSummary(result)).
			WithField("tasks").
			WithCause(errors.ErrBacklogInvalid)
	}

	run := &Run{State: state, Spec: spec}
	if opts.Git != nil {
		run.Orientation = opts.Git.Orient(ctx)
	}

	log.Info("session started",
		"session", state.Session.ID,
		"spec", opts.SpecName,
		"resumed", state.Session.Resumed,
		"tasks", len(state.Progress.Tasks),
		"completed", len(state.Progress.Completed))

	return run, nil
}

// mergeBacklog folds tasks parsed from tasks.md into the progress record.
// Unknown tasks join the backlog; tasks checked off in the markdown are
// unioned into the completed list without log entries, since the engine
// did not witness their completion.
func mergeBacklog(p *progress.Progress, parsed []task.Task) {
	have := make(map[string]bool, len(p.Tasks))
	for i := range p.Tasks {
		have[p.Tasks[i].Key()] = true
	}

	for i := range parsed {
		t := parsed[i]
		key := t.Key()
		if !have[key] {
			p.Tasks = append(p.Tasks, t)
			have[key] = true
		}
		if t.IsCompleted() && !p.IsCompleted(key) {
			p.Completed = append(p.Completed, key)
		}
	}
}

func validationSummary(result *task.ValidationResult) string {
	var msgs []string
	for _, m := range result.Messages {
		if m.IsError() {
			msgs = append(msgs, m.Message)
		}
	}
	return "backlog validation failed: " + strings.Join(msgs, "; ")
}

// End closes a session: stamps the end time, saves the final state, and
// writes progress back to the spec folder so external tools see the same
// record the engine does. Both writes are attempted even if one fails.
func End(run *Run, st *store.Store, paths Paths) error {
	run.State.Session.EndedAt = time.Now().UTC()

	saveErr := st.Save(run.State)
	progressErr := run.State.Progress.Save(paths.ProgressFile(run.State.Session.SpecName))

	return errors.Join(saveErr, progressErr)
}
