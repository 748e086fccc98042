package flow

import (
	"context"
	"fmt"

	"github.com/specflow-dev/specflow/internal/delegate"
	"github.com/specflow-dev/specflow/internal/expertise"
	"github.com/specflow-dev/specflow/internal/router"
	"github.com/specflow-dev/specflow/internal/session"
	"github.com/specflow-dev/specflow/internal/task"
	"github.com/specflow-dev/specflow/internal/tui"
)

// Step names.
const (
	StepStart         = "start"
	StepLoadExpertise = "load-expertise"
	StepSelectTask    = "select-task"
	StepPhaseGuard    = "phase-guard"
	StepRoute         = "route"
	StepDelegate      = "delegate"
	StepRecordResult  = "record-result"
	StepMarkComplete  = "mark-complete"
	StepSelfImprove   = "self-improve"
	StepCheckpoint    = "checkpoint"
	StepEnd           = "end"
)

// Outcome labels emitted by the implementation steps.
const (
	OutcomeOK Outcome = "ok"

	OutcomeLoaded  Outcome = "loaded"
	OutcomePartial Outcome = "partial"
	OutcomeEmpty   Outcome = "empty"

	OutcomeTaskSelected Outcome = Outcome(task.OutcomeTaskSelected)
	OutcomeAllComplete  Outcome = Outcome(task.OutcomeAllComplete)
	OutcomeAllBlocked   Outcome = Outcome(task.OutcomeAllBlocked)
	OutcomeAllPrinted   Outcome = Outcome(task.OutcomeAllPrinted)

	OutcomeValid   Outcome = "valid"
	OutcomeBlocked Outcome = "blocked"

	OutcomeHigh   Outcome = Outcome(router.ConfidenceHigh)
	OutcomeMedium Outcome = Outcome(router.ConfidenceMedium)
	OutcomeLow    Outcome = Outcome(router.ConfidenceLow)

	OutcomeDelegated     Outcome = "delegated"
	OutcomePrinted       Outcome = "printed"
	OutcomePrintComplete Outcome = "print_complete"
	OutcomeError         Outcome = "error"

	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"

	OutcomeCompleted Outcome = "completed"

	OutcomeImproved  Outcome = "improved"
	OutcomeNoChanges Outcome = "no_changes"
	OutcomeSkipped   Outcome = "skipped"

	OutcomeSaved Outcome = "saved"
)

// step is the common Step implementation: a name, the outcomes it may
// emit, and the function that runs it.
type step struct {
	name     string
	outcomes []Outcome
	run      func(ctx context.Context, fc *Context) (Outcome, error)
}

func (s *step) Name() string { return s.name }

func (s *step) Outcomes() []Outcome { return s.outcomes }

func (s *step) Run(ctx context.Context, fc *Context) (Outcome, error) {
	return s.run(ctx, fc)
}

// startStep begins or resumes the session and seeds the run state.
func startStep() Step {
	return &step{
		name:     StepStart,
		outcomes: []Outcome{OutcomeOK},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			run, err := session.Begin(ctx, session.BeginOptions{
				Paths:    fc.Paths,
				SpecName: fc.SpecName,
				Mode:     fc.Mode,
				Resume:   fc.Resume,
				Store:    fc.Store,
				Git:      fc.Git,
				Log:      fc.Log,
			})
			if err != nil {
				return "", err
			}
			fc.State = run.State
			fc.Spec = run.Spec
			fc.Orientation = run.Orientation
			if fc.Printed == nil {
				fc.Printed = make(map[string]bool)
			}
			if fc.Deferred == nil {
				fc.Deferred = make(map[string]bool)
			}
			return OutcomeOK, nil
		},
	}
}

// loadExpertiseStep loads the project's expertise library. Loading never
// fails the run: a missing directory is empty, bad files mean partial.
func loadExpertiseStep() Step {
	return &step{
		name:     StepLoadExpertise,
		outcomes: []Outcome{OutcomeLoaded, OutcomePartial, OutcomeEmpty},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			fc.Expertise = expertise.Load(fc.Paths.ExpertiseDir())
			for _, e := range fc.Expertise.Errs {
				fc.Warn("expertise file skipped: " + e)
			}
			switch {
			case fc.Expertise.Empty():
				return OutcomeEmpty, nil
			case len(fc.Expertise.Errs) > 0:
				return OutcomePartial, nil
			default:
				return OutcomeLoaded, nil
			}
		},
	}
}

// selectTaskStep picks the next workable task and records it as current.
func selectTaskStep() Step {
	return &step{
		name: StepSelectTask,
		outcomes: []Outcome{
			OutcomeTaskSelected, OutcomeAllComplete, OutcomeAllBlocked, OutcomeAllPrinted,
		},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			p := fc.State.Progress
			sel := task.Select(task.SelectInput{
				Tasks:     p.Tasks,
				Completed: p.CompletedSet(),
				Failed:    p.FailedSet(),
				Printed:   fc.Printed,
				Deferred:  fc.Deferred,
				BatchMode: fc.Mode == delegate.ModeBatch,
				Filter:    fc.Filter,
			})
			fc.Selection = sel
			fc.Current = sel.Task

			if sel.Task != nil {
				key := sel.Task.Key()
				p.CurrentTask = key
				p.CurrentPhase = sel.Task.Phase
				fc.logger().Info("task selected",
					"task", key, "phase", sel.Task.Phase, "remaining", sel.Remaining)
			} else {
				fc.logger().Info("nothing selectable",
					"outcome", sel.Outcome, "blocked", sel.Blocked, "printed", sel.Printed)
			}
			return Outcome(sel.Outcome), nil
		},
	}
}

// phaseGuardStep verifies phase prerequisites for the selected task.
// Blocked tasks are deferred for the rest of the run so selection moves
// on instead of re-picking them.
func phaseGuardStep() Step {
	return &step{
		name:     StepPhaseGuard,
		outcomes: []Outcome{OutcomeValid, OutcomeBlocked},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			result := fc.State.Progress.GuardPhase(nil, fc.Current.Phase)
			for _, w := range result.Warnings {
				fc.Warn(w)
			}
			if !result.Valid {
				fc.Deferred[fc.CurrentKey()] = true
				fc.logger().Warn("phase gate blocked task",
					"task", fc.CurrentKey(),
					"phase", fc.Current.Phase,
					"missing", result.MissingPhases)
				return OutcomeBlocked, nil
			}
			return OutcomeValid, nil
		},
	}
}

// routeStep decides which agent receives the selected task.
func routeStep() Step {
	return &step{
		name:     StepRoute,
		outcomes: []Outcome{OutcomeHigh, OutcomeMedium, OutcomeLow},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			var domains []string
			if fc.Expertise != nil {
				domains = fc.Expertise.DomainNames()
			}
			fc.Decision = fc.Router.Route(router.Request{
				Description:      fc.Current.Description,
				Files:            fc.Current.FilePatterns,
				ExpertiseDomains: domains,
			})
			fc.logger().Info("task routed",
				"task", fc.CurrentKey(),
				"agent", fc.Decision.Agent,
				"confidence", fc.Decision.Confidence,
				"reason", fc.Decision.Reason)
			return Outcome(fc.Decision.Confidence), nil
		},
	}
}

// delegateStep hands the task to the routed agent. A failed hand-off
// defers the task and records the failure so the run moves on; what
// happens on success depends on the delegation mode.
func delegateStep() Step {
	return &step{
		name: StepDelegate,
		outcomes: []Outcome{
			OutcomeDelegated, OutcomePrinted, OutcomePrintComplete, OutcomeError,
		},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			rec := fc.Delegator.Delegate(ctx, delegate.InstructionInput{
				Agent:       fc.Decision.Agent,
				Task:        fc.Current,
				SpecName:    fc.SpecName,
				SpecPath:    fc.Spec.Path,
				SpecFiles:   fc.Spec.Files,
				SpecVisuals: fc.Spec.Visuals,
				Expertise:   fc.relevantExpertise(),
			})
			fc.LastRecord = rec
			fc.History = append(fc.History, rec)

			key := fc.CurrentKey()
			if rec.Failed() {
				fc.State.Progress.RecordFailure(key, rec.Error)
				fc.Deferred[key] = true
				return OutcomeError, nil
			}

			switch fc.Delegator.Mode() {
			case delegate.ModePrint:
				return OutcomePrintComplete, nil
			case delegate.ModeBatch:
				fc.Printed[key] = true
				return OutcomePrinted, nil
			default:
				return OutcomeDelegated, nil
			}
		},
	}
}

// recordResultStep turns the delegation record into task bookkeeping.
func recordResultStep() Step {
	return &step{
		name:     StepRecordResult,
		outcomes: []Outcome{OutcomeSuccess, OutcomeFailed},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			rec := fc.LastRecord
			if rec.Executed && rec.Error == "" {
				return OutcomeSuccess, nil
			}

			reason := rec.Error
			if reason == "" {
				reason = "delegation did not execute"
			}
			key := fc.CurrentKey()
			fc.State.Progress.RecordFailure(key, reason)
			fc.Deferred[key] = true
			fc.logger().Warn("task failed", "task", key, "error", reason)
			return OutcomeFailed, nil
		},
	}
}

// markCompleteStep records the task as done, rolls up its phase when the
// phase has no work left, and queues a learning line for self-improve.
func markCompleteStep() Step {
	return &step{
		name:     StepMarkComplete,
		outcomes: []Outcome{OutcomeCompleted},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			key := fc.CurrentKey()
			p := fc.State.Progress
			p.MarkComplete(key, "")

			if phase := fc.Current.Phase; p.PhaseDone(phase) {
				p.CompletePhase(phase)
				fc.logger().Info("phase completed", "phase", phase)
			}

			fc.State.Learnings = append(fc.State.Learnings, fmt.Sprintf("%s: completed", key))
			fc.logger().Info("task completed", "task", key, "pending", p.PendingCount())
			return OutcomeCompleted, nil
		},
	}
}

// selfImproveStep appends the newest learning to the expertise files of
// the domains the router detected for this task.
func selfImproveStep() Step {
	return &step{
		name:     StepSelfImprove,
		outcomes: []Outcome{OutcomeImproved, OutcomeNoChanges, OutcomeSkipped},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			if !fc.Improve {
				return OutcomeSkipped, nil
			}
			if len(fc.Decision.MatchedDomains) == 0 || len(fc.State.Learnings) == 0 {
				return OutcomeNoChanges, nil
			}

			latest := fc.State.Learnings[len(fc.State.Learnings)-1]
			changed, err := expertise.AppendLearnings(
				fc.Paths.ExpertiseDir(), fc.Decision.MatchedDomains, []string{latest})
			if err != nil {
				fc.Warn("expertise update failed: " + err.Error())
				return OutcomeNoChanges, nil
			}
			if !changed {
				return OutcomeNoChanges, nil
			}
			fc.logger().Info("expertise updated",
				"domains", fc.Decision.MatchedDomains, "learning", latest)
			return OutcomeImproved, nil
		},
	}
}

// checkpointStep saves the session state and writes progress back to the
// spec folder, so an interrupt after this point loses at most one task.
func checkpointStep() Step {
	return &step{
		name:     StepCheckpoint,
		outcomes: []Outcome{OutcomeSaved, OutcomeSkipped, OutcomeError},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			if !fc.Checkpoint {
				return OutcomeSkipped, nil
			}
			if err := fc.Store.Save(fc.State); err != nil {
				fc.Warn("checkpoint save failed: " + err.Error())
				return OutcomeError, nil
			}
			if err := fc.State.Progress.Save(fc.Paths.ProgressFile(fc.SpecName)); err != nil {
				fc.Warn("progress writeback failed: " + err.Error())
				return OutcomeError, nil
			}
			return OutcomeSaved, nil
		},
	}
}

// endStep closes the session: final save, progress writeback, and the
// batch summary when the run printed instructions.
func endStep() Step {
	return &step{
		name:     StepEnd,
		outcomes: []Outcome{OutcomeSaved, OutcomeError},
		run: func(ctx context.Context, fc *Context) (Outcome, error) {
			if fc.Mode == delegate.ModeBatch && len(fc.History) > 0 && fc.Out != nil {
				fmt.Fprint(fc.Out, tui.RenderBatchSummary(fc.History))
			}

			err := session.End(&session.Run{State: fc.State, Spec: fc.Spec}, fc.Store, fc.Paths)
			if err != nil {
				fc.Warn("final save failed: " + err.Error())
				return OutcomeError, nil
			}
			fc.logger().Info("session ended",
				"session", fc.State.Session.ID,
				"completed", len(fc.State.Progress.Completed),
				"pending", fc.State.Progress.PendingCount())
			return OutcomeSaved, nil
		},
	}
}

// relevantExpertise resolves the router-detected domains to their loaded
// documents for delegation context.
func (fc *Context) relevantExpertise() []*expertise.Domain {
	if fc.Expertise == nil {
		return nil
	}
	var domains []*expertise.Domain
	for _, name := range fc.Decision.MatchedDomains {
		if d, ok := fc.Expertise.Domain(name); ok {
			domains = append(domains, d)
		}
	}
	return domains
}

// BuildImplementation wires the implementation run graph. The transition
// table is static; mode and flag behavior live inside the steps.
func BuildImplementation(fc *Context) (*Graph, error) {
	g := NewGraph(fc.Log)

	g.AddStep(startStep())
	g.AddStep(loadExpertiseStep())
	g.AddStep(selectTaskStep())
	g.AddStep(phaseGuardStep())
	g.AddStep(routeStep())
	g.AddStep(delegateStep())
	g.AddStep(recordResultStep())
	g.AddStep(markCompleteStep())
	g.AddStep(selfImproveStep())
	g.AddStep(checkpointStep())
	g.AddStep(endStep())

	g.SetStart(StepStart)
	g.MarkTerminal(StepEnd)

	g.AddEdge(StepStart, OutcomeOK, StepLoadExpertise)

	g.AddEdge(StepLoadExpertise, OutcomeLoaded, StepSelectTask)
	g.AddEdge(StepLoadExpertise, OutcomePartial, StepSelectTask)
	g.AddEdge(StepLoadExpertise, OutcomeEmpty, StepSelectTask)

	g.AddEdge(StepSelectTask, OutcomeTaskSelected, StepPhaseGuard)
	g.AddEdge(StepSelectTask, OutcomeAllComplete, StepEnd)
	g.AddEdge(StepSelectTask, OutcomeAllBlocked, StepEnd)
	g.AddEdge(StepSelectTask, OutcomeAllPrinted, StepEnd)

	g.AddEdge(StepPhaseGuard, OutcomeBlocked, StepSelectTask)
	g.AddEdge(StepPhaseGuard, OutcomeValid, StepRoute)

	g.AddEdge(StepRoute, OutcomeHigh, StepDelegate)
	g.AddEdge(StepRoute, OutcomeMedium, StepDelegate)
	g.AddEdge(StepRoute, OutcomeLow, StepDelegate)

	g.AddEdge(StepDelegate, OutcomeError, StepSelectTask)
	g.AddEdge(StepDelegate, OutcomePrinted, StepSelectTask)
	g.AddEdge(StepDelegate, OutcomePrintComplete, StepEnd)
	g.AddEdge(StepDelegate, OutcomeDelegated, StepRecordResult)

	g.AddEdge(StepRecordResult, OutcomeFailed, StepSelectTask)
	g.AddEdge(StepRecordResult, OutcomeSuccess, StepMarkComplete)

	g.AddEdge(StepMarkComplete, OutcomeCompleted, StepSelfImprove)

	g.AddEdge(StepSelfImprove, OutcomeImproved, StepCheckpoint)
	g.AddEdge(StepSelfImprove, OutcomeNoChanges, StepCheckpoint)
	g.AddEdge(StepSelfImprove, OutcomeSkipped, StepCheckpoint)

	g.AddEdge(StepCheckpoint, OutcomeSaved, StepSelectTask)
	g.AddEdge(StepCheckpoint, OutcomeSkipped, StepSelectTask)
	g.AddEdge(StepCheckpoint, OutcomeError, StepSelectTask)

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
