// Package flow implements the orchestration state machine that drives an
// implementation run. A fixed set of named steps is connected by a static
// transition table keyed on string outcomes; the graph threads one
// mutable Context through the steps until a terminal step finishes.
//
// Steps never communicate through errors: a step that can recover
// expresses the condition as an outcome and the table decides what runs
// next. A non-nil error from a step aborts the run, as does an outcome
// the step did not declare.
package flow

import (
	"context"
	"io"

	"github.com/specflow-dev/specflow/internal/delegate"
	"github.com/specflow-dev/specflow/internal/expertise"
	"github.com/specflow-dev/specflow/internal/gitinfo"
	"github.com/specflow-dev/specflow/internal/logging"
	"github.com/specflow-dev/specflow/internal/router"
	"github.com/specflow-dev/specflow/internal/session"
	"github.com/specflow-dev/specflow/internal/store"
	"github.com/specflow-dev/specflow/internal/task"
)

// Outcome is the label a step emits to pick the next transition.
type Outcome string

// Step is one unit of the orchestration graph. Outcomes declares every
// label Run may emit; emitting anything else aborts the run.
type Step interface {
	Name() string
	Outcomes() []Outcome
	Run(ctx context.Context, fc *Context) (Outcome, error)
}

// Transition records one dispatched step and the outcome it emitted.
type Transition struct {
	Step    string
	Outcome Outcome
}

// Context is the single mutable value threaded through every step of a
// run. Configuration and collaborators are set by the caller; run state
// is populated by the steps themselves.
type Context struct {
	// Configuration.
	Paths      session.Paths
	SpecName   string
	Mode       string
	Resume     bool
	Improve    bool
	Checkpoint bool
	Filter     task.Filter

	// Collaborators.
	Store     *store.Store
	Router    *router.Router
	Delegator *delegate.Delegator
	Git       *gitinfo.Client
	Log       *logging.Logger
	Out       io.Writer

	// Run state.
	State       *session.State
	Spec        *session.SpecFolder
	Orientation gitinfo.Orientation
	Expertise   *expertise.Library
	Current     *task.Task
	Selection   task.Selection
	Decision    router.Decision
	LastRecord  delegate.Record
	History     []delegate.Record
	Printed     map[string]bool
	Deferred    map[string]bool
	Warnings    []string
	Trace       []Transition
}

// Warn records a user-visible warning and logs it.
func (fc *Context) Warn(msg string) {
	fc.Warnings = append(fc.Warnings, msg)
	fc.logger().Warn(msg)
}

func (fc *Context) logger() *logging.Logger {
	if fc.Log == nil {
		return logging.NopLogger()
	}
	return fc.Log
}

// CurrentKey returns the selected task's key, or "" between selections.
func (fc *Context) CurrentKey() string {
	if fc.Current == nil {
		return ""
	}
	return fc.Current.Key()
}
