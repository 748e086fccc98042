package task

import (
	"sort"
	"strings"
)

// Selection outcome values.
const (
	OutcomeTaskSelected = "task_selected"
	OutcomeAllComplete  = "all_complete"
	OutcomeAllBlocked   = "all_blocked"
	OutcomeAllPrinted   = "all_printed"
)

// Filter narrows the candidate set during selection. A nil filter admits
// every task.
type Filter func(*Task) bool

// SubstringFilter matches tasks whose ID, description or phase contains
// the query, case-insensitively.
func SubstringFilter(query string) Filter {
	q := strings.ToLower(query)
	return func(t *Task) bool {
		haystack := strings.ToLower(t.ID + " " + t.Description + " " + t.Phase)
		return strings.Contains(haystack, q)
	}
}

// SelectInput carries the backlog and bookkeeping state for one selection.
type SelectInput struct {
	// Tasks is the full backlog in declaration order.
	Tasks []Task

	// Completed holds task keys that have finished.
	Completed map[string]bool

	// Failed holds task keys that failed this session.
	Failed map[string]bool

	// Printed holds task keys already printed in batch mode.
	Printed map[string]bool

	// Deferred holds task keys set aside for this run, typically because
	// their phase prerequisites are unmet. Deferred tasks count as blocked.
	Deferred map[string]bool

	// BatchMode enables printed-task tracking.
	BatchMode bool

	// Filter optionally narrows which tasks are considered.
	Filter Filter
}

// Selection is the result of one selection pass over the backlog.
type Selection struct {
	// Task is the chosen task, or nil when nothing is workable.
	Task *Task

	// Remaining counts tasks still pending, including blocked ones.
	Remaining int

	// Blocked counts tasks whose dependencies are unmet.
	Blocked int

	// Printed counts tasks skipped because they were already printed.
	Printed int

	// Outcome is one of the Outcome* constants.
	Outcome string
}

// Select picks the next workable task from the backlog.
//
// Candidates are walked in backlog order: completed tasks are skipped, in
// batch mode already-printed tasks are tallied and skipped, failed tasks
// are skipped unless they allow retry, filtered-out tasks are skipped, and
// deferred tasks or tasks with unmet dependencies count as blocked. The
// surviving candidates are ordered by descending priority with backlog
// position breaking ties, and the head is selected.
//
// When nothing is selectable the outcome distinguishes three states:
// all_printed (batch mode, at least one printed task still pending),
// all_blocked (unmet dependencies remain) and all_complete.
func Select(in SelectInput) Selection {
	type candidate struct {
		task  *Task
		index int
	}

	var available []candidate
	blocked := 0
	printed := 0

	for i := range in.Tasks {
		t := &in.Tasks[i]
		key := t.Key()

		if in.Completed[key] {
			continue
		}
		if in.BatchMode && in.Printed[key] {
			printed++
			continue
		}
		if in.Failed[key] && !t.Retry {
			continue
		}
		if in.Filter != nil && !in.Filter(t) {
			continue
		}
		if in.Deferred[key] {
			blocked++
			continue
		}
		if unmet := t.UnmetDependencies(in.Completed); len(unmet) > 0 {
			blocked++
			continue
		}

		available = append(available, candidate{task: t, index: i})
	}

	sort.SliceStable(available, func(a, b int) bool {
		if available[a].task.Priority != available[b].task.Priority {
			return available[a].task.Priority > available[b].task.Priority
		}
		return available[a].index < available[b].index
	})

	sel := Selection{
		Remaining: len(available) + blocked,
		Blocked:   blocked,
		Printed:   printed,
	}

	if len(available) > 0 {
		sel.Task = available[0].task
		sel.Outcome = OutcomeTaskSelected
		return sel
	}

	// All printed takes precedence so batch runs end with a summary
	// instead of reporting a spurious block.
	if in.BatchMode && printed > 0 {
		sel.Outcome = OutcomeAllPrinted
		return sel
	}
	if blocked > 0 {
		sel.Outcome = OutcomeAllBlocked
		return sel
	}
	sel.Outcome = OutcomeAllComplete
	return sel
}
