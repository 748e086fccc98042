package task

import "encoding/json"

// Status represents the checkbox state of a task parsed from tasks.md.
type Status string

const (
	// StatusPending indicates the task has not been checked off.
	StatusPending Status = "pending"

	// StatusCompleted indicates the task's checkbox is marked.
	StatusCompleted Status = "completed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Task is a single unit of work in a spec's backlog.
//
// Tasks come from two places: parsed out of tasks.md (which fills ID,
// Description, FullText, Status, Phase and Group) or decoded from
// progress.json (which may additionally carry Priority, DependsOn, Retry
// and FilePatterns). Older progress files store bare strings in the tasks
// list; those decode into a Task whose ID and Description are both the
// string.
type Task struct {
	// ID uniquely identifies the task within its backlog (e.g. "1.1").
	ID string `json:"id" yaml:"id"`

	// Description is the human-readable task text.
	Description string `json:"description" yaml:"description"`

	// Phase is the workflow phase the task belongs to (e.g. "implement").
	Phase string `json:"phase,omitempty" yaml:"phase,omitempty"`

	// Group is the task group header the task was parsed under, if any.
	Group string `json:"group,omitempty" yaml:"group,omitempty"`

	// FullText is the raw task line text including any leading ID.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// Priority orders selection among available tasks. Higher wins.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`

	// DependsOn lists task IDs that must complete before this task.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Retry allows the task to be selected again after a failure.
	Retry bool `json:"retry,omitempty" yaml:"retry,omitempty"`

	// FilePatterns hints which files the task touches, used for routing.
	FilePatterns []string `json:"file_patterns,omitempty" yaml:"file_patterns,omitempty"`

	// Status is the checkbox state from tasks.md.
	Status Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// Key returns the identifier used for completion and failure bookkeeping.
// It falls back to the description when the ID is empty so that loosely
// structured backlogs still track correctly.
func (t *Task) Key() string {
	if t.ID != "" {
		return t.ID
	}
	if t.Description != "" {
		return t.Description
	}
	return "unknown"
}

// IsCompleted returns true if the parsed checkbox state is completed.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// UnmarshalJSON accepts either a full task object or a bare string.
// A bare string becomes a task whose ID and Description are the string.
func (t *Task) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Task{ID: s, Description: s}
		return nil
	}

	type plain Task
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Task(p)
	return nil
}

// UnmetDependencies returns the IDs in the task's depends_on list that are
// not present in the completed set, preserving declaration order.
func (t *Task) UnmetDependencies(completed map[string]bool) []string {
	var unmet []string
	for _, dep := range t.DependsOn {
		if !completed[dep] {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}

// ByID returns a pointer to the task with the given ID, or nil.
func ByID(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

// CompletedSet builds a membership set from a list of completed task IDs.
func CompletedSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
