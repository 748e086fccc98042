// Package progress tracks durable task-completion state for a spec and
// enforces phase ordering. The canonical on-disk form is the progress.json
// file inside a spec folder; sessions load it at start and write it back
// at end so that work survives crashes and restarts.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specflow-dev/specflow/internal/task"
	"github.com/specflow-dev/specflow/internal/util"
)

// Failure records one failed delegation attempt for a task.
type Failure struct {
	TaskID string    `json:"task_id"`
	Error  string    `json:"error"`
	At     time.Time `json:"at"`
}

// LogEntry records one completion event. Unlike Completed, the log gains
// an entry on every MarkComplete call, so re-marks remain visible.
type LogEntry struct {
	TaskID      string    `json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       string    `json:"notes,omitempty"`
}

// Progress is the durable record of work on one spec.
//
// Tasks holds the backlog as parsed from tasks.md at session start.
// Completed and Failed are append-only with idempotent inserts, so
// loading an old file and saving it back never loses history.
type Progress struct {
	Tasks           []task.Task `json:"tasks"`
	Completed       []string    `json:"completed"`
	Failed          []Failure   `json:"failed,omitempty"`
	CurrentTask     string      `json:"current_task,omitempty"`
	CurrentPhase    string      `json:"current_phase,omitempty"`
	CompletedPhases []string    `json:"completed_phases,omitempty"`
	CompletionLog   []LogEntry  `json:"completion_log,omitempty"`
}

// New returns an empty Progress with initialized collections.
func New() *Progress {
	return &Progress{
		Tasks:     []task.Task{},
		Completed: []string{},
	}
}

// Load reads a progress file. A missing file is not an error: it returns
// an empty Progress, since a spec that has never been worked on has no
// progress yet. A file that exists but cannot be parsed returns an error
// so callers can warn before starting fresh.
func Load(path string) (*Progress, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse progress file %s: %w", path, err)
	}
	p.normalize()
	return &p, nil
}

// Save writes the progress file atomically, creating parent directories
// as needed.
func (p *Progress) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create progress directory: %w", err)
	}

	p.normalize()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	return nil
}

// normalize replaces nil collections with empty ones so the JSON form
// stays stable regardless of how the struct was built.
func (p *Progress) normalize() {
	if p.Tasks == nil {
		p.Tasks = []task.Task{}
	}
	if p.Completed == nil {
		p.Completed = []string{}
	}
}

// MarkComplete records the task key as completed. The Completed list
// gains at most one occurrence of the key no matter how often it is
// marked, while the completion log gains one entry per call. The current
// task is cleared when it matches the key.
func (p *Progress) MarkComplete(key, notes string) {
	if !p.IsCompleted(key) {
		p.Completed = append(p.Completed, key)
	}
	p.CompletionLog = append(p.CompletionLog, LogEntry{
		TaskID:      key,
		CompletedAt: time.Now().UTC(),
		Notes:       notes,
	})
	if p.CurrentTask == key {
		p.CurrentTask = ""
	}
}

// RecordFailure records a failed attempt for the task key. Each key holds
// at most one failure entry: a repeat failure updates the existing entry
// rather than growing the list.
func (p *Progress) RecordFailure(key, message string) {
	for i := range p.Failed {
		if p.Failed[i].TaskID == key {
			p.Failed[i].Error = message
			p.Failed[i].At = time.Now().UTC()
			return
		}
	}
	p.Failed = append(p.Failed, Failure{
		TaskID: key,
		Error:  message,
		At:     time.Now().UTC(),
	})
}

// Merge folds another progress record into this one. Collections are
// unioned (tasks by key, completed, failures and log entries by task,
// completed phases); scalar fields keep the receiver's value when set.
// Merging is how a resumed session reconciles its saved state with a
// progress file that may have been updated externally in the meantime.
func (p *Progress) Merge(other *Progress) {
	if other == nil {
		return
	}

	have := make(map[string]bool, len(p.Tasks))
	for i := range p.Tasks {
		have[p.Tasks[i].Key()] = true
	}
	for i := range other.Tasks {
		if key := other.Tasks[i].Key(); !have[key] {
			p.Tasks = append(p.Tasks, other.Tasks[i])
			have[key] = true
		}
	}

	done := p.CompletedSet()
	for _, id := range other.Completed {
		if !done[id] {
			p.Completed = append(p.Completed, id)
			done[id] = true
		}
	}

	failed := p.FailedSet()
	for _, f := range other.Failed {
		if !failed[f.TaskID] {
			p.Failed = append(p.Failed, f)
			failed[f.TaskID] = true
		}
	}

	logged := make(map[string]bool, len(p.CompletionLog))
	for _, e := range p.CompletionLog {
		logged[e.TaskID] = true
	}
	for _, e := range other.CompletionLog {
		if !logged[e.TaskID] {
			p.CompletionLog = append(p.CompletionLog, e)
			logged[e.TaskID] = true
		}
	}

	for _, phase := range other.CompletedPhases {
		p.CompletePhase(phase)
	}

	if p.CurrentTask == "" {
		p.CurrentTask = other.CurrentTask
	}
	if p.CurrentPhase == "" {
		p.CurrentPhase = other.CurrentPhase
	}
}

// IsCompleted reports whether the task key is in the completed list.
func (p *Progress) IsCompleted(key string) bool {
	for _, id := range p.Completed {
		if id == key {
			return true
		}
	}
	return false
}

// CompletedSet builds a membership set over the completed task keys.
func (p *Progress) CompletedSet() map[string]bool {
	return task.CompletedSet(p.Completed)
}

// FailedSet builds a membership set over the failed task keys.
func (p *Progress) FailedSet() map[string]bool {
	set := make(map[string]bool, len(p.Failed))
	for _, f := range p.Failed {
		set[f.TaskID] = true
	}
	return set
}

// TotalTasks counts every task the spec tracks: the current backlog plus
// completed keys that no longer appear in it (tasks checked off directly
// in tasks.md never enter the backlog).
func (p *Progress) TotalTasks() int {
	keys := make(map[string]bool, len(p.Tasks))
	for i := range p.Tasks {
		keys[p.Tasks[i].Key()] = true
	}
	total := len(p.Tasks)
	for _, id := range p.Completed {
		if !keys[id] {
			total++
		}
	}
	return total
}

// PendingTasks returns backlog tasks that have not been completed.
func (p *Progress) PendingTasks() []task.Task {
	done := p.CompletedSet()
	var pending []task.Task
	for _, t := range p.Tasks {
		if !done[t.Key()] {
			pending = append(pending, t)
		}
	}
	return pending
}

// PendingCount counts backlog tasks that have not been completed.
func (p *Progress) PendingCount() int {
	done := p.CompletedSet()
	count := 0
	for i := range p.Tasks {
		if !done[p.Tasks[i].Key()] {
			count++
		}
	}
	return count
}

// PhaseDone reports whether every backlog task in the given phase has
// been completed. Phases with no tasks report false so that unused phase
// names never auto-complete.
func (p *Progress) PhaseDone(phase string) bool {
	if phase == "" {
		return false
	}
	done := p.CompletedSet()
	seen := false
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.Phase != phase {
			continue
		}
		seen = true
		if !done[t.Key()] {
			return false
		}
	}
	return seen
}

// CompletePhase records the phase as completed, once.
func (p *Progress) CompletePhase(phase string) {
	if phase == "" {
		return
	}
	for _, ph := range p.CompletedPhases {
		if ph == phase {
			return
		}
	}
	p.CompletedPhases = append(p.CompletedPhases, phase)
}
