package task

import (
	"fmt"
	"strings"
)

// ValidationSeverity represents the severity level of a validation message.
type ValidationSeverity string

const (
	// SeverityError indicates a blocking issue that must be fixed.
	// Backlogs with errors cannot be worked.
	SeverityError ValidationSeverity = "error"

	// SeverityWarning indicates a potential issue that should be reviewed.
	// Backlogs with warnings can proceed but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// String returns the string representation of the severity.
func (s ValidationSeverity) String() string {
	return string(s)
}

// ValidationMessage is a single issue found while validating a backlog.
type ValidationMessage struct {
	// Severity indicates how critical this issue is.
	Severity ValidationSeverity `json:"severity"`

	// Message is a human-readable description of the issue.
	Message string `json:"message"`

	// TaskID identifies the task this message relates to. Empty for
	// backlog-level issues.
	TaskID string `json:"task_id,omitempty"`

	// Field identifies the specific field causing the issue.
	Field string `json:"field,omitempty"`

	// Suggestion provides guidance on how to fix the issue.
	Suggestion string `json:"suggestion,omitempty"`

	// RelatedIDs lists other task IDs involved in this issue.
	RelatedIDs []string `json:"related_ids,omitempty"`
}

// IsError returns true if this message is an error.
func (m *ValidationMessage) IsError() bool {
	return m.Severity == SeverityError
}

// IsWarning returns true if this message is a warning.
func (m *ValidationMessage) IsWarning() bool {
	return m.Severity == SeverityWarning
}

// ValidationResult contains the complete validation results for a backlog.
type ValidationResult struct {
	// IsValid is true if there are no errors (warnings allowed).
	IsValid bool `json:"is_valid"`

	// Messages contains all validation messages found.
	Messages []ValidationMessage `json:"messages"`

	// ErrorCount is the number of error-level messages.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of warning-level messages.
	WarningCount int `json:"warning_count"`
}

// HasErrors returns true if there are any error-level messages.
func (v *ValidationResult) HasErrors() bool {
	return v.ErrorCount > 0
}

// add records a message and updates the counters.
func (v *ValidationResult) add(m ValidationMessage) {
	if m.IsError() {
		v.IsValid = false
		v.ErrorCount++
	} else if m.IsWarning() {
		v.WarningCount++
	}
	v.Messages = append(v.Messages, m)
}

// ValidateBacklog checks a task backlog for structural problems:
// duplicate IDs, missing descriptions, self-dependencies, references to
// unknown tasks, and dependency cycles.
func ValidateBacklog(tasks []Task) *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Messages: make([]ValidationMessage, 0),
	}

	if len(tasks) == 0 {
		result.add(ValidationMessage{
			Severity:   SeverityError,
			Message:    "Backlog has no tasks",
			Suggestion: "Add at least one task to tasks.md",
		})
		return result
	}

	known := make(map[string]bool, len(tasks))
	for i := range tasks {
		id := tasks[i].Key()
		if known[id] {
			result.add(ValidationMessage{
				Severity:   SeverityError,
				Message:    fmt.Sprintf("Duplicate task ID '%s'", id),
				TaskID:     id,
				Field:      "id",
				Suggestion: "Give each task a unique ID",
			})
		}
		known[id] = true
	}

	for i := range tasks {
		t := &tasks[i]

		if strings.TrimSpace(t.Description) == "" {
			result.add(ValidationMessage{
				Severity:   SeverityWarning,
				Message:    "Task has no description",
				TaskID:     t.Key(),
				Field:      "description",
				Suggestion: "Add a description for the task",
			})
		}

		for _, dep := range t.DependsOn {
			if dep == t.Key() {
				result.add(ValidationMessage{
					Severity:   SeverityError,
					Message:    "Task depends on itself",
					TaskID:     t.Key(),
					Field:      "depends_on",
					RelatedIDs: []string{t.Key()},
					Suggestion: "Remove the self-dependency",
				})
				continue
			}
			if !known[dep] {
				result.add(ValidationMessage{
					Severity:   SeverityError,
					Message:    fmt.Sprintf("Depends on unknown task '%s'", dep),
					TaskID:     t.Key(),
					Field:      "depends_on",
					RelatedIDs: []string{dep},
					Suggestion: fmt.Sprintf("Remove '%s' from dependencies or create a task with that ID", dep),
				})
			}
		}
	}

	if cycle := DetectDependencyCycle(tasks); cycle != nil {
		result.add(ValidationMessage{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("Dependency cycle detected: %s", strings.Join(cycle, " -> ")),
			Field:      "depends_on",
			RelatedIDs: cycle,
			Suggestion: "Remove one of the dependencies to break the cycle",
		})
	}

	return result
}

// DetectDependencyCycle detects a dependency cycle in the backlog.
// Returns the task IDs forming the cycle if found, nil otherwise.
func DetectDependencyCycle(tasks []Task) []string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	parent := make(map[string]string)

	var dfs func(id string) []string
	dfs = func(id string) []string {
		visited[id] = true
		recStack[id] = true

		t := ByID(tasks, id)
		if t == nil {
			recStack[id] = false
			return nil
		}

		for _, dep := range t.DependsOn {
			if !visited[dep] {
				parent[dep] = id
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			} else if recStack[dep] {
				// Found a cycle, walk parents to reconstruct it.
				cycle := []string{dep}
				current := id
				for current != dep {
					cycle = append([]string{current}, cycle...)
					current = parent[current]
				}
				cycle = append([]string{dep}, cycle...)
				return cycle
			}
		}

		recStack[id] = false
		return nil
	}

	for i := range tasks {
		if !visited[tasks[i].ID] {
			if cycle := dfs(tasks[i].ID); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}
