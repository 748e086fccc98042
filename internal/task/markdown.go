package task

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Matches checkbox items like "- [ ] 1.1 Description" or "* [x] Done".
	taskLinePattern = regexp.MustCompile(`^[-*]\s*\[([ xX])\]\s*(.+)$`)

	// Matches a leading numeric task ID like "1.1" or "2".
	taskIDPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+(.+)$`)

	// Matches indented metadata entries under a task, like "- depends: 1.1".
	metaLinePattern = regexp.MustCompile(`^[-*]\s*(depends|priority|files):\s*(.*)$`)
)

// ParseMarkdown extracts tasks from tasks.md content.
//
// Tasks are checkbox list items. A leading number becomes the task ID;
// unnumbered tasks get an ID derived from their text. Section headers
// provide phase context: "## Database Layer" sets the phase directly,
// and "### Task Group 1: Database Layer" sets both the group and the
// phase (the part after the colon).
//
// Indented sublist entries attach metadata to the task above them:
//
//   - [ ] 2.1 Add the sessions endpoint
//   - depends: 1.1, 1.2
//   - priority: 3
//   - files: api/sessions.go
func ParseMarkdown(content string) []Task {
	var tasks []Task

	phase := "default"
	group := ""
	var current *Task

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "### ") {
			header := strings.TrimSpace(line[4:])
			if strings.Contains(header, "Task Group") {
				group = header
				if idx := strings.Index(header, ":"); idx >= 0 {
					phase = strings.TrimSpace(header[idx+1:])
				}
			}
			current = nil
		} else if strings.HasPrefix(line, "## ") {
			phase = strings.TrimSpace(line[3:])
			current = nil
		}

		trimmed := strings.TrimSpace(line)

		if current != nil && line != trimmed {
			if m := metaLinePattern.FindStringSubmatch(trimmed); m != nil {
				attachMetadata(current, m[1], m[2])
				continue
			}
		}

		m := taskLinePattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		text := strings.TrimSpace(m[2])
		id, description := splitTaskID(text)

		status := StatusPending
		if strings.EqualFold(m[1], "x") {
			status = StatusCompleted
		}

		tasks = append(tasks, Task{
			ID:          id,
			Description: description,
			FullText:    text,
			Status:      status,
			Phase:       phase,
			Group:       group,
		})
		current = &tasks[len(tasks)-1]
	}

	return tasks
}

// attachMetadata applies one metadata entry to a task. Unparseable
// values are ignored rather than failing the whole document.
func attachMetadata(t *Task, key, value string) {
	switch key {
	case "depends":
		t.DependsOn = append(t.DependsOn, splitList(value)...)
	case "priority":
		if p, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			t.Priority = p
		}
	case "files":
		t.FilePatterns = append(t.FilePatterns, splitList(value)...)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitTaskID separates a leading numeric ID from the task text. When no
// ID is present it derives one from the text itself.
func splitTaskID(text string) (id, description string) {
	if m := taskIDPattern.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	return derivedID(text), text
}

// derivedID builds a stable identifier from task text: the first 20
// characters, lowercased, with spaces replaced by underscores.
func derivedID(text string) string {
	runes := []rune(text)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return strings.ToLower(strings.ReplaceAll(string(runes), " ", "_"))
}
