package task

import "testing"

func TestParseMarkdown_Basic(t *testing.T) {
	content := `# Tasks

## Database Layer

- [ ] 1.1 Create users table
- [x] 1.2 Add migrations

## API Layer

- [ ] 2.1 Add users endpoint
`

	tasks := ParseMarkdown(content)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	first := tasks[0]
	if first.ID != "1.1" {
		t.Errorf("ID = %q, want %q", first.ID, "1.1")
	}
	if first.Description != "Create users table" {
		t.Errorf("Description = %q, want %q", first.Description, "Create users table")
	}
	if first.Phase != "Database Layer" {
		t.Errorf("Phase = %q, want %q", first.Phase, "Database Layer")
	}
	if first.Status != StatusPending {
		t.Errorf("Status = %q, want pending", first.Status)
	}

	if tasks[1].Status != StatusCompleted {
		t.Errorf("tasks[1].Status = %q, want completed", tasks[1].Status)
	}
	if tasks[2].Phase != "API Layer" {
		t.Errorf("tasks[2].Phase = %q, want %q", tasks[2].Phase, "API Layer")
	}
}

func TestParseMarkdown_TaskGroups(t *testing.T) {
	content := `### Task Group 1: Database Layer

- [ ] 1.1 Create schema

### Task Group 2: Frontend

- [ ] 2.1 Build form
`

	tasks := ParseMarkdown(content)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	if tasks[0].Phase != "Database Layer" {
		t.Errorf("tasks[0].Phase = %q, want %q", tasks[0].Phase, "Database Layer")
	}
	if tasks[0].Group != "Task Group 1: Database Layer" {
		t.Errorf("tasks[0].Group = %q, want the full header", tasks[0].Group)
	}
	if tasks[1].Phase != "Frontend" {
		t.Errorf("tasks[1].Phase = %q, want %q", tasks[1].Phase, "Frontend")
	}
}

func TestParseMarkdown_UnnumberedTask(t *testing.T) {
	tasks := ParseMarkdown("- [ ] Write the deployment guide for operators")
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}

	// ID derives from the first 20 characters of the text.
	if tasks[0].ID != "write_the_deployment" {
		t.Errorf("ID = %q, want %q", tasks[0].ID, "write_the_deployment")
	}
	if tasks[0].Description != "Write the deployment guide for operators" {
		t.Errorf("Description = %q", tasks[0].Description)
	}
}

func TestParseMarkdown_AsteriskBullets(t *testing.T) {
	tasks := ParseMarkdown("* [X] 1.0 Setup project")
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", tasks[0].Status)
	}
}

func TestParseMarkdown_IgnoresNonTasks(t *testing.T) {
	content := `## Notes

Some prose about the feature.

- A plain bullet without a checkbox
1. A numbered list item
`

	if tasks := ParseMarkdown(content); len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
}

func TestParseMarkdown_DefaultPhase(t *testing.T) {
	tasks := ParseMarkdown("- [ ] 1.1 Task before any header")
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Phase != "default" {
		t.Errorf("Phase = %q, want %q", tasks[0].Phase, "default")
	}
}

func TestParseMarkdown_MetadataSublists(t *testing.T) {
	content := `## implement

- [ ] 1.1 Create users table
- [ ] 2.1 Add the sessions endpoint
  - depends: 1.1, 1.2
  - priority: 3
  - files: api/sessions.go, api/routes.go
- [ ] 2.2 Next task
`

	tasks := ParseMarkdown(content)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	got := tasks[1]
	if len(got.DependsOn) != 2 || got.DependsOn[0] != "1.1" || got.DependsOn[1] != "1.2" {
		t.Errorf("DependsOn = %v, want [1.1 1.2]", got.DependsOn)
	}
	if got.Priority != 3 {
		t.Errorf("Priority = %d, want 3", got.Priority)
	}
	if len(got.FilePatterns) != 2 || got.FilePatterns[0] != "api/sessions.go" {
		t.Errorf("FilePatterns = %v", got.FilePatterns)
	}

	// Metadata must not leak onto neighboring tasks.
	if len(tasks[0].DependsOn) != 0 || tasks[0].Priority != 0 {
		t.Errorf("tasks[0] picked up metadata: %+v", tasks[0])
	}
	if len(tasks[2].DependsOn) != 0 {
		t.Errorf("tasks[2] picked up metadata: %+v", tasks[2])
	}
}

func TestParseMarkdown_MetadataRequiresIndent(t *testing.T) {
	content := `- [ ] 1.1 First
- depends: 9.9
`

	tasks := ParseMarkdown(content)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if len(tasks[0].DependsOn) != 0 {
		t.Errorf("top-level bullet must not attach metadata, got %v", tasks[0].DependsOn)
	}
}
