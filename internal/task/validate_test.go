package task

import (
	"strings"
	"testing"
)

func TestValidateBacklog_Valid(t *testing.T) {
	result := ValidateBacklog(makeBacklog())

	if !result.IsValid {
		t.Errorf("IsValid = false, messages: %+v", result.Messages)
	}
	if result.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", result.ErrorCount)
	}
}

func TestValidateBacklog_Empty(t *testing.T) {
	result := ValidateBacklog(nil)

	if result.IsValid {
		t.Error("empty backlog should be invalid")
	}
	if len(result.Messages) != 1 || result.Messages[0].Message != "Backlog has no tasks" {
		t.Errorf("messages = %+v", result.Messages)
	}
}

func TestValidateBacklog_DuplicateID(t *testing.T) {
	tasks := []Task{
		{ID: "1", Description: "first"},
		{ID: "1", Description: "second"},
	}

	result := ValidateBacklog(tasks)
	if result.IsValid {
		t.Fatal("duplicate IDs should be invalid")
	}
	if result.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", result.ErrorCount)
	}
	if got := result.Messages[0].Message; got != "Duplicate task ID '1'" {
		t.Errorf("message = %q", got)
	}
}

func TestValidateBacklog_SelfDependency(t *testing.T) {
	tasks := []Task{{ID: "1", Description: "loops", DependsOn: []string{"1"}}}

	result := ValidateBacklog(tasks)
	if result.IsValid {
		t.Fatal("self-dependency should be invalid")
	}

	found := false
	for _, m := range result.Messages {
		if m.Message == "Task depends on itself" && m.TaskID == "1" {
			found = true
		}
	}
	if !found {
		t.Errorf("no self-dependency error in %+v", result.Messages)
	}
}

func TestValidateBacklog_UnknownDependency(t *testing.T) {
	tasks := []Task{{ID: "1", Description: "orphan dep", DependsOn: []string{"9"}}}

	result := ValidateBacklog(tasks)
	if result.IsValid {
		t.Fatal("unknown dependency should be invalid")
	}
	if got := result.Messages[0].Message; got != "Depends on unknown task '9'" {
		t.Errorf("message = %q", got)
	}
	if got := result.Messages[0].RelatedIDs; len(got) != 1 || got[0] != "9" {
		t.Errorf("RelatedIDs = %v, want [9]", got)
	}
}

func TestValidateBacklog_EmptyDescriptionWarns(t *testing.T) {
	tasks := []Task{{ID: "1"}}

	result := ValidateBacklog(tasks)
	if !result.IsValid {
		t.Error("a warning alone should not invalidate the backlog")
	}
	if result.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1", result.WarningCount)
	}
}

func TestValidateBacklog_CycleDetected(t *testing.T) {
	tasks := []Task{
		{ID: "a", Description: "a", DependsOn: []string{"b"}},
		{ID: "b", Description: "b", DependsOn: []string{"c"}},
		{ID: "c", Description: "c", DependsOn: []string{"a"}},
	}

	result := ValidateBacklog(tasks)
	if result.IsValid {
		t.Fatal("cycle should be invalid")
	}

	found := ""
	for _, m := range result.Messages {
		if strings.HasPrefix(m.Message, "Dependency cycle detected: ") {
			found = m.Message
		}
	}
	if found == "" {
		t.Fatalf("no cycle error in %+v", result.Messages)
	}
	// The reported path walks the cycle and repeats the entry node.
	if !strings.Contains(found, "->") {
		t.Errorf("cycle message missing path: %q", found)
	}
}

func TestDetectDependencyCycle_None(t *testing.T) {
	if cycle := DetectDependencyCycle(makeBacklog()); cycle != nil {
		t.Errorf("cycle = %v, want nil", cycle)
	}
}

func TestDetectDependencyCycle_ReportsPath(t *testing.T) {
	tasks := []Task{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}

	cycle := DetectDependencyCycle(tasks)
	if cycle == nil {
		t.Fatal("expected a cycle")
	}
	if first, last := cycle[0], cycle[len(cycle)-1]; first != last {
		t.Errorf("cycle should start and end on the same node: %v", cycle)
	}
}
