package progress

import (
	"strings"
	"testing"

	"github.com/specflow-dev/specflow/internal/task"
)

func TestGuardPhaseBlocksOnMissingPhases(t *testing.T) {
	p := New()
	p.CompletedPhases = []string{"spec"}

	res := p.GuardPhase(nil, "test")

	if res.Valid {
		t.Fatal("entering 'test' without design and implement should be blocked")
	}
	want := []string{"design", "implement"}
	if len(res.MissingPhases) != len(want) {
		t.Fatalf("missing phases = %v, want %v", res.MissingPhases, want)
	}
	for i, ph := range want {
		if res.MissingPhases[i] != ph {
			t.Errorf("missing phase[%d] = %q, want %q", i, res.MissingPhases[i], ph)
		}
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "Cannot enter 'test' phase") {
		t.Errorf("warnings = %v, want a cannot-enter message", res.Warnings)
	}
	if p.CurrentPhase != "" {
		t.Errorf("blocked transition should not update current phase, got %q", p.CurrentPhase)
	}
}

func TestGuardPhaseValidTransition(t *testing.T) {
	p := New()
	p.CompletedPhases = []string{"spec"}

	res := p.GuardPhase(nil, "design")

	if !res.Valid {
		t.Fatalf("entering 'design' after spec should be valid, got %+v", res)
	}
	if p.CurrentPhase != "design" {
		t.Errorf("current phase = %q, want %q", p.CurrentPhase, "design")
	}
}

func TestGuardPhaseFirstPhaseAlwaysValid(t *testing.T) {
	p := New()

	res := p.GuardPhase(nil, "spec")

	if !res.Valid {
		t.Errorf("entering the first phase should always be valid, got %+v", res)
	}
}

func TestGuardPhaseUngatedPhase(t *testing.T) {
	p := New()

	// Phases parsed from arbitrary markdown headers are not in the order
	// and must pass through.
	res := p.GuardPhase(nil, "Phase 1: Core Infrastructure")

	if !res.Valid {
		t.Errorf("unordered phase should be valid, got %+v", res)
	}
	if p.CurrentPhase != "Phase 1: Core Infrastructure" {
		t.Errorf("current phase = %q, want the entered phase", p.CurrentPhase)
	}
}

func TestGuardPhaseEmptyPhase(t *testing.T) {
	p := New()
	p.CurrentPhase = "implement"

	res := p.GuardPhase(nil, "")

	if !res.Valid {
		t.Error("empty phase should be valid")
	}
	if p.CurrentPhase != "implement" {
		t.Errorf("empty phase should not change current phase, got %q", p.CurrentPhase)
	}
}

func TestGuardPhaseCompleteSoftGate(t *testing.T) {
	p := New()
	p.Tasks = []task.Task{
		{ID: "1.1", Description: "first"},
		{ID: "1.2", Description: "second"},
	}
	p.CompletedPhases = []string{"spec", "design", "implement", "test", "review"}
	p.MarkComplete("1.1", "")

	res := p.GuardPhase(nil, "complete")

	if !res.Valid {
		t.Fatal("entering 'complete' with unfinished tasks should warn, not block")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "1/2 tasks completed") {
		t.Errorf("warnings = %v, want a 1/2 tasks completed warning", res.Warnings)
	}
	if p.CurrentPhase != "complete" {
		t.Errorf("current phase = %q, want %q", p.CurrentPhase, "complete")
	}
}

func TestGuardPhaseCompleteNoWarningWhenDone(t *testing.T) {
	p := New()
	p.Tasks = []task.Task{{ID: "1.1", Description: "only"}}
	p.CompletedPhases = []string{"spec", "design", "implement", "test", "review"}
	p.MarkComplete("1.1", "")

	res := p.GuardPhase(nil, "complete")

	if !res.Valid {
		t.Fatal("entering 'complete' with all tasks done should be valid")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}
}

func TestGuardPhaseCustomOrder(t *testing.T) {
	p := New()

	res := p.GuardPhase([]string{"draft", "final"}, "final")

	if res.Valid {
		t.Fatal("entering 'final' without draft should be blocked")
	}
	if len(res.MissingPhases) != 1 || res.MissingPhases[0] != "draft" {
		t.Errorf("missing phases = %v, want [draft]", res.MissingPhases)
	}
}
