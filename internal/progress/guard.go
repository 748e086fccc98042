package progress

import (
	"fmt"
	"strings"
)

// Workflow phases in their required order of completion. Task phases
// parsed from markdown headers that are not in this list (for example
// "Phase 1: Setup") are never gated.
const (
	PhaseSpec      = "spec"
	PhaseDesign    = "design"
	PhaseImplement = "implement"
	PhaseTest      = "test"
	PhaseReview    = "review"
	PhaseComplete  = "complete"
)

// PhaseOrder is the default phase progression enforced by GuardPhase.
var PhaseOrder = []string{
	PhaseSpec,
	PhaseDesign,
	PhaseImplement,
	PhaseTest,
	PhaseReview,
	PhaseComplete,
}

// GuardResult reports whether entering a phase is allowed, and carries
// any advisory warnings produced along the way.
type GuardResult struct {
	// Valid is false when required earlier phases are incomplete.
	Valid bool

	// Phase is the phase whose entry was checked.
	Phase string

	// MissingPhases lists required phases not yet completed, in order.
	MissingPhases []string

	// Warnings holds human-readable advisories. Present on blocked
	// transitions and on soft gates such as entering "complete" with
	// unfinished tasks.
	Warnings []string
}

// GuardPhase checks whether the given phase may be entered under the
// given phase order (nil means PhaseOrder). Entering a gated phase
// requires every earlier phase in the order to be completed. Entering
// "complete" with unfinished tasks is allowed but produces a warning.
// On a valid transition the current phase is updated.
func (p *Progress) GuardPhase(order []string, phase string) GuardResult {
	if order == nil {
		order = PhaseOrder
	}

	res := GuardResult{Valid: true, Phase: phase}
	if phase == "" {
		return res
	}

	if idx := phaseIndex(order, phase); idx >= 0 {
		done := make(map[string]bool, len(p.CompletedPhases))
		for _, ph := range p.CompletedPhases {
			done[ph] = true
		}

		var missing []string
		for _, ph := range order[:idx] {
			if !done[ph] {
				missing = append(missing, ph)
			}
		}
		if len(missing) > 0 {
			res.Valid = false
			res.MissingPhases = missing
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Cannot enter '%s' phase without completing: %s",
				phase, strings.Join(missing, ", ")))
			return res
		}
	}

	// Completion is a soft gate: unfinished tasks warn but do not block.
	if phase == PhaseComplete {
		total := p.TotalTasks()
		if len(p.Completed) < total {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Entering 'complete' phase with %d/%d tasks completed",
				len(p.Completed), total))
		}
	}

	p.CurrentPhase = phase
	return res
}

func phaseIndex(order []string, phase string) int {
	for i, ph := range order {
		if ph == phase {
			return i
		}
	}
	return -1
}
