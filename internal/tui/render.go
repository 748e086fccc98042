// Package tui renders specflow's terminal surfaces: the status report,
// the end-of-run delegation summary, and the live progress watcher.
//
// Render functions are pure and consume point-in-time snapshot types, so
// commands decide what to show and this package only decides how it
// looks.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/specflow-dev/specflow/internal/delegate"
	"github.com/specflow-dev/specflow/internal/progress"
)

// barWidth is the character width of rendered progress bars.
const barWidth = 20

// SpecStatus is a snapshot of one spec's progress.
type SpecStatus struct {
	Name            string
	TotalTasks      int
	Completed       int
	Failed          int
	CurrentTask     string
	CurrentPhase    string
	CompletedPhases []string
	UpdatedAt       time.Time
}

// Pending returns the count of tasks not yet completed.
func (s SpecStatus) Pending() int {
	if n := s.TotalTasks - s.Completed; n > 0 {
		return n
	}
	return 0
}

// SessionStatus is a snapshot of one stored session.
type SessionStatus struct {
	ID          string
	SpecName    string
	Mode        string
	StartedAt   time.Time
	EndedAt     time.Time
	Resumed     bool
	Checkpoints []string
}

// StatusReport aggregates everything the status command shows.
type StatusReport struct {
	ProjectRoot        string
	Specs              []SpecStatus
	Sessions           []SessionStatus
	Domains            []string
	PendingDelegations int
}

// SpecStatusFromProgress flattens a progress document into the snapshot
// the renderers consume.
func SpecStatusFromProgress(name string, p *progress.Progress) SpecStatus {
	return SpecStatus{
		Name:            name,
		TotalTasks:      p.TotalTasks(),
		Completed:       len(p.Completed),
		Failed:          len(p.Failed),
		CurrentTask:     p.CurrentTask,
		CurrentPhase:    p.CurrentPhase,
		CompletedPhases: p.CompletedPhases,
	}
}

// RenderStatusReport renders the full workspace overview.
func RenderStatusReport(r StatusReport) string {
	var b strings.Builder

	b.WriteString(Title.Render("specflow"))
	if r.ProjectRoot != "" {
		b.WriteString(Muted.Render(" · " + r.ProjectRoot))
	}
	b.WriteString("\n")

	b.WriteString(SectionHeader.Render("Specs"))
	b.WriteString("\n")
	if len(r.Specs) == 0 {
		b.WriteString(Muted.Render("  No specs found. Create one with: specflow spec --name <name>"))
		b.WriteString("\n")
	}
	nameWidth := 0
	for _, s := range r.Specs {
		if len(s.Name) > nameWidth {
			nameWidth = len(s.Name)
		}
	}
	for _, s := range r.Specs {
		b.WriteString(fmt.Sprintf("  %-*s  %s  %s\n",
			nameWidth, s.Name, renderBar(s.Completed, s.TotalTasks, barWidth), specSummaryLine(s)))
	}

	b.WriteString(SectionHeader.Render("Sessions"))
	b.WriteString("\n")
	if len(r.Sessions) == 0 {
		b.WriteString(Muted.Render("  No sessions recorded."))
		b.WriteString("\n")
	}
	for _, sess := range r.Sessions {
		b.WriteString("  " + renderSessionLine(sess) + "\n")
		if len(sess.Checkpoints) > 0 {
			b.WriteString(Muted.Render("    checkpoints: " + strings.Join(sess.Checkpoints, ", ")))
			b.WriteString("\n")
		}
	}

	b.WriteString(SectionHeader.Render("Expertise"))
	b.WriteString("\n")
	if len(r.Domains) == 0 {
		b.WriteString(Muted.Render("  No expertise captured. Run: specflow bootstrap"))
		b.WriteString("\n")
	} else {
		b.WriteString("  " + strings.Join(r.Domains, ", ") + "\n")
	}

	if r.PendingDelegations > 0 {
		b.WriteString("\n")
		b.WriteString(Warning.Render(fmt.Sprintf("Pending delegations: %d", r.PendingDelegations)))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSpecStatus renders the detailed view of a single spec.
func RenderSpecStatus(s SpecStatus) string {
	var b strings.Builder

	b.WriteString(Title.Render(s.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %d/%d tasks complete\n",
		renderBar(s.Completed, s.TotalTasks, barWidth), s.Completed, s.TotalTasks))

	if s.Failed > 0 {
		b.WriteString(StatusFailed.Render(fmt.Sprintf("%d failed", s.Failed)))
		b.WriteString("\n")
	}
	if s.CurrentPhase != "" {
		b.WriteString(Label.Render("phase: "))
		b.WriteString(s.CurrentPhase)
		if len(s.CompletedPhases) > 0 {
			b.WriteString(Muted.Render(" (done: " + strings.Join(s.CompletedPhases, ", ") + ")"))
		}
		b.WriteString("\n")
	}
	if s.CurrentTask != "" {
		b.WriteString(Label.Render("current task: "))
		b.WriteString(s.CurrentTask)
		b.WriteString("\n")
	}
	if !s.UpdatedAt.IsZero() {
		b.WriteString(Muted.Render("updated " + s.UpdatedAt.Format("15:04:05")))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderBatchSummary renders the end-of-run digest shown after a batch
// run: one line per delegation with its final status.
func RenderBatchSummary(records []delegate.Record) string {
	if len(records) == 0 {
		return ""
	}

	failed := 0
	for _, r := range records {
		if r.Failed() {
			failed++
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(Title.Render("Delegation Summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d instructions prepared", len(records)))
	if failed > 0 {
		b.WriteString(Error.Render(fmt.Sprintf(", %d failed", failed)))
	}
	b.WriteString("\n\n")

	idWidth, agentWidth := len("TASK"), len("AGENT")
	for _, r := range records {
		if len(r.TaskID) > idWidth {
			idWidth = len(r.TaskID)
		}
		if len(r.Agent) > agentWidth {
			agentWidth = len(r.Agent)
		}
	}

	b.WriteString(Muted.Render(fmt.Sprintf("  %-*s  %-*s  %-5s  %s",
		idWidth, "TASK", agentWidth, "AGENT", "MODE", "STATUS")))
	b.WriteString("\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("  %-*s  %-*s  %-5s  %s\n",
			idWidth, r.TaskID, agentWidth, r.Agent, r.Mode, recordStatus(r)))
	}

	return b.String()
}

func recordStatus(r delegate.Record) string {
	switch {
	case r.Failed():
		return StatusFailed.Render("failed: " + r.Error)
	case r.Executed:
		return StatusCompleted.Render("executed")
	default:
		return StatusPending.Render("prepared")
	}
}

func specSummaryLine(s SpecStatus) string {
	parts := []string{fmt.Sprintf("%d/%d complete", s.Completed, s.TotalTasks)}
	if s.Failed > 0 {
		parts = append(parts, StatusFailed.Render(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.CurrentPhase != "" {
		parts = append(parts, "phase: "+s.CurrentPhase)
	}
	return strings.Join(parts, " · ")
}

func renderSessionLine(s SessionStatus) string {
	line := fmt.Sprintf("%s  %s  %s  started %s",
		s.ID, s.SpecName, s.Mode, s.StartedAt.Format("2006-01-02 15:04"))
	if !s.EndedAt.IsZero() {
		line += "  ended " + s.EndedAt.Format("15:04")
	}
	if s.Resumed {
		line += Muted.Render("  (resumed)")
	}
	return line
}

// renderBar draws a fixed-width progress bar.
func renderBar(done, total, width int) string {
	if width <= 0 {
		width = barWidth
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return BarDone.Render(strings.Repeat("█", filled)) +
		BarTodo.Render(strings.Repeat("░", width-filled))
}
