// Package session manages the lifecycle of one implementation run: id
// generation, resume detection, spec folder loading, backlog merging,
// and the final writeback when a run ends.
package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/specflow-dev/specflow/internal/progress"
)

// Session identifies one implementation run over a spec.
type Session struct {
	ID          string    `json:"id"`
	SpecName    string    `json:"spec_name"`
	ProjectRoot string    `json:"project_root"`
	Mode        string    `json:"mode"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at,omitzero"`

	// Resumed is true when this run restored state from a prior save.
	Resumed bool `json:"resumed"`
}

// State is the durable document saved per session. It carries everything
// needed to resume an interrupted run.
type State struct {
	Session   Session            `json:"session"`
	Progress  *progress.Progress `json:"progress"`
	Learnings []string           `json:"learnings,omitempty"`
}

// NewID generates a session id from the current time. Two sessions
// started within one second share an id, which is acceptable: the store's
// run lock prevents them from working concurrently.
func NewID() string {
	return "impl_" + strconv.FormatInt(time.Now().Unix(), 10)
}

// ResumeHint renders the command line that resumes this session.
func (s Session) ResumeHint() string {
	return fmt.Sprintf("specflow implement --spec %s --session %s", s.SpecName, s.ID)
}
