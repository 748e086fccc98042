package delegate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specflow-dev/specflow/internal/util"
)

// PendingStatus marks a queued delegation that no agent has picked up.
const PendingStatus = "pending"

// PendingDelegation is one entry in the pending delegations file, a JSON
// array that file-mode delegations append to and external agents drain.
type PendingDelegation struct {
	Instruction string    `json:"instruction"`
	Agent       string    `json:"agent"`
	TaskID      string    `json:"task_id"`
	SpecName    string    `json:"spec_name"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
}

// AppendPending adds an entry to the pending delegations file, creating
// it on first use. The whole array is rewritten atomically so a reader
// never sees a torn append.
func AppendPending(path string, entry PendingDelegation) error {
	if path == "" {
		return fmt.Errorf("pending delegations path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating delegations directory: %w", err)
	}

	var entries []PendingDelegation
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	entries = append(entries, entry)

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding pending delegations: %w", err)
	}
	return util.AtomicWriteFile(path, append(out, '\n'), 0o644)
}

// ReadPending returns the queued delegations, or an empty slice when the
// file does not exist yet.
func ReadPending(path string) ([]PendingDelegation, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	var entries []PendingDelegation
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}
