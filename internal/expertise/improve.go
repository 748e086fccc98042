package expertise

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MaxLearnings caps how many learnings a domain file retains. When the
// cap is exceeded the oldest entries fall off.
const MaxLearnings = 50

// AppendLearnings records the given learning lines into each named
// domain's file. Lines already present in a domain are skipped, so
// re-running a session never duplicates knowledge. Domains without an
// existing file get a minimal one. Returns true when at least one file
// changed.
func AppendLearnings(dir string, domains []string, learnings []string) (bool, error) {
	if len(domains) == 0 || len(learnings) == 0 {
		return false, nil
	}

	changed := false
	now := time.Now().UTC()

	for _, name := range domains {
		path := filepath.Join(dir, name+".yaml")

		d, err := loadDomainFile(path)
		if os.IsNotExist(err) {
			d = &Domain{Name: name}
		} else if err != nil {
			return changed, fmt.Errorf("load domain %s: %w", name, err)
		}
		if d.Name == "" {
			d.Name = name
		}

		existing := make(map[string]bool, len(d.Learnings))
		for _, l := range d.Learnings {
			existing[l.Content] = true
		}

		domainChanged := false
		for _, content := range learnings {
			if content == "" || existing[content] {
				continue
			}
			d.Learnings = append(d.Learnings, Learning{Content: content, AddedAt: now})
			existing[content] = true
			domainChanged = true
		}
		if !domainChanged {
			continue
		}

		if len(d.Learnings) > MaxLearnings {
			d.Learnings = d.Learnings[len(d.Learnings)-MaxLearnings:]
		}
		d.UpdatedAt = now

		if err := SaveDomain(dir, d); err != nil {
			return changed, err
		}
		changed = true
	}

	return changed, nil
}
