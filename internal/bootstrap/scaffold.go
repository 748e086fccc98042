package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/progress"
	"github.com/specflow-dev/specflow/internal/session"
	"github.com/specflow-dev/specflow/internal/util"
)

const specTemplate = `# %s

## Requirements

%s

## Notes

Add design notes, constraints, and open questions here.
`

// tasksTemplate documents the backlog syntax without containing lines
// the parser would pick up as real tasks.
const tasksTemplate = `# Tasks: %s

List work as checkbox items under phase headings. An item looks like
"- [ ] 1.2 Add the sessions endpoint"; indented sublist entries
"- depends:", "- priority:", and "- files:" attach metadata to the item
above them.

## Phase 1: Setup
`

const defaultRequirements = "Describe what this spec should deliver."

// ScaffoldSpec creates a new spec folder with a spec document, a tasks
// template, and an empty progress file. The name is slugified into the
// folder name. Scaffolding an existing spec fails with ErrSpecExists.
func ScaffoldSpec(paths session.Paths, name, requirements string) (string, error) {
	slug := util.Slugify(name)
	if slug == "" {
		return "", errors.NewValidationError("spec name must contain letters or digits").
			WithField("name").WithValue(name)
	}

	dir := paths.SpecDir(slug)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.NewValidationError("spec folder already exists").
			WithField("spec").WithValue(slug).
			WithCause(errors.ErrSpecExists)
	}

	visualsDir := filepath.Join(dir, session.PlanningDirName, session.VisualsDirName)
	if err := os.MkdirAll(visualsDir, 0755); err != nil {
		return "", fmt.Errorf("create spec folder: %w", err)
	}

	title := strings.TrimSpace(name)
	if title == "" {
		title = slug
	}
	reqs := strings.TrimSpace(requirements)
	if reqs == "" {
		reqs = defaultRequirements
	}

	specDoc := fmt.Sprintf(specTemplate, title, reqs)
	if err := util.AtomicWriteFile(filepath.Join(dir, "spec.md"), []byte(specDoc), 0644); err != nil {
		return "", fmt.Errorf("write spec.md: %w", err)
	}

	tasksDoc := fmt.Sprintf(tasksTemplate, slug)
	if err := util.AtomicWriteFile(paths.TasksFile(slug), []byte(tasksDoc), 0644); err != nil {
		return "", fmt.Errorf("write tasks.md: %w", err)
	}

	if err := progress.New().Save(paths.ProgressFile(slug)); err != nil {
		return "", err
	}

	return dir, nil
}
