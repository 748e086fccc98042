package session

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/task"
)

// SpecFolder is one spec's documents, loaded at session start and
// carried for delegation context.
type SpecFolder struct {
	// Name is the spec folder name.
	Name string

	// Path is the spec folder location.
	Path string

	// Files maps spec-relative names to contents: markdown and YAML at
	// the folder root plus everything under planning/ (visuals aside).
	Files map[string]string

	// Visuals lists file names under planning/visuals/.
	Visuals []string

	// Tasks is the backlog parsed from tasks.md.
	Tasks []task.Task
}

// LoadSpecFolder reads a spec folder. The folder must exist; individual
// documents are optional.
func LoadSpecFolder(dir string) (*SpecFolder, error) {
	name := filepath.Base(dir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.NewNotFoundError("spec", name).WithCause(errors.ErrSpecNotFound)
	}

	spec := &SpecFolder{
		Name:  name,
		Path:  dir,
		Files: make(map[string]string),
	}

	readInto(spec.Files, dir, "")
	readInto(spec.Files, filepath.Join(dir, PlanningDirName), PlanningDirName+"/")
	spec.Visuals = listNames(filepath.Join(dir, PlanningDirName, VisualsDirName))

	if content, ok := spec.Files["tasks.md"]; ok {
		spec.Tasks = task.ParseMarkdown(content)
	}

	return spec, nil
}

// contextFile reports whether a file belongs in the delegation context.
func contextFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".yaml", ".yml":
		return true
	}
	return false
}

// readInto collects context files from one directory, keyed with the
// given prefix. Unreadable files are skipped.
func readInto(files map[string]string, dir, prefix string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !contextFile(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		files[prefix+entry.Name()] = string(data)
	}
}

// listNames returns the sorted file names in a directory, or nil when it
// does not exist.
func listNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
