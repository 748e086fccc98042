package session

import "path/filepath"

// Workspace layout names inside a target project.
const (
	DefaultWorkspaceDir = ".specflow"
	SpecsDirName        = "specs"
	SessionsDirName     = "sessions"
	ExpertiseDirName    = "expertise"
	ProductDirName      = "product"
	PlanningDirName     = "planning"
	VisualsDirName      = "visuals"
	RoutingFileName     = "routing.yaml"
	PendingFileName     = "pending_delegations.json"
	DebugLogFileName    = "debug.log"
)

// Paths resolves workspace locations inside a target project. The zero
// value is not usable; construct with NewPaths.
type Paths struct {
	root string
	dir  string
}

// NewPaths returns path helpers for a project root. An empty workspace
// dir falls back to DefaultWorkspaceDir.
func NewPaths(projectRoot, workspaceDir string) Paths {
	if workspaceDir == "" {
		workspaceDir = DefaultWorkspaceDir
	}
	return Paths{root: projectRoot, dir: workspaceDir}
}

// ProjectRoot returns the project root the workspace lives in.
func (p Paths) ProjectRoot() string { return p.root }

// Workspace returns the workspace directory.
func (p Paths) Workspace() string { return filepath.Join(p.root, p.dir) }

// SpecsDir returns the directory holding all spec folders.
func (p Paths) SpecsDir() string { return filepath.Join(p.Workspace(), SpecsDirName) }

// SpecDir returns one spec's folder.
func (p Paths) SpecDir(name string) string { return filepath.Join(p.SpecsDir(), name) }

// ProgressFile returns a spec's progress file.
func (p Paths) ProgressFile(name string) string {
	return filepath.Join(p.SpecDir(name), "progress.json")
}

// TasksFile returns a spec's task list.
func (p Paths) TasksFile(name string) string {
	return filepath.Join(p.SpecDir(name), "tasks.md")
}

// SessionsDir returns the directory holding session saves.
func (p Paths) SessionsDir() string { return filepath.Join(p.Workspace(), SessionsDirName) }

// SessionDir returns one session's scratch directory (debug log).
func (p Paths) SessionDir(id string) string { return filepath.Join(p.SessionsDir(), id) }

// DebugLogFile returns a session's debug log path.
func (p Paths) DebugLogFile(id string) string {
	return filepath.Join(p.SessionDir(id), DebugLogFileName)
}

// ExpertiseDir returns the expertise library directory.
func (p Paths) ExpertiseDir() string { return filepath.Join(p.Workspace(), ExpertiseDirName) }

// ProductDir returns the product context directory.
func (p Paths) ProductDir() string { return filepath.Join(p.Workspace(), ProductDirName) }

// RoutingFile returns the routing override file path.
func (p Paths) RoutingFile() string { return filepath.Join(p.Workspace(), RoutingFileName) }

// PendingDelegationsFile returns the file-mode delegation queue path.
func (p Paths) PendingDelegationsFile() string {
	return filepath.Join(p.Workspace(), PendingFileName)
}
