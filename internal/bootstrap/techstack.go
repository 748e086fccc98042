package bootstrap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/specflow-dev/specflow/internal/expertise"
)

// packageJSON is the slice of package.json the detector cares about.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// stackEntry names one detected dependency and which TechStack list it
// belongs in.
type stackEntry struct {
	dep  string
	kind string // "framework", "tool", "language", or "database"
	name string
}

// jsDependencies maps package.json dependency names onto stack entries.
var jsDependencies = []stackEntry{
	{"react", "framework", "React"},
	{"vue", "framework", "Vue"},
	{"next", "framework", "Next.js"},
	{"@angular/core", "framework", "Angular"},
	{"express", "framework", "Express"},
	{"prisma", "tool", "Prisma"},
	{"@prisma/client", "tool", "Prisma"},
	{"typeorm", "tool", "TypeORM"},
	{"typescript", "language", "TypeScript"},
	{"pg", "database", "PostgreSQL"},
	{"mysql2", "database", "MySQL"},
	{"mongoose", "database", "MongoDB"},
	{"mongodb", "database", "MongoDB"},
	{"sqlite3", "database", "SQLite"},
}

// pyDependencies maps python requirement names onto stack entries.
var pyDependencies = []stackEntry{
	{"django", "framework", "Django"},
	{"flask", "framework", "Flask"},
	{"fastapi", "framework", "FastAPI"},
	{"sqlalchemy", "tool", "SQLAlchemy"},
	{"psycopg", "database", "PostgreSQL"},
}

var prismaProviderPattern = regexp.MustCompile(`provider\s*=\s*"(\w+)"`)

// prismaProviders maps schema.prisma datasource providers onto database
// names.
var prismaProviders = map[string]string{
	"postgresql": "PostgreSQL",
	"mysql":      "MySQL",
	"sqlite":     "SQLite",
	"mongodb":    "MongoDB",
	"sqlserver":  "SQL Server",
}

// DetectTechStack reads the detected manifests and derives the project's
// languages, frameworks, databases, and tools. Manifests that cannot be
// read or parsed are skipped; detection works from whatever remains.
func DetectTechStack(root string, configFiles []string) expertise.TechStack {
	var stack expertise.TechStack

	for _, rel := range configFiles {
		path := filepath.Join(root, filepath.FromSlash(rel))
		switch strings.ToLower(filepath.Base(rel)) {
		case "package.json":
			detectNode(path, &stack)
		case "tsconfig.json":
			stack.Languages = appendUnique(stack.Languages, "TypeScript")
		case "pyproject.toml":
			stack.Languages = appendUnique(stack.Languages, "Python")
			detectPython(path, &stack)
		case "requirements.txt":
			stack.Languages = appendUnique(stack.Languages, "Python")
			detectPython(path, &stack)
		case "go.mod":
			stack.Languages = appendUnique(stack.Languages, "Go")
		case "cargo.toml":
			stack.Languages = appendUnique(stack.Languages, "Rust")
		case "gemfile":
			stack.Languages = appendUnique(stack.Languages, "Ruby")
		case "dockerfile", "docker-compose.yml", "docker-compose.yaml":
			stack.Tools = appendUnique(stack.Tools, "Docker")
		case "schema.prisma":
			stack.Tools = appendUnique(stack.Tools, "Prisma")
			detectPrisma(path, &stack)
		}
	}

	return stack
}

// detectNode folds package.json dependencies into the stack.
func detectNode(path string, stack *expertise.TechStack) {
	stack.Languages = appendUnique(stack.Languages, "JavaScript")

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return
	}

	deps := make(map[string]bool, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		deps[name] = true
	}
	for name := range pkg.DevDependencies {
		deps[name] = true
	}

	for _, entry := range jsDependencies {
		if deps[entry.dep] {
			addStack(stack, entry)
		}
	}
}

// detectPython scans a requirements-style file for known dependencies.
// Substring matching is deliberate: it covers pinned, extra-qualified,
// and pyproject table forms alike.
func detectPython(path string, stack *expertise.TechStack) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	content := strings.ToLower(string(data))

	for _, entry := range pyDependencies {
		if strings.Contains(content, entry.dep) {
			addStack(stack, entry)
		}
	}
}

// addStack files one entry into the matching TechStack list.
func addStack(stack *expertise.TechStack, entry stackEntry) {
	switch entry.kind {
	case "language":
		stack.Languages = appendUnique(stack.Languages, entry.name)
	case "framework":
		stack.Frameworks = appendUnique(stack.Frameworks, entry.name)
	case "database":
		stack.Databases = appendUnique(stack.Databases, entry.name)
	case "tool":
		stack.Tools = appendUnique(stack.Tools, entry.name)
	}
}

// detectPrisma reads the datasource provider out of schema.prisma.
func detectPrisma(path string, stack *expertise.TechStack) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	m := prismaProviderPattern.FindSubmatch(data)
	if m == nil {
		return
	}
	if db, ok := prismaProviders[string(m[1])]; ok {
		stack.Databases = appendUnique(stack.Databases, db)
	}
}

// appendUnique appends values not already present, preserving order.
func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, have := range list {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
