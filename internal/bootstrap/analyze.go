// Package bootstrap analyzes an existing project and seeds the
// workspace with generated expertise, routing rules, and spec folders.
package bootstrap

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultMaxDepth bounds the project walk. Four levels is enough to see
// the shape of a codebase without drowning in generated trees.
const DefaultMaxDepth = 4

// DefaultIgnores are directory globs skipped during analysis. Callers
// can extend the list but not shrink it; walking node_modules helps
// nobody.
var DefaultIgnores = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	"__pycache__",
	".next",
	"vendor",
	".specflow",
	"venv",
	".venv",
	"coverage",
}

// configFileNames are the well-known build and dependency manifests the
// walk records when it sees them.
var configFileNames = map[string]bool{
	"package.json":        true,
	"tsconfig.json":       true,
	"pyproject.toml":      true,
	"cargo.toml":          true,
	"go.mod":              true,
	"gemfile":             true,
	"requirements.txt":    true,
	"docker-compose.yml":  true,
	"docker-compose.yaml": true,
	"dockerfile":          true,
	".env.example":        true,
	"schema.prisma":       true,
}

// Patterns are the architectural traits inferred from a project walk.
// They decide which expertise domains and routing agents get generated.
type Patterns struct {
	Frontend       bool
	TypeScript     bool
	ComponentBased bool
	Backend        bool
	API            bool
	Database       bool
	Testing        bool
	DevOps         bool
}

// Analysis is what a project walk discovered.
type Analysis struct {
	// Root is the analyzed directory.
	Root string

	// Directories lists walked directories relative to Root, sorted.
	Directories []string

	// Extensions counts files per lowercased extension, ".tsx" style.
	Extensions map[string]int

	// ConfigFiles lists detected manifests relative to Root, sorted.
	ConfigFiles []string

	// Patterns are the inferred architectural traits.
	Patterns Patterns
}

// AnalyzeOptions tune the project walk.
type AnalyzeOptions struct {
	// MaxDepth bounds the walk; zero means DefaultMaxDepth.
	MaxDepth int

	// Ignores are extra directory globs on top of DefaultIgnores.
	Ignores []string
}

// Analyze walks a project root to a bounded depth and infers its shape.
// Ignore globs that fail to compile are skipped, as are unreadable
// subtrees.
func Analyze(root string, opts AnalyzeOptions) (*Analysis, error) {
	ignores := compileIgnores(append(append([]string{}, DefaultIgnores...), opts.Ignores...))
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	a := &Analysis{
		Root:       root,
		Extensions: make(map[string]int),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignored(ignores, rel) || depth(rel) > maxDepth {
				return fs.SkipDir
			}
			a.Directories = append(a.Directories, rel)
			a.observeDir(rel)
			return nil
		}

		if ignored(ignores, rel) {
			return nil
		}
		a.observeFile(rel, d.Name())
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(a.Directories)
	sort.Strings(a.ConfigFiles)
	return a, nil
}

// observeDir folds one directory into the inferred patterns.
func (a *Analysis) observeDir(rel string) {
	base := strings.ToLower(filepath.Base(rel))

	if strings.Contains(base, "components") {
		a.Patterns.ComponentBased = true
	}
	if strings.Contains(base, "api") || strings.Contains(base, "routes") {
		a.Patterns.API = true
	}
	if strings.Contains(base, "migrations") || strings.Contains(base, "models") {
		a.Patterns.Database = true
	}
	switch base {
	case "tests", "__tests__", "spec", "e2e":
		a.Patterns.Testing = true
	case ".github", "ci", "kubernetes", "terraform", "helm":
		a.Patterns.DevOps = true
	}
}

// observeFile folds one file into the histogram, config list, and
// inferred patterns.
func (a *Analysis) observeFile(rel, name string) {
	lower := strings.ToLower(name)

	if configFileNames[lower] {
		a.ConfigFiles = append(a.ConfigFiles, rel)
		switch lower {
		case "dockerfile", "docker-compose.yml", "docker-compose.yaml":
			a.Patterns.DevOps = true
		case "schema.prisma":
			a.Patterns.Database = true
		case "tsconfig.json":
			a.Patterns.TypeScript = true
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		a.Extensions[ext]++
	}

	switch ext {
	case ".tsx":
		a.Patterns.Frontend = true
		a.Patterns.TypeScript = true
	case ".jsx", ".vue":
		a.Patterns.Frontend = true
	case ".py", ".go", ".rs", ".java", ".rb":
		a.Patterns.Backend = true
	}

	if strings.Contains(lower, ".test.") || strings.Contains(lower, ".spec.") ||
		strings.HasSuffix(lower, "_test.go") {
		a.Patterns.Testing = true
	}
}

// Domains returns the expertise domain names this analysis supports, in
// generation order.
func (a *Analysis) Domains() []string {
	var out []string
	if a.Patterns.Frontend {
		out = append(out, "frontend")
	}
	if a.Patterns.API || a.Patterns.Backend {
		out = append(out, "api")
	}
	if a.Patterns.Database {
		out = append(out, "database")
	}
	if a.Patterns.Testing {
		out = append(out, "testing")
	}
	if a.Patterns.DevOps {
		out = append(out, "devops")
	}
	return out
}

// compileIgnores turns ignore globs into matchers, dropping any that do
// not compile.
func compileIgnores(patterns []string) []glob.Glob {
	var out []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		out = append(out, g)
	}
	return out
}

// ignored reports whether any path segment, or the whole relative path,
// matches an ignore glob.
func ignored(ignores []glob.Glob, rel string) bool {
	segments := strings.Split(rel, "/")
	for _, g := range ignores {
		if g.Match(rel) {
			return true
		}
		for _, seg := range segments {
			if g.Match(seg) {
				return true
			}
		}
	}
	return false
}

// depth counts how many directories deep a relative path sits.
func depth(rel string) int {
	return strings.Count(rel, "/") + 1
}
