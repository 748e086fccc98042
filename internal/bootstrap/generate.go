package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specflow-dev/specflow/internal/expertise"
	"github.com/specflow-dev/specflow/internal/logging"
	"github.com/specflow-dev/specflow/internal/router"
	"github.com/specflow-dev/specflow/internal/session"
	"github.com/specflow-dev/specflow/internal/util"
)

// Framework and tool filters per domain. Only stack entries a
// specialist would actually lean on end up in the domain document.
var (
	frontendFrameworks = []string{"React", "Vue", "Next.js", "Angular"}
	apiFrameworks      = []string{"Express", "FastAPI", "Django", "Flask"}
	databaseTools      = []string{"Prisma", "SQLAlchemy", "TypeORM"}
	devopsTools        = []string{"Docker", "Kubernetes", "Terraform"}
)

// routingRules are the per-domain rules written into the routing.yaml
// skeleton. Smaller than the built-in defaults; the file is a starting
// point for hand edits, merged over DefaultRules at session start.
var routingRules = map[string]router.Rule{
	"frontend": {
		FilePatterns: []string{`\.tsx$`, `\.jsx$`, `components/`},
		Keywords:     []string{"component", "ui", "style"},
		Domains:      []string{"frontend"},
	},
	"api": {
		FilePatterns: []string{`api/`, `routes/`},
		Keywords:     []string{"endpoint", "api", "route"},
		Domains:      []string{"api"},
	},
	"database": {
		FilePatterns: []string{`migrations/`, `models/`},
		Keywords:     []string{"database", "migration", "schema"},
		Domains:      []string{"database"},
	},
	"testing": {
		FilePatterns: []string{`\.test\.`, `\.spec\.`, `tests/`},
		Keywords:     []string{"test", "coverage"},
		Domains:      []string{"testing"},
	},
	"devops": {
		FilePatterns: []string{`docker`, `ci/`, `\.github/`},
		Keywords:     []string{"deploy", "docker", "ci"},
		Domains:      []string{"devops"},
	},
}

// Options configure a bootstrap run.
type Options struct {
	// MaxDepth bounds the project walk; zero means DefaultMaxDepth.
	MaxDepth int

	// Ignores are extra directory globs skipped during analysis.
	Ignores []string

	// Log receives progress lines. Nil means silent.
	Log *logging.Logger
}

// Result summarizes what a bootstrap run generated.
type Result struct {
	Analysis    *Analysis
	Stack       expertise.TechStack
	Domains     []string
	RoutingFile string
}

// Run analyzes the project under paths and regenerates the expertise
// library (one YAML per detected domain plus _index.yaml) and the
// routing.yaml override skeleton. Re-running overwrites the generated
// files, including any learnings appended since the last run.
func Run(paths session.Paths, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = logging.NopLogger()
	}

	analysis, err := Analyze(paths.ProjectRoot(), AnalyzeOptions{
		MaxDepth: opts.MaxDepth,
		Ignores:  opts.Ignores,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze project: %w", err)
	}

	stack := DetectTechStack(paths.ProjectRoot(), analysis.ConfigFiles)
	domains := BuildDomains(analysis, stack)

	log.Info("project analyzed",
		"directories", len(analysis.Directories),
		"configs", len(analysis.ConfigFiles),
		"languages", stack.Languages,
		"domains", len(domains),
	)

	if err := os.MkdirAll(paths.Workspace(), 0755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	names := make([]string, 0, len(domains))
	for _, d := range domains {
		if err := expertise.SaveDomain(paths.ExpertiseDir(), d); err != nil {
			return nil, err
		}
		names = append(names, d.Name)
		log.Info("expertise generated", "domain", d.Name)
	}

	idx := &expertise.Index{
		ProjectName: filepath.Base(paths.ProjectRoot()),
		TechStack:   stack,
		Domains:     names,
		GeneratedAt: time.Now().UTC(),
	}
	if err := expertise.SaveIndex(paths.ExpertiseDir(), idx); err != nil {
		return nil, err
	}

	if err := writeRouting(paths.RoutingFile(), names); err != nil {
		return nil, err
	}
	log.Info("routing skeleton written", "path", paths.RoutingFile())

	return &Result{
		Analysis:    analysis,
		Stack:       stack,
		Domains:     names,
		RoutingFile: paths.RoutingFile(),
	}, nil
}

// BuildDomains turns an analysis and its tech stack into expertise
// domain documents, in the same order Analysis.Domains reports.
func BuildDomains(a *Analysis, stack expertise.TechStack) []*expertise.Domain {
	now := time.Now().UTC()
	var out []*expertise.Domain
	for _, name := range a.Domains() {
		out = append(out, buildDomain(name, a, stack, now))
	}
	return out
}

func buildDomain(name string, a *Analysis, stack expertise.TechStack, now time.Time) *expertise.Domain {
	d := &expertise.Domain{Name: name, UpdatedAt: now}

	switch name {
	case "frontend":
		d.Frameworks = intersect(stack.Frameworks, frontendFrameworks)
		d.Patterns = map[string]bool{
			"component_based": a.Patterns.ComponentBased,
			"typescript":      a.Patterns.TypeScript || contains(stack.Languages, "TypeScript"),
		}
		d.Conventions = map[string]string{
			"component_location": "src/components",
			"style_approach":     "css-modules",
		}
	case "api":
		d.Frameworks = intersect(stack.Frameworks, apiFrameworks)
		d.Patterns = map[string]bool{"rest": true}
		d.Conventions = map[string]string{
			"route_location": "src/api or routes/",
		}
	case "database":
		d.Tools = intersect(stack.Tools, databaseTools)
		d.Patterns = map[string]bool{"migrations": true, "models": true}
	case "testing":
		d.Patterns = map[string]bool{"automated": true}
		d.Conventions = map[string]string{
			"test_location": "tests/ or alongside sources",
		}
	case "devops":
		d.Tools = intersect(stack.Tools, devopsTools)
		d.Patterns = map[string]bool{"containerized": contains(stack.Tools, "Docker")}
	}

	return d
}

// writeRouting writes a routing.yaml skeleton covering the generated
// domains, with the standard fallback agent.
func writeRouting(path string, domains []string) error {
	rs := router.NewRuleSet(router.DefaultAgentName)
	for _, d := range domains {
		rule, ok := routingRules[d]
		if !ok {
			continue
		}
		rs.Add(agentName(d), rule)
	}

	data, err := rs.Encode()
	if err != nil {
		return fmt.Errorf("encode routing rules: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write routing rules: %w", err)
	}
	return nil
}

// agentName maps a domain onto its specialist agent.
func agentName(domain string) string {
	if domain == "testing" {
		return "test-specialist"
	}
	return domain + "-specialist"
}

// intersect returns the values present in both lists, in have order.
func intersect(have, want []string) []string {
	var out []string
	for _, v := range have {
		if contains(want, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, have := range list {
		if have == v {
			return true
		}
	}
	return false
}
