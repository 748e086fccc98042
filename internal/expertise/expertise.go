// Package expertise loads and maintains per-domain project knowledge.
// Knowledge lives as YAML files under the workspace expertise directory:
// an _index.yaml naming the domains, and one <domain>.yaml per domain
// holding frameworks, conventions and accumulated learnings. Delegation
// instructions embed this knowledge so agents inherit project context.
package expertise

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specflow-dev/specflow/internal/util"
)

// IndexFileName is the expertise directory's index document.
const IndexFileName = "_index.yaml"

// Learning is one recorded lesson with its timestamp.
type Learning struct {
	Content string    `yaml:"content"`
	AddedAt time.Time `yaml:"added_at"`
}

// Domain is one domain's expertise document.
type Domain struct {
	Name        string            `yaml:"domain"`
	Frameworks  []string          `yaml:"frameworks,omitempty"`
	Tools       []string          `yaml:"tools,omitempty"`
	Patterns    map[string]bool   `yaml:"patterns,omitempty"`
	Conventions map[string]string `yaml:"conventions,omitempty"`
	Learnings   []Learning        `yaml:"learnings"`
	UpdatedAt   time.Time         `yaml:"updated_at,omitempty"`
}

// RecentLearnings returns up to n of the most recently added learnings,
// oldest first.
func (d *Domain) RecentLearnings(n int) []Learning {
	if n <= 0 || len(d.Learnings) == 0 {
		return nil
	}
	start := 0
	if len(d.Learnings) > n {
		start = len(d.Learnings) - n
	}
	out := make([]Learning, len(d.Learnings)-start)
	copy(out, d.Learnings[start:])
	return out
}

// TechStack summarizes the technologies detected in a project.
type TechStack struct {
	Languages  []string `yaml:"languages,omitempty"`
	Frameworks []string `yaml:"frameworks,omitempty"`
	Databases  []string `yaml:"databases,omitempty"`
	Tools      []string `yaml:"tools,omitempty"`
}

// Index is the _index.yaml document.
type Index struct {
	ProjectName string    `yaml:"project_name"`
	TechStack   TechStack `yaml:"tech_stack"`
	Domains     []string  `yaml:"domains"`
	GeneratedAt time.Time `yaml:"generated_at"`
}

// Library is a project's loaded expertise.
type Library struct {
	// Index is the parsed index document, or nil when the directory has
	// none.
	Index *Index

	// Domains maps domain name to its loaded document.
	Domains map[string]*Domain

	// Errs records per-file load failures. A library with errors loaded
	// partially; callers typically warn and continue.
	Errs []string

	order []string
}

// Load reads the expertise directory. A missing directory or one with no
// domain files yields an empty library; files that cannot be read or
// parsed are recorded in Errs rather than aborting the load, so one bad
// file never hides the rest.
func Load(dir string) *Library {
	lib := &Library{Domains: make(map[string]*Domain)}

	names, indexErr := domainFileNames(dir, lib)
	if indexErr != "" {
		lib.Errs = append(lib.Errs, indexErr)
	}

	for _, name := range names {
		d, err := loadDomainFile(filepath.Join(dir, name+".yaml"))
		if err != nil {
			lib.Errs = append(lib.Errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if d.Name == "" {
			d.Name = name
		}
		lib.Domains[name] = d
		lib.order = append(lib.order, name)
	}
	return lib
}

// domainFileNames decides which domain files to load: the index's domain
// list when an index exists, otherwise every non-index YAML file in the
// directory, sorted for determinism.
func domainFileNames(dir string, lib *Library) ([]string, string) {
	idx, err := loadIndexFile(filepath.Join(dir, IndexFileName))
	if err == nil {
		lib.Index = idx
		return idx.Domains, ""
	}
	if !os.IsNotExist(err) {
		return scanDomainFiles(dir), fmt.Sprintf("%s: %v", IndexFileName, err)
	}
	return scanDomainFiles(dir), ""
}

func scanDomainFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "_") {
			continue
		}
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"))
	}
	sort.Strings(names)
	return names
}

func loadIndexFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &idx, nil
}

func loadDomainFile(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Domain
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse domain: %w", err)
	}
	return &d, nil
}

// Domain returns the loaded document for a domain name.
func (l *Library) Domain(name string) (*Domain, bool) {
	d, ok := l.Domains[name]
	return d, ok
}

// DomainNames returns the loaded domain names in load order.
func (l *Library) DomainNames() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Empty reports whether the library holds no domains.
func (l *Library) Empty() bool {
	return len(l.Domains) == 0
}

// SaveDomain writes a domain document into dir atomically.
func SaveDomain(dir string, d *Domain) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create expertise directory: %w", err)
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal domain %s: %w", d.Name, err)
	}
	path := filepath.Join(dir, d.Name+".yaml")
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write domain %s: %w", d.Name, err)
	}
	return nil
}

// SaveIndex writes the index document into dir atomically.
func SaveIndex(dir string, idx *Index) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create expertise directory: %w", err)
	}
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal expertise index: %w", err)
	}
	if err := util.AtomicWriteFile(filepath.Join(dir, IndexFileName), data, 0644); err != nil {
		return fmt.Errorf("write expertise index: %w", err)
	}
	return nil
}
