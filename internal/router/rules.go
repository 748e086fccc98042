package router

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule describes the kinds of work one agent is suited for.
type Rule struct {
	// FilePatterns are case-insensitive regular expressions matched
	// against file hints and, more weakly, the task description.
	FilePatterns []string `yaml:"file_patterns,omitempty"`

	// Keywords are matched as case-insensitive substrings of the
	// task description.
	Keywords []string `yaml:"keywords,omitempty"`

	// Domains name expertise areas that strengthen a match when the
	// project has them.
	Domains []string `yaml:"domains,omitempty"`
}

type compiledPattern struct {
	source string
	re     *regexp.Regexp
}

// RuleSet is an ordered collection of agent rules plus a fallback agent.
// Declaration order matters: when two agents score equally, the one
// declared first wins, so routing stays deterministic.
type RuleSet struct {
	agents       map[string]Rule
	compiled     map[string][]compiledPattern
	order        []string
	defaultAgent string
	invalid      []string
}

// NewRuleSet returns an empty rule set with the given fallback agent.
func NewRuleSet(defaultAgent string) *RuleSet {
	return &RuleSet{
		agents:       make(map[string]Rule),
		compiled:     make(map[string][]compiledPattern),
		defaultAgent: defaultAgent,
	}
}

// DefaultAgentName is the fallback agent used when no rule matches.
const DefaultAgentName = "implementer"

// DefaultRules returns the built-in rule set covering the common
// specialist agents.
func DefaultRules() *RuleSet {
	rs := NewRuleSet(DefaultAgentName)

	rs.Add("frontend-specialist", Rule{
		FilePatterns: []string{`\.tsx$`, `\.jsx$`, `\.css$`, `\.scss$`, `components/`, `pages/`},
		Keywords:     []string{"react", "vue", "component", "ui", "ux", "style", "layout", "responsive"},
		Domains:      []string{"frontend"},
	})
	rs.Add("api-specialist", Rule{
		FilePatterns: []string{`api/`, `routes/`, `controllers/`, `\.controller\.`, `endpoint`},
		Keywords:     []string{"endpoint", "rest", "graphql", "api", "http", "request", "response"},
		Domains:      []string{"api", "backend"},
	})
	rs.Add("database-specialist", Rule{
		FilePatterns: []string{`migrations/`, `models/`, `schema`, `\.sql$`, `prisma/`},
		Keywords:     []string{"database", "sql", "query", "migration", "schema", "model", "orm"},
		Domains:      []string{"database"},
	})
	rs.Add("test-specialist", Rule{
		FilePatterns: []string{`\.test\.`, `\.spec\.`, `__tests__/`, `tests/`},
		Keywords:     []string{"test", "spec", "coverage", "assertion", "mock", "fixture"},
		Domains:      []string{"testing"},
	})
	rs.Add("devops-specialist", Rule{
		FilePatterns: []string{`docker`, `\.ya?ml$`, `ci/`, `\.github/`, `kubernetes/`},
		Keywords:     []string{"deploy", "docker", "kubernetes", "ci", "cd", "pipeline", "infrastructure"},
		Domains:      []string{"devops"},
	})

	return rs
}

// Add registers or replaces the rule for an agent. New agents keep their
// insertion position; replacing an existing agent keeps its original one.
// Invalid file patterns are skipped and recorded, never fatal.
func (rs *RuleSet) Add(agent string, rule Rule) {
	if _, exists := rs.agents[agent]; !exists {
		rs.order = append(rs.order, agent)
	}
	rs.agents[agent] = rule

	var compiled []compiledPattern
	for _, p := range rule.FilePatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			rs.invalid = append(rs.invalid, fmt.Sprintf("agent %s: pattern %q: %v", agent, p, err))
			continue
		}
		compiled = append(compiled, compiledPattern{source: p, re: re})
	}
	rs.compiled[agent] = compiled
}

// Agents returns the agent names in declaration order.
func (rs *RuleSet) Agents() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

// Rule returns the rule registered for an agent.
func (rs *RuleSet) Rule(agent string) (Rule, bool) {
	r, ok := rs.agents[agent]
	return r, ok
}

// DefaultAgent returns the fallback agent name.
func (rs *RuleSet) DefaultAgent() string {
	return rs.defaultAgent
}

// SetDefaultAgent replaces the fallback agent name.
func (rs *RuleSet) SetDefaultAgent(agent string) {
	rs.defaultAgent = agent
}

// InvalidPatterns drains the accumulated invalid-pattern notes so the
// caller can log them.
func (rs *RuleSet) InvalidPatterns() []string {
	out := rs.invalid
	rs.invalid = nil
	return out
}

// rulesFile mirrors the routing.yaml document. Agents decodes through a
// yaml.Node so document order survives into the rule set.
type rulesFile struct {
	Agents       yaml.Node `yaml:"agents"`
	DefaultAgent string    `yaml:"default_agent"`
}

// MergeFile overlays a routing.yaml file onto the rule set: agents update
// or append by name in document order, and default_agent replaces the
// fallback when set. A missing file is not an error.
func (rs *RuleSet) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read routing rules: %w", err)
	}
	if err := rs.Merge(data); err != nil {
		return fmt.Errorf("routing rules %s: %w", path, err)
	}
	return nil
}

// Merge overlays a YAML routing document onto the rule set.
func (rs *RuleSet) Merge(data []byte) error {
	var doc rulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse routing rules: %w", err)
	}

	if doc.Agents.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Agents.Content); i += 2 {
			keyNode := doc.Agents.Content[i]
			valNode := doc.Agents.Content[i+1]

			var rule Rule
			if err := valNode.Decode(&rule); err != nil {
				return fmt.Errorf("parse rule for agent %q: %w", keyNode.Value, err)
			}
			rs.Add(keyNode.Value, rule)
		}
	}

	if doc.DefaultAgent != "" {
		rs.defaultAgent = doc.DefaultAgent
	}
	return nil
}

// Encode renders the rule set as a routing.yaml document, preserving
// agent declaration order.
func (rs *RuleSet) Encode() ([]byte, error) {
	agents := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range rs.order {
		var valNode yaml.Node
		if err := valNode.Encode(rs.agents[name]); err != nil {
			return nil, fmt.Errorf("encode rule for agent %q: %w", name, err)
		}
		agents.Content = append(agents.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&valNode,
		)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "agents"}, agents,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "default_agent"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: rs.defaultAgent},
	)
	return yaml.Marshal(doc)
}
