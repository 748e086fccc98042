// Package router decides which agent receives a task. Routing scores the
// task's description and file hints against per-agent rules, honors an
// explicit [use:agent] override in the description, and reports how
// confident the match is so the caller can log or display it.
package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specflow-dev/specflow/internal/logging"
)

// Confidence buckets for a routing decision.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Score weights. A single file hint match outweighs keywords so that
// concrete evidence about which files a task touches dominates.
const (
	fileMatchScore    = 10
	descPatternScore  = 5
	keywordScore      = 3
	domainScore       = 2
	highThreshold     = 10
	moderateThreshold = 5
)

// overridePattern matches an explicit agent override embedded in a task
// description, e.g. "Fix login flow [use:api-specialist]".
var overridePattern = regexp.MustCompile(`(?i)\[use:([a-z-]+)\]`)

// Request describes one task to route.
type Request struct {
	// Description is the task text, scanned for keywords and an
	// explicit [use:agent] override.
	Description string

	// Files are file path hints associated with the task.
	Files []string

	// AvailableAgents, when non-empty, restricts which agents may be
	// scored. The fallback agent is always allowed.
	AvailableAgents []string

	// ExpertiseDomains lists the project's known expertise domains.
	ExpertiseDomains []string
}

// AgentScore is one agent's accumulated evidence for a request.
type AgentScore struct {
	Score   int
	Matches []string
}

// Decision is the result of routing one task.
type Decision struct {
	// Agent is the chosen agent name.
	Agent string

	// Confidence is one of the Confidence* constants.
	Confidence string

	// Reason is a human-readable explanation of the choice.
	Reason string

	// MatchedDomains lists the expertise domains that contributed to
	// the winning agent's score.
	MatchedDomains []string

	// Scores holds the per-agent evidence, for diagnostics.
	Scores map[string]AgentScore
}

// Router routes tasks using a rule set.
type Router struct {
	rules *RuleSet
	log   *logging.Logger
}

// New creates a Router. A nil rule set falls back to the built-in rules.
// Invalid file patterns accumulated in the rule set are logged here.
func New(rules *RuleSet, log *logging.Logger) *Router {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = logging.NopLogger()
	}
	for _, note := range rules.InvalidPatterns() {
		log.Warn("skipping invalid routing pattern", "detail", note)
	}
	return &Router{rules: rules, log: log}
}

// Rules returns the rule set the router decides with.
func (r *Router) Rules() *RuleSet {
	return r.rules
}

// Route decides which agent should receive the task.
//
// An explicit [use:agent] override in the description short-circuits
// scoring and routes with high confidence. Otherwise each agent's rule is
// scored: a file pattern matching a file hint scores highest, a file
// pattern matching the description scores half of that, keywords and
// project expertise domains add smaller amounts. Agents are scored in
// declaration order and a strictly higher score is required to displace
// the current best, so ties resolve to the earliest declared agent.
func (r *Router) Route(req Request) Decision {
	if m := overridePattern.FindStringSubmatch(req.Description); m != nil {
		agent := m[1]
		r.log.Info("routing override", "agent", agent)
		return Decision{
			Agent:      agent,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("Explicit override: [use:%s]", agent),
		}
	}

	desc := strings.ToLower(req.Description)
	allowed := make(map[string]bool, len(req.AvailableAgents))
	for _, a := range req.AvailableAgents {
		allowed[a] = true
	}
	domains := make(map[string]bool, len(req.ExpertiseDomains))
	for _, d := range req.ExpertiseDomains {
		domains[d] = true
	}

	scores := make(map[string]AgentScore)
	matchedDomains := make(map[string][]string)
	bestAgent := ""
	bestScore := 0

	for _, agent := range r.rules.Agents() {
		if len(allowed) > 0 && !allowed[agent] {
			continue
		}
		rule := r.rules.agents[agent]

		score := 0
		var matches []string

		for _, cp := range r.rules.compiled[agent] {
			for _, f := range req.Files {
				if cp.re.MatchString(f) {
					score += fileMatchScore
					matches = append(matches, "file:"+cp.source)
					break
				}
			}
			if cp.re.MatchString(req.Description) {
				score += descPatternScore
				matches = append(matches, "desc:"+cp.source)
			}
		}

		for _, kw := range rule.Keywords {
			if strings.Contains(desc, strings.ToLower(kw)) {
				score += keywordScore
				matches = append(matches, "keyword:"+kw)
			}
		}

		for _, d := range rule.Domains {
			if domains[d] {
				score += domainScore
				matches = append(matches, "domain:"+d)
				matchedDomains[agent] = append(matchedDomains[agent], d)
			}
		}

		scores[agent] = AgentScore{Score: score, Matches: matches}
		if score > bestScore {
			bestScore = score
			bestAgent = agent
		}
	}

	dec := Decision{Scores: scores}

	switch {
	case len(scores) == 0:
		dec.Agent = r.rules.DefaultAgent()
		dec.Confidence = ConfidenceLow
		dec.Reason = "Default fallback"
	case bestScore >= highThreshold:
		dec.Agent = bestAgent
		dec.Confidence = ConfidenceHigh
		dec.Reason = "Strong match: " + matchSummary(scores[bestAgent].Matches)
	case bestScore >= moderateThreshold:
		dec.Agent = bestAgent
		dec.Confidence = ConfidenceMedium
		dec.Reason = "Moderate match: " + matchSummary(scores[bestAgent].Matches)
	case bestScore > 0:
		dec.Agent = bestAgent
		dec.Confidence = ConfidenceLow
		dec.Reason = "Weak match: " + matchSummary(scores[bestAgent].Matches)
	default:
		dec.Agent = r.rules.DefaultAgent()
		dec.Confidence = ConfidenceLow
		dec.Reason = "No patterns matched, using default"
	}

	dec.MatchedDomains = matchedDomains[dec.Agent]

	r.log.Debug("task routed",
		"agent", dec.Agent,
		"confidence", dec.Confidence,
		"reason", dec.Reason)
	return dec
}

// matchSummary renders up to the first three match notes.
func matchSummary(matches []string) string {
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return "[" + strings.Join(matches, ", ") + "]"
}
