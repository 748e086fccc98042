package router

import (
	"strings"
	"testing"
)

func TestRouteExplicitOverride(t *testing.T) {
	r := New(nil, nil)

	dec := r.Route(Request{Description: "Fix login flow [use:database-specialist]"})

	if dec.Agent != "database-specialist" {
		t.Errorf("agent = %q, want %q", dec.Agent, "database-specialist")
	}
	if dec.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", dec.Confidence, ConfidenceHigh)
	}
	if dec.Reason != "Explicit override: [use:database-specialist]" {
		t.Errorf("reason = %q, want explicit override reason", dec.Reason)
	}
}

func TestRouteOverridePreservesCase(t *testing.T) {
	r := New(nil, nil)

	dec := r.Route(Request{Description: "handle this [USE:API-Specialist] please"})

	if dec.Agent != "API-Specialist" {
		t.Errorf("agent = %q, want case preserved from the override", dec.Agent)
	}
	if dec.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", dec.Confidence, ConfidenceHigh)
	}
}

func TestRouteKeywordScoring(t *testing.T) {
	r := New(nil, nil)

	// Three frontend keywords (component, react, style) score 9: a
	// moderate match, below the file-evidence threshold.
	dec := r.Route(Request{Description: "Fix the React component styling"})

	if dec.Agent != "frontend-specialist" {
		t.Errorf("agent = %q, want %q", dec.Agent, "frontend-specialist")
	}
	if dec.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %q, want %q", dec.Confidence, ConfidenceMedium)
	}
	if got := dec.Scores["frontend-specialist"].Score; got != 9 {
		t.Errorf("frontend score = %d, want 9", got)
	}
	if !strings.HasPrefix(dec.Reason, "Moderate match: ") {
		t.Errorf("reason = %q, want moderate match prefix", dec.Reason)
	}
}

func TestRouteFileEvidenceScoresHigh(t *testing.T) {
	r := New(nil, nil)

	dec := r.Route(Request{
		Description: "wire the user listing endpoint",
		Files:       []string{"src/api/users.go"},
	})

	if dec.Agent != "api-specialist" {
		t.Errorf("agent = %q, want %q", dec.Agent, "api-specialist")
	}
	if dec.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", dec.Confidence, ConfidenceHigh)
	}
	// api/ matches the file (+10), endpoint matches the description as
	// a pattern (+5) and as a keyword (+3).
	if got := dec.Scores["api-specialist"].Score; got != 18 {
		t.Errorf("api score = %d, want 18", got)
	}
	matches := dec.Scores["api-specialist"].Matches
	if len(matches) == 0 || matches[0] != "file:api/" {
		t.Errorf("matches = %v, want file:api/ first", matches)
	}
}

func TestRouteDomainEvidence(t *testing.T) {
	r := New(nil, nil)

	dec := r.Route(Request{
		Description:      "improve ui",
		ExpertiseDomains: []string{"frontend"},
	})

	if dec.Agent != "frontend-specialist" {
		t.Errorf("agent = %q, want %q", dec.Agent, "frontend-specialist")
	}
	if dec.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %q, want %q", dec.Confidence, ConfidenceMedium)
	}
	if len(dec.MatchedDomains) != 1 || dec.MatchedDomains[0] != "frontend" {
		t.Errorf("matched domains = %v, want [frontend]", dec.MatchedDomains)
	}
}

func TestRouteNoMatchUsesDefault(t *testing.T) {
	r := New(nil, nil)

	dec := r.Route(Request{Description: "reticulate splines"})

	if dec.Agent != DefaultAgentName {
		t.Errorf("agent = %q, want %q", dec.Agent, DefaultAgentName)
	}
	if dec.Confidence != ConfidenceLow {
		t.Errorf("confidence = %q, want %q", dec.Confidence, ConfidenceLow)
	}
	if dec.Reason != "No patterns matched, using default" {
		t.Errorf("reason = %q, want no-patterns reason", dec.Reason)
	}
}

func TestRouteTieBreaksByDeclarationOrder(t *testing.T) {
	rs := NewRuleSet("fallback")
	rs.Add("alpha", Rule{Keywords: []string{"shared"}})
	rs.Add("beta", Rule{Keywords: []string{"shared"}})
	r := New(rs, nil)

	dec := r.Route(Request{Description: "shared work"})

	if dec.Agent != "alpha" {
		t.Errorf("agent = %q, want earliest declared agent alpha", dec.Agent)
	}
}

func TestRouteAvailableAgentsRestricts(t *testing.T) {
	rs := NewRuleSet("fallback")
	rs.Add("alpha", Rule{Keywords: []string{"shared"}})
	rs.Add("beta", Rule{Keywords: []string{"shared"}})
	r := New(rs, nil)

	dec := r.Route(Request{
		Description:     "shared work",
		AvailableAgents: []string{"beta"},
	})

	if dec.Agent != "beta" {
		t.Errorf("agent = %q, want beta when alpha is unavailable", dec.Agent)
	}
}

func TestRouteNoAvailableAgentsFallsBack(t *testing.T) {
	rs := NewRuleSet("fallback")
	rs.Add("alpha", Rule{Keywords: []string{"shared"}})
	r := New(rs, nil)

	dec := r.Route(Request{
		Description:     "shared work",
		AvailableAgents: []string{"gamma"},
	})

	if dec.Agent != "fallback" {
		t.Errorf("agent = %q, want fallback", dec.Agent)
	}
	if dec.Reason != "Default fallback" {
		t.Errorf("reason = %q, want %q", dec.Reason, "Default fallback")
	}
}

func TestRouteInvalidPatternSkipped(t *testing.T) {
	rs := NewRuleSet("fallback")
	rs.Add("broken", Rule{
		FilePatterns: []string{"([", `\.go$`},
		Keywords:     []string{"parser"},
	})

	notes := rs.InvalidPatterns()
	if len(notes) != 1 || !strings.Contains(notes[0], "broken") {
		t.Fatalf("invalid pattern notes = %v, want one naming the agent", notes)
	}

	r := New(rs, nil)
	dec := r.Route(Request{
		Description: "speed up the parser",
		Files:       []string{"lexer.go"},
	})

	if dec.Agent != "broken" {
		t.Errorf("agent = %q, want broken (valid patterns still apply)", dec.Agent)
	}
	if got := dec.Scores["broken"].Score; got != 13 {
		t.Errorf("score = %d, want 13 from the surviving pattern and keyword", got)
	}
}
