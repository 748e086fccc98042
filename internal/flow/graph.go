package flow

import (
	"context"
	"fmt"

	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/logging"
)

// DefaultMaxIterations bounds step dispatches per run. The loop revisits
// steps once per task, so the bound is generous; hitting it means a
// wiring bug, and an error beats spinning forever.
const DefaultMaxIterations = 1000

// Graph is a validated set of steps and transitions. Construct with
// NewGraph, register steps and edges, then Run.
type Graph struct {
	steps         map[string]Step
	edges         map[string]map[Outcome]string
	order         []string
	start         string
	terminal      map[string]bool
	maxIterations int
	log           *logging.Logger
}

// NewGraph returns an empty graph.
func NewGraph(log *logging.Logger) *Graph {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Graph{
		steps:         make(map[string]Step),
		edges:         make(map[string]map[Outcome]string),
		terminal:      make(map[string]bool),
		maxIterations: DefaultMaxIterations,
		log:           log,
	}
}

// AddStep registers a step. Re-registering a name replaces the step.
func (g *Graph) AddStep(s Step) {
	if _, exists := g.steps[s.Name()]; !exists {
		g.order = append(g.order, s.Name())
	}
	g.steps[s.Name()] = s
}

// AddEdge routes an outcome of one step to another step.
func (g *Graph) AddEdge(from string, outcome Outcome, to string) {
	if g.edges[from] == nil {
		g.edges[from] = make(map[Outcome]string)
	}
	g.edges[from][outcome] = to
}

// SetStart names the entry step.
func (g *Graph) SetStart(name string) { g.start = name }

// MarkTerminal marks a step as ending the run. Terminal steps still run;
// their outcomes need no edges.
func (g *Graph) MarkTerminal(name string) { g.terminal[name] = true }

// SetMaxIterations overrides the dispatch bound.
func (g *Graph) SetMaxIterations(n int) {
	if n > 0 {
		g.maxIterations = n
	}
}

// Validate checks the graph is complete before any step runs: the start
// step exists, every edge connects known steps, every declared outcome of
// every non-terminal step has an edge, and every step is reachable from
// the start.
func (g *Graph) Validate() error {
	if g.start == "" {
		return errors.NewFlowError("no start step set", nil)
	}
	if _, ok := g.steps[g.start]; !ok {
		return errors.NewFlowError("start step not registered", errors.ErrStepNotFound).
			WithStep(g.start)
	}

	for from, outcomes := range g.edges {
		if _, ok := g.steps[from]; !ok {
			return errors.NewFlowError("edge from unknown step", errors.ErrStepNotFound).
				WithStep(from)
		}
		for outcome, to := range outcomes {
			if _, ok := g.steps[to]; !ok {
				return errors.NewFlowError(
					fmt.Sprintf("edge targets unknown step %q", to),
					errors.ErrStepNotFound).
					WithStep(from).WithOutcome(string(outcome))
			}
		}
	}

	for _, name := range g.order {
		if g.terminal[name] {
			continue
		}
		for _, outcome := range g.steps[name].Outcomes() {
			if _, ok := g.edges[name][outcome]; !ok {
				return errors.NewFlowError("declared outcome has no edge", errors.ErrMissingEdge).
					WithStep(name).WithOutcome(string(outcome))
			}
		}
	}

	reachable := map[string]bool{g.start: true}
	queue := []string{g.start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, to := range g.edges[current] {
			if !reachable[to] {
				reachable[to] = true
				queue = append(queue, to)
			}
		}
	}
	for _, name := range g.order {
		if !reachable[name] {
			return errors.NewFlowError("step unreachable from start", errors.ErrStepNotFound).
				WithStep(name)
		}
	}

	return nil
}

// Run validates the graph and dispatches steps until a terminal step
// completes. The emitted outcome of every dispatch is validated against
// the step's declaration and appended to the context's trace.
func (g *Graph) Run(ctx context.Context, fc *Context) error {
	if err := g.Validate(); err != nil {
		return err
	}

	current := g.start
	for i := 0; i < g.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return errors.NewFlowError("run canceled", ctx.Err()).WithStep(current)
		default:
		}

		step := g.steps[current]
		g.log.Debug("dispatching step", "step", current, "iteration", i)

		outcome, err := step.Run(ctx, fc)
		if err != nil {
			return errors.NewFlowError("step failed", err).WithStep(current)
		}
		if !declares(step, outcome) {
			return errors.NewFlowError("step emitted undeclared outcome", errors.ErrUnknownOutcome).
				WithStep(current).WithOutcome(string(outcome))
		}

		fc.Trace = append(fc.Trace, Transition{Step: current, Outcome: outcome})
		g.log.Debug("step finished", "step", current, "outcome", string(outcome))

		if g.terminal[current] {
			return nil
		}

		next, ok := g.edges[current][outcome]
		if !ok {
			return errors.NewFlowError("no transition for outcome", errors.ErrMissingEdge).
				WithStep(current).WithOutcome(string(outcome))
		}
		current = next
	}

	return errors.NewFlowError(
		fmt.Sprintf("run exceeded %d step dispatches", g.maxIterations),
		errors.ErrMaxIterations).WithStep(current)
}

func declares(s Step, outcome Outcome) bool {
	for _, o := range s.Outcomes() {
		if o == outcome {
			return true
		}
	}
	return false
}
