package flow

import (
	"context"
	"testing"

	"github.com/specflow-dev/specflow/internal/errors"
)

// stepFunc builds a minimal step for graph tests.
func stepFunc(name string, outcomes []Outcome, run func(ctx context.Context, fc *Context) (Outcome, error)) Step {
	return &step{name: name, outcomes: outcomes, run: run}
}

// constStep always emits the same outcome.
func constStep(name string, outcome Outcome) Step {
	return stepFunc(name, []Outcome{outcome}, func(context.Context, *Context) (Outcome, error) {
		return outcome, nil
	})
}

// makeLinearGraph wires a -> b -> end with "ok" transitions.
func makeLinearGraph() *Graph {
	g := NewGraph(nil)
	g.AddStep(constStep("a", "ok"))
	g.AddStep(constStep("b", "ok"))
	g.AddStep(constStep("end", "done"))
	g.SetStart("a")
	g.MarkTerminal("end")
	g.AddEdge("a", "ok", "b")
	g.AddEdge("b", "ok", "end")
	return g
}

func TestValidateAcceptsCompleteGraph(t *testing.T) {
	if err := makeLinearGraph().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRequiresStart(t *testing.T) {
	g := NewGraph(nil)
	g.AddStep(constStep("a", "ok"))

	if err := g.Validate(); err == nil {
		t.Error("expected error for missing start step")
	}
}

func TestValidateUnknownStartStep(t *testing.T) {
	g := NewGraph(nil)
	g.AddStep(constStep("a", "ok"))
	g.SetStart("ghost")

	err := g.Validate()
	if !errors.Is(err, errors.ErrStepNotFound) {
		t.Errorf("Validate() = %v, want ErrStepNotFound", err)
	}
}

func TestValidateUnknownEdgeTarget(t *testing.T) {
	g := NewGraph(nil)
	g.AddStep(constStep("a", "ok"))
	g.SetStart("a")
	g.AddEdge("a", "ok", "ghost")

	err := g.Validate()
	if !errors.Is(err, errors.ErrStepNotFound) {
		t.Errorf("Validate() = %v, want ErrStepNotFound", err)
	}
}

func TestValidateDeclaredOutcomeNeedsEdge(t *testing.T) {
	g := NewGraph(nil)
	g.AddStep(stepFunc("a", []Outcome{"ok", "retry"}, func(context.Context, *Context) (Outcome, error) {
		return "ok", nil
	}))
	g.AddStep(constStep("end", "done"))
	g.SetStart("a")
	g.MarkTerminal("end")
	g.AddEdge("a", "ok", "end")

	err := g.Validate()
	if !errors.Is(err, errors.ErrMissingEdge) {
		t.Errorf("Validate() = %v, want ErrMissingEdge", err)
	}

	var flowErr *errors.FlowError
	if !errors.As(err, &flowErr) {
		t.Fatalf("error type = %T, want *FlowError", err)
	}
	if flowErr.Step != "a" || flowErr.Outcome != "retry" {
		t.Errorf("FlowError step/outcome = %q/%q, want a/retry", flowErr.Step, flowErr.Outcome)
	}
}

func TestValidateUnreachableStep(t *testing.T) {
	g := makeLinearGraph()
	g.AddStep(constStep("orphan", "ok"))
	g.AddEdge("orphan", "ok", "end")

	err := g.Validate()
	if !errors.Is(err, errors.ErrStepNotFound) {
		t.Errorf("Validate() = %v, want ErrStepNotFound for unreachable step", err)
	}
}

func TestRunFollowsEdgesAndRecordsTrace(t *testing.T) {
	g := makeLinearGraph()
	fc := &Context{}

	if err := g.Run(context.Background(), fc); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	want := []Transition{
		{Step: "a", Outcome: "ok"},
		{Step: "b", Outcome: "ok"},
		{Step: "end", Outcome: "done"},
	}
	if len(fc.Trace) != len(want) {
		t.Fatalf("trace length = %d, want %d: %v", len(fc.Trace), len(want), fc.Trace)
	}
	for i, tr := range want {
		if fc.Trace[i] != tr {
			t.Errorf("trace[%d] = %v, want %v", i, fc.Trace[i], tr)
		}
	}
}

func TestRunTerminalStepStopsRun(t *testing.T) {
	g := makeLinearGraph()
	fc := &Context{}

	if err := g.Run(context.Background(), fc); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if last := fc.Trace[len(fc.Trace)-1]; last.Step != "end" {
		t.Errorf("last step = %q, want end", last.Step)
	}
}

func TestRunUndeclaredOutcome(t *testing.T) {
	g := NewGraph(nil)
	g.AddStep(stepFunc("a", []Outcome{"ok"}, func(context.Context, *Context) (Outcome, error) {
		return "surprise", nil
	}))
	g.AddStep(constStep("end", "done"))
	g.SetStart("a")
	g.MarkTerminal("end")
	g.AddEdge("a", "ok", "end")

	err := g.Run(context.Background(), &Context{})
	if !errors.Is(err, errors.ErrUnknownOutcome) {
		t.Errorf("Run() = %v, want ErrUnknownOutcome", err)
	}
}

func TestRunStepErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	g := NewGraph(nil)
	g.AddStep(stepFunc("a", []Outcome{"ok"}, func(context.Context, *Context) (Outcome, error) {
		return "", boom
	}))
	g.AddStep(constStep("end", "done"))
	g.SetStart("a")
	g.MarkTerminal("end")
	g.AddEdge("a", "ok", "end")

	err := g.Run(context.Background(), &Context{})
	if !errors.Is(err, boom) {
		t.Errorf("Run() = %v, want wrapped boom", err)
	}

	var flowErr *errors.FlowError
	if !errors.As(err, &flowErr) {
		t.Fatalf("error type = %T, want *FlowError", err)
	}
	if flowErr.Step != "a" {
		t.Errorf("FlowError step = %q, want a", flowErr.Step)
	}
}

func TestRunMaxIterations(t *testing.T) {
	g := NewGraph(nil)
	g.AddStep(constStep("ping", "ok"))
	g.AddStep(constStep("pong", "ok"))
	g.SetStart("ping")
	g.AddEdge("ping", "ok", "pong")
	g.AddEdge("pong", "ok", "ping")
	g.SetMaxIterations(5)

	fc := &Context{}
	err := g.Run(context.Background(), fc)
	if !errors.Is(err, errors.ErrMaxIterations) {
		t.Errorf("Run() = %v, want ErrMaxIterations", err)
	}
	if len(fc.Trace) != 5 {
		t.Errorf("trace length = %d, want 5", len(fc.Trace))
	}
}

func TestRunContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := makeLinearGraph().Run(ctx, &Context{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestAddStepReplacesWithoutDuplicatingOrder(t *testing.T) {
	g := NewGraph(nil)
	g.AddStep(constStep("a", "ok"))
	g.AddStep(constStep("a", "other"))

	if len(g.order) != 1 {
		t.Errorf("order length = %d, want 1", len(g.order))
	}
	if got := g.steps["a"].Outcomes()[0]; got != "other" {
		t.Errorf("outcome = %q, want replacement step", got)
	}
}
