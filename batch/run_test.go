package batch

import (
	"testing"

	"github.com/arbiterhq/arbiter-go/types"
)

func TestAdvanceFollowsLinearLifecycle(t *testing.T) {
	t.Parallel()

	run := &types.Run{Status: types.RunQueued}
	steps := []types.RunStatus{
		types.RunGenerating,
		types.RunEvaluating,
		types.RunParsing,
		types.RunScoring,
		types.RunCompleted,
	}
	for _, next := range steps {
		if !advance(run, next) {
			t.Fatalf("expected transition to %s from %s", next, run.Status)
		}
	}
	if run.Status != types.RunCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
}

func TestAdvanceRejectsSkips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from types.RunStatus
		to   types.RunStatus
	}{
		{name: "queued to evaluating", from: types.RunQueued, to: types.RunEvaluating},
		{name: "queued to completed", from: types.RunQueued, to: types.RunCompleted},
		{name: "generating to scoring", from: types.RunGenerating, to: types.RunScoring},
		{name: "backwards", from: types.RunParsing, to: types.RunGenerating},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			run := &types.Run{Status: tt.from}
			if advance(run, tt.to) {
				t.Fatalf("transition %s -> %s should be rejected", tt.from, tt.to)
			}
			if run.Status != tt.from {
				t.Fatalf("rejected transition mutated status to %s", run.Status)
			}
		})
	}
}

func TestTerminalRunsAreImmutable(t *testing.T) {
	t.Parallel()

	for _, status := range []types.RunStatus{types.RunCompleted, types.RunError} {
		run := &types.Run{Status: status}
		if advance(run, types.RunGenerating) {
			t.Fatalf("advance must not move a %s run", status)
		}
		if fail(run, "late failure") {
			t.Fatalf("fail must not move a %s run", status)
		}
	}
}

func TestFailOnlyFromFailableStates(t *testing.T) {
	t.Parallel()

	for _, status := range []types.RunStatus{types.RunGenerating, types.RunEvaluating, types.RunParsing} {
		run := &types.Run{Status: status}
		if !fail(run, "boom") {
			t.Fatalf("expected fail from %s", status)
		}
		if run.Status != types.RunError || run.Error != "boom" {
			t.Fatalf("unexpected run after failure: %+v", run)
		}
	}

	for _, status := range []types.RunStatus{types.RunQueued, types.RunScoring} {
		run := &types.Run{Status: status}
		if fail(run, "boom") {
			t.Fatalf("fail from %s should be rejected", status)
		}
	}
}

func TestResetForReevaluation(t *testing.T) {
	t.Parallel()

	score := 1.0
	run := &types.Run{
		Status:       types.RunCompleted,
		ModelContent: "the answer",
		JudgeText:    "[Score]: 1",
		Verdict:      &types.Verdict{Score: &score},
	}
	if !resetForReevaluation(run) {
		t.Fatal("expected settled run with model output to reset")
	}
	if run.Status != types.RunEvaluating {
		t.Fatalf("expected evaluating status, got %s", run.Status)
	}
	if run.Verdict != nil || run.JudgeText != "" || run.Error != "" {
		t.Fatalf("expected judge state cleared, got %+v", run)
	}
	if run.ModelContent != "the answer" {
		t.Fatal("model output must survive a reset")
	}
}

func TestResetForReevaluationRejectsUnsettledRuns(t *testing.T) {
	t.Parallel()

	if resetForReevaluation(&types.Run{Status: types.RunParsing, ModelContent: "x"}) {
		t.Fatal("in-flight run must not reset")
	}
	if resetForReevaluation(&types.Run{Status: types.RunError}) {
		t.Fatal("errored run without model output must not reset")
	}
}
