package batch

import "github.com/arbiterhq/arbiter-go/types"

// The run lifecycle is linear with two absorbing states:
//
//	queued → generating → evaluating → parsing → scoring → completed
//
// error is reachable from generating, evaluating, and parsing. Scoring is
// bookkeeping that cannot itself fail a run. Terminal states are immutable
// except for an explicit external re-evaluation request.
var forward = map[types.RunStatus]types.RunStatus{
	types.RunQueued:     types.RunGenerating,
	types.RunGenerating: types.RunEvaluating,
	types.RunEvaluating: types.RunParsing,
	types.RunParsing:    types.RunScoring,
	types.RunScoring:    types.RunCompleted,
}

var failable = map[types.RunStatus]bool{
	types.RunGenerating: true,
	types.RunEvaluating: true,
	types.RunParsing:    true,
}

// advance moves the run one step along the linear lifecycle. It reports
// false and leaves the run untouched when the edge is not in the table.
func advance(r *types.Run, next types.RunStatus) bool {
	if r == nil || r.Status.Terminal() {
		return false
	}
	if forward[r.Status] != next {
		return false
	}
	r.Status = next
	return true
}

// fail moves the run to the error terminal state with the given message.
func fail(r *types.Run, message string) bool {
	if r == nil || !failable[r.Status] {
		return false
	}
	r.Status = types.RunError
	r.Error = message
	return true
}

// resetForReevaluation rewinds a settled run to evaluating so the judge and
// parse steps can be repeated against the stored model output. The test-model
// step is never repeated, so the run must already hold model content.
func resetForReevaluation(r *types.Run) bool {
	if r == nil || !r.Status.Terminal() || r.ModelContent == "" {
		return false
	}
	r.Status = types.RunEvaluating
	r.Error = ""
	r.Verdict = nil
	r.JudgeText = ""
	r.JudgeReasoning = ""
	return true
}
