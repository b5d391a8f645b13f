package types

type RunStatus string

const (
	RunQueued     RunStatus = "queued"
	RunGenerating RunStatus = "generating"
	RunEvaluating RunStatus = "evaluating"
	RunParsing    RunStatus = "parsing"
	RunScoring    RunStatus = "scoring"
	RunCompleted  RunStatus = "completed"
	RunError      RunStatus = "error"
)

// Terminal reports whether the status is one of the two absorbing states.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunError
}

// Run is one generate-then-judge attempt. A Run is owned exclusively by the
// scheduler that created it; collaborators only read it. Once the run reaches
// a terminal state, exactly one of Error set or Status == RunCompleted holds.
type Run struct {
	ID             string    `json:"id"`
	BatchID        string    `json:"batchId"`
	Status         RunStatus `json:"status"`
	ModelContent   string    `json:"modelContent,omitempty"`
	ModelReasoning string    `json:"modelReasoning,omitempty"`
	JudgeText      string    `json:"judgeText,omitempty"`
	JudgeReasoning string    `json:"judgeReasoning,omitempty"`
	Verdict        *Verdict  `json:"verdict,omitempty"`
	Error          string    `json:"error,omitempty"`
}
