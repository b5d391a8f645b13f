package types

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Criterion is one pass/fail rule supplied by the caller. The engine treats
// the text as opaque and only uses the ID when reconciling grading-basis keys.
type Criterion struct {
	ID       string `json:"id"`
	Criteria string `json:"criteria"`
}

// Verdict is the structured result of parsing judge output. Any field may be
// absent; Score is nil when the judge text carried no usable score signal.
type Verdict struct {
	GradingBasis map[string]string `json:"gradingBasis,omitempty"`
	Score        *float64          `json:"score,omitempty"`
	JSON         map[string]any    `json:"json,omitempty"`
	Explanation  string            `json:"explanation,omitempty"`
}

type CriterionTally struct {
	Pass int `json:"pass"`
	Fail int `json:"fail"`
}

// BatchState aggregates counters for one scheduler invocation. Counters are
// monotonically non-decreasing within a batch and reset at batch start.
type BatchState struct {
	BatchID       string                    `json:"batchId,omitempty"`
	Attempts      int                       `json:"attempts"`
	Wins          int                       `json:"wins"`
	Losses        int                       `json:"losses"`
	ParseFailures int                       `json:"parseFailures"`
	CriteriaStats map[string]CriterionTally `json:"criteriaStats,omitempty"`
}

// GenerateOptions carries the model selection and sampling parameters for one
// generation request. Named fields cover the common knobs; Extra is the
// passthrough for provider-specific settings the engine does not interpret.
type GenerateOptions struct {
	Model           string         `json:"model,omitempty"`
	Provider        string         `json:"provider,omitempty"`
	Temperature     *float64       `json:"temperature,omitempty"`
	TopP            *float64       `json:"top_p,omitempty"`
	ReasoningEffort string         `json:"reasoning_effort,omitempty"`
	MaxOutputTokens int            `json:"max_output_tokens,omitempty"`
	Extra           map[string]any `json:"-"`
}

// Map flattens the options into the free-form mapping used on the wire.
// Typed fields win over Extra entries with the same key.
func (o GenerateOptions) Map() map[string]any {
	out := make(map[string]any, len(o.Extra)+6)
	for k, v := range o.Extra {
		out[k] = v
	}
	if o.Model != "" {
		out["model"] = o.Model
	}
	if o.Provider != "" {
		out["provider"] = o.Provider
	}
	if o.Temperature != nil {
		out["temperature"] = *o.Temperature
	}
	if o.TopP != nil {
		out["top_p"] = *o.TopP
	}
	if o.ReasoningEffort != "" {
		out["reasoning_effort"] = o.ReasoningEffort
	}
	if o.MaxOutputTokens > 0 {
		out["max_output_tokens"] = o.MaxOutputTokens
	}
	return out
}
