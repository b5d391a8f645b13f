package observe

import "time"

// Level is the severity of a progress notification.
type Level string

// Category tags the engine stage a notification belongs to.
type Category string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

const (
	CategoryBatch    Category = "batch"
	CategoryRun      Category = "run"
	CategoryGenerate Category = "generate"
	CategoryJudge    Category = "judge"
	CategoryParse    Category = "parse"
	CategoryScore    Category = "score"
	CategoryCustom   Category = "custom"
)

// Event is one progress notification emitted by the engine: a run state
// transition or a batch milestone. The engine emits events outward and never
// calls back into UI code.
type Event struct {
	ID         string         `json:"id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	BatchID    string         `json:"batchId,omitempty"`
	RunID      string         `json:"runId,omitempty"`
	Level      Level          `json:"level"`
	Category   Category       `json:"category"`
	Message    string         `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (e *Event) Normalize() {
	if e == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Level == "" {
		e.Level = LevelInfo
	}
	if e.Category == "" {
		e.Category = CategoryCustom
	}
	if e.Attributes == nil {
		e.Attributes = map[string]any{}
	}
}
