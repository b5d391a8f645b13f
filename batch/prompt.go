package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arbiterhq/arbiter-go/types"
)

// judgeMessages assembles the judge request: the externally supplied system
// prompt verbatim, then one user message carrying the original task, the
// criteria, and the candidate answer. Criteria text is forwarded untouched;
// only the ids matter to the engine when reconciling the grading basis.
func judgeMessages(spec BatchSpec, answer string) []types.Message {
	messages := make([]types.Message, 0, 2)
	if strings.TrimSpace(spec.JudgeSystemPrompt) != "" {
		messages = append(messages, types.Message{Role: types.RoleSystem, Content: spec.JudgeSystemPrompt})
	}
	messages = append(messages, types.Message{Role: types.RoleUser, Content: judgeUserPrompt(spec, answer)})
	return messages
}

func judgeUserPrompt(spec BatchSpec, answer string) string {
	var b strings.Builder
	b.WriteString("[Task]:\n")
	b.WriteString(spec.Prompt)
	b.WriteString("\n\n[Criteria]:\n")
	if encoded, err := json.Marshal(spec.Criteria); err == nil {
		b.Write(encoded)
	} else {
		for _, c := range spec.Criteria {
			fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Criteria)
		}
	}
	b.WriteString("\n\n[Candidate Answer]:\n")
	b.WriteString(answer)
	return b.String()
}
