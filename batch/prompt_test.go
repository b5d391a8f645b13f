package batch

import (
	"strings"
	"testing"

	"github.com/arbiterhq/arbiter-go/types"
)

func TestJudgeMessages(t *testing.T) {
	t.Parallel()

	spec := BatchSpec{
		Prompt:            "write a haiku",
		Criteria:          []types.Criterion{{ID: "c1", Criteria: "is a haiku"}},
		JudgeSystemPrompt: "You are a strict grader.",
	}
	messages := judgeMessages(spec, "candidate text")
	if len(messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(messages))
	}
	if messages[0].Role != types.RoleSystem || messages[0].Content != "You are a strict grader." {
		t.Fatalf("system prompt not forwarded verbatim: %+v", messages[0])
	}

	user := messages[1].Content
	for _, want := range []string{"[Task]:", "write a haiku", "[Criteria]:", `"c1"`, "is a haiku", "[Candidate Answer]:", "candidate text"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestJudgeMessagesWithoutSystemPrompt(t *testing.T) {
	t.Parallel()

	messages := judgeMessages(BatchSpec{Prompt: "p"}, "answer")
	if len(messages) != 1 {
		t.Fatalf("expected only the user message, got %d", len(messages))
	}
	if messages[0].Role != types.RoleUser {
		t.Fatalf("expected user role, got %s", messages[0].Role)
	}
}
