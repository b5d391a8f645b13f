package gateway

import "github.com/arbiterhq/arbiter-go/types"

// Wire event types for the shared streaming channel. A request is opened by
// one outbound generate event and closed by exactly one terminal inbound
// event (complete or error), with zero or more chunk events in between.
const (
	EventGenerate             = "generate"
	EventGenerateWithMessages = "generate-with-messages"
	EventChunk                = "chunk"
	EventComplete             = "complete"
	EventError                = "error"
)

type OutboundEvent struct {
	Type     string          `json:"type"`
	ID       string          `json:"id"`
	Prompt   string          `json:"prompt,omitempty"`
	Messages []types.Message `json:"messages,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type InboundEvent struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Chunk     string `json:"chunk,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Response  string `json:"response,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Payload is either a single prompt string or an ordered message list.
// Messages wins when both are set.
type Payload struct {
	Prompt   string
	Messages []types.Message
}

func PromptPayload(prompt string) Payload {
	return Payload{Prompt: prompt}
}

func MessagesPayload(messages ...types.Message) Payload {
	return Payload{Messages: messages}
}

// Result is the settled output of one generation request.
type Result struct {
	Text      string
	Reasoning string
}
