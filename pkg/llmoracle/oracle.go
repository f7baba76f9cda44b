// Package llmoracle provides Eidetic's provider-agnostic, JSON-returning
// chat call: the single operation every agent (Designer, Analyst,
// Synthesizer) uses to talk to an LLM.
package llmoracle

import "context"

// Conversation message roles, grounded on the teacher's agent.ConversationMessage role set.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in the conversation sent to the oracle.
type Message struct {
	Role    string
	Content string
}

// ResponseFormat selects whether the oracle should parse the completion as
// strict JSON or return it verbatim.
type ResponseFormat string

const (
	FormatJSON ResponseFormat = "json"
	FormatText ResponseFormat = "text"
)

// ChatRequest is the single call shape every agent builds.
type ChatRequest struct {
	Messages       []Message
	Temperature    float64
	MaxTokens      int
	ResponseFormat ResponseFormat
}

// Oracle is the narrow surface every agent depends on — no hidden state,
// every call independent (spec.md §4.2).
type Oracle interface {
	// ChatJSON sends req and returns the parsed JSON object. It guarantees a
	// parsed object or returns *LLMFormatError after exhausting the retry
	// budget (spec.md §4.2: at least 3 attempts). Transport/rate errors
	// surface immediately as *LLMUnavailableError.
	ChatJSON(ctx context.Context, req ChatRequest) (map[string]any, error)

	// ChatText sends req and returns the raw completion text, for callers
	// (pkg/synth) that want free-form Markdown rather than JSON.
	ChatText(ctx context.Context, req ChatRequest) (string, error)
}
