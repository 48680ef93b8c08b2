package adapter

import "context"

// Message is one wire-format chat message sent to the language model.
type Message struct {
	Role       string     `json:"role"` // "system" | "user" | "assistant" | "tool"
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a structured request from the model naming one registered
// operation; Arguments is the raw JSON-encoded argument object.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef describes one callable operation offered to the model.
// Parameters is a JSON-schema object.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Usage for a single chat call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResult is one assistant turn: either text, tool-call requests, or both.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// AIServiceAdapter is the port for LLM chat completion. The consultant
// depends only on this contract, not on any specific vendor.
type AIServiceAdapter interface {
	// Chat returns only the assistant text.
	Chat(ctx context.Context, model string, messages []Message) (string, error)

	// ChatWithTools offers the tool schema list and returns any tool-call
	// requests alongside the assistant text.
	ChatWithTools(ctx context.Context, model string, messages []Message, tools []ToolDef) (ChatResult, error)

	// ChatJSON forces a JSON-object response.
	ChatJSON(ctx context.Context, model string, messages []Message) (string, error)

	// CountTokens returns prompt tokens for the provided messages
	// (best-effort when exact counting is not available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)
}
