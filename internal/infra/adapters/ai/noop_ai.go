package ai

import (
	"context"

	"telegram-store-consultant/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAI)(nil)

// NoopAI is a stand-in for dev wiring: it answers with a fixed line and
// never requests tools.
type NoopAI struct{}

func NewNoopAI() *NoopAI { return &NoopAI{} }

func (n *NoopAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return "noop", nil
}

func (n *NoopAI) ChatWithTools(ctx context.Context, model string, messages []adapter.Message, tools []adapter.ToolDef) (adapter.ChatResult, error) {
	return adapter.ChatResult{Content: "noop"}, nil
}

func (n *NoopAI) ChatJSON(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return "{}", nil
}

func (n *NoopAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total, nil
}
