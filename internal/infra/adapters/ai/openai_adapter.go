package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"telegram-store-consultant/internal/domain/ports/adapter"
	"telegram-store-consultant/internal/infra/metrics"

	"github.com/pkoukk/tiktoken-go"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter against any endpoint
// speaking the Chat Completions wire format (api.openai.com, Metis-style
// gateways, local proxies). Tool calling and forced JSON-object responses
// are part of that wire contract.
type OpenAIAdapter struct {
	apiKey string
	base   string // e.g., https://api.openai.com/v1
	model  string
	client *http.Client
	enc    *tiktoken.Tiktoken
}

func NewOpenAIAdapter(apiKey, baseURL, model string, timeout time.Duration) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tiktoken encoding: %w", err)
	}
	return &OpenAIAdapter{
		apiKey: apiKey,
		base:   baseURL,
		model:  model,
		client: &http.Client{Timeout: timeout},
		enc:    enc,
	}, nil
}

// ---- wire types ----

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type wireRequest struct {
	Model          string         `json:"model"`
	Messages       []wireMessage  `json:"messages"`
	Tools          []wireTool     `json:"tools,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func toWire(messages []adapter.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wm := wireMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: wireFunction{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		out = append(out, wm)
	}
	return out
}

func (o *OpenAIAdapter) complete(ctx context.Context, req wireRequest) (*wireResponse, error) {
	if req.Model == "" {
		req.Model = o.model
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	start := time.Now()
	resp, err := o.client.Do(httpReq)
	if err != nil {
		metrics.ObserveChatCall(req.Model, 0, 0, time.Since(start), false)
		return nil, err
	}
	defer resp.Body.Close()

	var payload wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.ObserveChatCall(req.Model, 0, 0, time.Since(start), false)
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		metrics.ObserveChatCall(req.Model, 0, 0, time.Since(start), false)
		if payload.Error != nil {
			return nil, fmt.Errorf("chat completion http %d: %s", resp.StatusCode, payload.Error.Message)
		}
		return nil, fmt.Errorf("chat completion http %d", resp.StatusCode)
	}
	if len(payload.Choices) == 0 {
		metrics.ObserveChatCall(req.Model, 0, 0, time.Since(start), false)
		return nil, errors.New("no choices in response")
	}
	metrics.ObserveChatCall(req.Model, payload.Usage.PromptTokens, payload.Usage.CompletionTokens, time.Since(start), true)
	return &payload, nil
}

func (o *OpenAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	resp, err := o.complete(ctx, wireRequest{Model: model, Messages: toWire(messages)})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIAdapter) ChatWithTools(ctx context.Context, model string, messages []adapter.Message, tools []adapter.ToolDef) (adapter.ChatResult, error) {
	req := wireRequest{Model: model, Messages: toWire(messages)}
	for _, t := range tools {
		var wt wireTool
		wt.Type = "function"
		wt.Function.Name = t.Name
		wt.Function.Description = t.Description
		wt.Function.Parameters = t.Parameters
		req.Tools = append(req.Tools, wt)
	}
	resp, err := o.complete(ctx, req)
	if err != nil {
		return adapter.ChatResult{}, err
	}
	msg := resp.Choices[0].Message
	out := adapter.ChatResult{
		Content: msg.Content,
		Usage: adapter.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, adapter.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func (o *OpenAIAdapter) ChatJSON(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	req := wireRequest{
		Model:          model,
		Messages:       toWire(messages),
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	resp, err := o.complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// CountTokens estimates prompt tokens with the cl100k_base encoding.
// A small per-message overhead approximates the chat framing.
func (o *OpenAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += 4 // role + framing
		total += len(o.enc.Encode(m.Content, nil, nil))
		for _, tc := range m.ToolCalls {
			total += len(o.enc.Encode(tc.Arguments, nil, nil))
		}
	}
	return total, nil
}
