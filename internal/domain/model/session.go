package model

import (
	"time"
)

// Message roles in a consultant conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is one operation the model asked the host to execute.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatMessage is one role-tagged entry of the conversation history.
// ToolCalls is set on assistant messages that requested tools;
// ToolCallID ties a tool-result message back to its request.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// SearchContext tracks an in-progress search refinement: the consultant
// asked for a missing dimension and the next user input is merged into the
// original query before re-querying.
type SearchContext struct {
	OriginalQuery string `json:"original_query"`
	WaitingFor    string `json:"waiting_for,omitempty"` // "size" | "color" | ""
	Size          string `json:"size,omitempty"`
	Color         string `json:"color,omitempty"`
}

// PendingSelection accumulates variant choices while the customer narrows
// a carousel-presented product before it becomes a cart line item.
type PendingSelection struct {
	ProductID int64  `json:"product_id"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

// PendingCheckout remembers answers already given to the order finalizer
// so repeated complete_order calls resume instead of starting over.
type PendingCheckout struct {
	Delivery *bool `json:"delivery,omitempty"`
}

// ConsultantSession is the per-user conversation state. It lives in the
// session store under a TTL and is rehydrated on every turn.
type ConsultantSession struct {
	UserID          int64              `json:"user_id"`
	History         []ChatMessage      `json:"history"`
	SearchContext   *SearchContext     `json:"search_context,omitempty"`
	Selected        *PendingSelection  `json:"selected,omitempty"`
	Checkout        *PendingCheckout   `json:"checkout,omitempty"`
	CurrentProducts []int64            `json:"current_products,omitempty"` // carousel, by position
	CarouselPos     int                `json:"carousel_pos,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewConsultantSession seeds the history with the system prompt.
func NewConsultantSession(userID int64, systemPrompt string) *ConsultantSession {
	now := time.Now()
	s := &ConsultantSession{
		UserID:    userID,
		History:   make([]ChatMessage, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if systemPrompt != "" {
		s.History = append(s.History, ChatMessage{Role: RoleSystem, Content: systemPrompt, Timestamp: now})
	}
	return s
}

func (s *ConsultantSession) Append(msg ChatMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.History = append(s.History, msg)
	s.UpdatedAt = time.Now()
}

func (s *ConsultantSession) AppendText(role, content string) {
	s.Append(ChatMessage{Role: role, Content: content})
}

// SetCarousel records the product list shown to the user, indexed by
// position for navigation callbacks.
func (s *ConsultantSession) SetCarousel(productIDs []int64) {
	s.CurrentProducts = productIDs
	s.CarouselPos = 0
	s.UpdatedAt = time.Now()
}

// TrimToBudget drops the oldest non-system messages until the estimated
// token count fits the budget. The system prompt is always retained, and a
// tool-result message is never left without its requesting assistant
// message (both are dropped together).
func (s *ConsultantSession) TrimToBudget(count func(ChatMessage) int, budget int) {
	if budget <= 0 || len(s.History) == 0 {
		return
	}
	total := 0
	for _, m := range s.History {
		total += count(m)
	}
	start := 0
	if s.History[0].Role == RoleSystem {
		start = 1
	}
	i := start
	for total > budget && i < len(s.History)-1 {
		total -= count(s.History[i])
		i++
		// never strand tool results at the cut point
		for i < len(s.History)-1 && s.History[i].Role == RoleTool {
			total -= count(s.History[i])
			i++
		}
	}
	if i > start {
		trimmed := make([]ChatMessage, 0, len(s.History)-(i-start))
		trimmed = append(trimmed, s.History[:start]...)
		trimmed = append(trimmed, s.History[i:]...)
		s.History = trimmed
	}
}
