package adapter

import "context"

// InlineButton is a transport-agnostic inline keyboard button.
// If URL is set the button opens a link, otherwise Data is sent back as
// callback data.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// BotPort is the narrow outbound surface the core and background workers
// use to reach the customer. The full transport (polling, callbacks,
// carousels) lives in the infra layer.
type BotPort interface {
	SendMessage(ctx context.Context, tgID int64, text string) error
	SendButtons(ctx context.Context, tgID int64, text string, rows [][]InlineButton) error
}
