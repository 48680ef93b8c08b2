// File: internal/infra/adapters/telegram/noop_bot.go
package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain/ports/adapter"
)

var _ adapter.BotPort = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs outbound messages instead of sending them. Used in
// dev mode and by the reminder worker tests.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(log *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{log: log}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	b.log.Info().Int64("tg_id", tgID).Str("text", text).Msg("noop send")
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	b.log.Info().Int64("tg_id", tgID).Str("text", text).Int("rows", len(rows)).Msg("noop send buttons")
	return nil
}
