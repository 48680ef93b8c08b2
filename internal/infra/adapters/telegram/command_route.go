// File: internal/infra/adapters/telegram/command_route.go
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": r.handleStartCommand,
		"cart":  r.handleCartCommand,
		"clear": r.handleClearCommand,
		"help":  r.handleHelpCommand,
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleStart(ctx, message.From.ID, message.From.FirstName)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("start failed")
		return r.SendMessage(ctx, message.Chat.ID, "Извините, произошла ошибка. Попробуйте ещё раз.")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleCartCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleCartView(ctx, message.From.ID)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("cart view failed")
		return r.SendMessage(ctx, message.Chat.ID, "Не удалось показать корзину.")
	}
	return r.sendCartMenu(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleClearCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleCartClear(ctx, message.From.ID)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("cart clear failed")
		return r.SendMessage(ctx, message.Chat.ID, "Не удалось очистить корзину.")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	const help = "Я AI-консультант магазина.\n\n" +
		"Просто напишите, что вы ищете, — например «что-нибудь тёплое на осень».\n\n" +
		"Команды:\n/cart — корзина\n/clear — очистить корзину\n/help — эта справка"
	return r.SendMessage(ctx, message.Chat.ID, help)
}
