// File: internal/infra/adapters/telegram/real_bot.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/application"
	"telegram-store-consultant/internal/config"
	"telegram-store-consultant/internal/domain/ports/adapter"
	red "telegram-store-consultant/internal/infra/redis"
	"telegram-store-consultant/internal/infra/worker"
	"telegram-store-consultant/internal/usecase"
)

var _ adapter.BotPort = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter polls updates with tgbotapi, fans them out over
// the worker pool and delegates every intent to the facade.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      application.StoreBotService
	rateLimiter *red.RateLimiter
	pool        *worker.Pool
	log         *zerolog.Logger

	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade application.StoreBotService,
	rateLimiter *red.RateLimiter,
	pool *worker.Pool,
	log *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:         bot,
		cfg:         cfg,
		facade:      facade,
		rateLimiter: rateLimiter,
		pool:        pool,
		log:         log,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up := <-updates:
			if err := r.pool.Submit(func(taskCtx context.Context) error {
				return r.handleUpdate(taskCtx, up)
			}); err != nil {
				r.log.Warn().Err(err).Msg("update dropped")
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(tgID, text)
	msg.ReplyMarkup = buildKeyboard(rows)
	_, err := r.bot.Send(msg)
	return err
}

func buildKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kb := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, kb)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	msg := update.Message
	tgID := msg.From.ID

	command := "message"
	if msg.IsCommand() {
		command = "/" + msg.Command()
	}
	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), 20, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Int64("tg_id", tgID).Msg("rate limit check failed")
		} else if !allowed {
			return r.SendMessage(ctx, tgID, "Слишком много сообщений. Подождите немного и попробуйте снова.")
		}
	}

	if msg.IsCommand() {
		if fn, ok := r.commandRoutes()[msg.Command()]; ok {
			return fn(ctx, msg)
		}
		return r.SendMessage(ctx, msg.Chat.ID, "Не знаю такую команду. Попробуйте /help.")
	}

	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	reply, err := r.facade.HandleMessage(ctx, tgID, msg.Text)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", tgID).Msg("consultant turn failed")
		return r.SendMessage(ctx, msg.Chat.ID, "Извините, произошла ошибка. Попробуйте ещё раз.")
	}
	return r.sendReply(ctx, tgID, msg.Chat.ID, reply)
}

// sendReply renders one consultant turn: plain text, text with an
// attached photo, or the first card of a product carousel. State reads
// are keyed by the user, output goes to the chat.
func (r *RealTelegramBotAdapter) sendReply(ctx context.Context, userID, chatID int64, reply *usecase.ConsultantReply) error {
	if len(reply.Products) > 0 {
		if reply.Text != "" {
			if err := r.SendMessage(ctx, chatID, reply.Text); err != nil {
				return err
			}
		}
		view, err := r.facade.CurrentCarousel(ctx, userID)
		if err != nil {
			r.log.Error().Err(err).Int64("tg_id", userID).Msg("carousel render failed")
			return nil
		}
		return r.sendCarouselCard(ctx, chatID, view)
	}

	if reply.Photo != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(reply.Photo))
		photo.Caption = reply.Text
		if _, err := r.bot.Send(photo); err != nil {
			// Stale file id: fall back to text so the turn still answers.
			r.log.Warn().Err(err).Int64("tg_id", chatID).Msg("photo send failed")
			return r.SendMessage(ctx, chatID, reply.Text)
		}
		return nil
	}

	if reply.Text == "" {
		return nil
	}
	return r.SendMessage(ctx, chatID, reply.Text)
}

func (r *RealTelegramBotAdapter) sendCarouselCard(ctx context.Context, chatID int64, view *application.CarouselView) error {
	p := view.Product

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s — %.0f руб.\n", p.Name, p.Price)
	if p.Description != "" {
		sb.WriteString(p.Description + "\n")
	}
	if p.HasColors() {
		fmt.Fprintf(&sb, "Цвета: %s\n", strings.Join(p.ColorNames(), ", "))
	}
	if p.HasSizes() {
		fmt.Fprintf(&sb, "Размеры: %s\n", strings.Join(p.SizeValues(), ", "))
	}

	markup := buildKeyboard([][]adapter.InlineButton{
		{
			{Text: "◀️", Data: "car:prev"},
			{Text: fmt.Sprintf("%d/%d", view.Pos+1, view.Total), Data: "car:pos"},
			{Text: "▶️", Data: "car:next"},
		},
		{{Text: "🛒 Выбрать", Data: "car:pick"}},
		{{Text: "Корзина", Data: "cmd:cart"}},
	})

	if len(p.Photos) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(p.Photos[0]))
		photo.Caption = sb.String()
		photo.ReplyMarkup = markup
		if _, err := r.bot.Send(photo); err == nil {
			return nil
		}
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = markup
	_, err := r.bot.Send(msg)
	return err
}

// sendSelectionStep renders the next variant prompt, or the confirmation
// once the item is in the cart.
func (r *RealTelegramBotAdapter) sendSelectionStep(ctx context.Context, chatID int64, step *application.SelectionStep) error {
	if step.Done {
		return r.SendButtons(ctx, chatID, step.Text, [][]adapter.InlineButton{
			{{Text: "Корзина", Data: "cmd:cart"}, {Text: "Оформить заказ", Data: "cmd:checkout"}},
		})
	}

	prefix := map[string]string{"color": "col:", "size": "siz:", "quantity": "qty:"}[step.Field]
	rows := make([][]adapter.InlineButton, 0, len(step.Options))
	for _, opt := range step.Options {
		rows = append(rows, []adapter.InlineButton{{Text: opt, Data: prefix + opt}})
	}
	return r.SendButtons(ctx, chatID, step.Prompt, rows)
}
