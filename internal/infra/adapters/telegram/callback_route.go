// File: internal/infra/adapters/telegram/callback_route.go
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/ports/adapter"
	red "telegram-store-consultant/internal/infra/redis"
)

// Carts, sessions and selections are keyed by the pressing user, replies
// go to the chat the button lives in. The two ids coincide in private
// chats but not in groups.
type cbHandler func(ctx context.Context, userID, chatID int64, data string) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cmd:cart":     r.cartCBRoute,
		"cmd:clear":    r.clearCBRoute,
		"cmd:checkout": r.checkoutCBRoute,
		"car:prev": func(ctx context.Context, userID, chatID int64, _ string) error {
			return r.moveCBRoute(ctx, userID, chatID, -1)
		},
		"car:next": func(ctx context.Context, userID, chatID int64, _ string) error {
			return r.moveCBRoute(ctx, userID, chatID, +1)
		},
		"car:pos":  func(context.Context, int64, int64, string) error { return nil },
		"car:pick": r.pickCBRoute,
	}
}

func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: "col:", Fn: r.colorCBRoute},
		{Prefix: "siz:", Fn: r.sizeCBRoute},
		{Prefix: "qty:", Fn: r.quantityCBRoute},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// stop the telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	userID := query.From.ID
	chatID := userID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	data := strings.TrimSpace(query.Data)

	if r.rateLimiter != nil {
		if allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, "cb"), 30, time.Minute); err == nil && !allowed {
			return r.SendMessage(ctx, chatID, "Слишком много нажатий. Подождите немного.")
		}
	}

	if fn, ok := r.cbRoutes()[data]; ok {
		return fn(ctx, userID, chatID, data)
	}
	for _, pr := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) {
			return pr.Fn(ctx, userID, chatID, data)
		}
	}
	r.log.Warn().Int64("tg_id", userID).Str("data", data).Msg("unknown callback data")
	return nil
}

func (r *RealTelegramBotAdapter) cartCBRoute(ctx context.Context, userID, chatID int64, _ string) error {
	text, err := r.facade.HandleCartView(ctx, userID)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Не удалось показать корзину.")
	}
	return r.sendCartMenu(ctx, chatID, text)
}

func (r *RealTelegramBotAdapter) clearCBRoute(ctx context.Context, userID, chatID int64, _ string) error {
	text, err := r.facade.HandleCartClear(ctx, userID)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Не удалось очистить корзину.")
	}
	return r.SendMessage(ctx, chatID, text)
}

// checkoutCBRoute pushes the checkout intent through the consultant so
// the finalizer drives the dialogue from here.
func (r *RealTelegramBotAdapter) checkoutCBRoute(ctx context.Context, userID, chatID int64, _ string) error {
	reply, err := r.facade.HandleMessage(ctx, userID, "Хочу оформить заказ")
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", userID).Msg("checkout turn failed")
		return r.SendMessage(ctx, chatID, "Извините, произошла ошибка. Попробуйте ещё раз.")
	}
	return r.sendReply(ctx, userID, chatID, reply)
}

func (r *RealTelegramBotAdapter) moveCBRoute(ctx context.Context, userID, chatID int64, delta int) error {
	view, err := r.facade.MoveCarousel(ctx, userID, delta)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, chatID, "Подборка устарела. Опишите ещё раз, что вы ищете.")
		}
		return err
	}
	return r.sendCarouselCard(ctx, chatID, view)
}

func (r *RealTelegramBotAdapter) pickCBRoute(ctx context.Context, userID, chatID int64, _ string) error {
	step, err := r.facade.PickCurrent(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, chatID, "Подборка устарела. Опишите ещё раз, что вы ищете.")
		}
		return err
	}
	return r.sendSelectionStep(ctx, chatID, step)
}

func (r *RealTelegramBotAdapter) colorCBRoute(ctx context.Context, userID, chatID int64, data string) error {
	step, err := r.facade.ChooseColor(ctx, userID, strings.TrimPrefix(data, "col:"))
	if err != nil {
		return r.staleSelection(ctx, chatID, err)
	}
	return r.sendSelectionStep(ctx, chatID, step)
}

func (r *RealTelegramBotAdapter) sizeCBRoute(ctx context.Context, userID, chatID int64, data string) error {
	step, err := r.facade.ChooseSize(ctx, userID, strings.TrimPrefix(data, "siz:"))
	if err != nil {
		return r.staleSelection(ctx, chatID, err)
	}
	return r.sendSelectionStep(ctx, chatID, step)
}

func (r *RealTelegramBotAdapter) quantityCBRoute(ctx context.Context, userID, chatID int64, data string) error {
	qty, err := strconv.Atoi(strings.TrimPrefix(data, "qty:"))
	if err != nil || qty <= 0 {
		return r.SendMessage(ctx, chatID, "Не понял количество, попробуйте ещё раз.")
	}
	step, err := r.facade.SetQuantity(ctx, userID, qty)
	if err != nil {
		return r.staleSelection(ctx, chatID, err)
	}
	return r.sendSelectionStep(ctx, chatID, step)
}

func (r *RealTelegramBotAdapter) staleSelection(ctx context.Context, chatID int64, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return r.SendMessage(ctx, chatID, "Выбор устарел. Откройте товар заново.")
	}
	return err
}

func (r *RealTelegramBotAdapter) sendCartMenu(ctx context.Context, chatID int64, text string) error {
	rows := [][]adapter.InlineButton{
		{{Text: "Оформить заказ", Data: "cmd:checkout"}},
		{{Text: "Очистить корзину", Data: "cmd:clear"}},
	}
	return r.SendButtons(ctx, chatID, text, rows)
}
