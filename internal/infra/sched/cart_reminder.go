// File: internal/infra/sched/cart_reminder.go
package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain/ports/adapter"
	"telegram-store-consultant/internal/domain/ports/repository"
	"telegram-store-consultant/internal/infra/metrics"
)

// CartReminderWorker nudges customers who filled a cart and went quiet.
// Each cart is reminded at most once; adding another item re-arms it.
type CartReminderWorker struct {
	interval time.Duration
	after    time.Duration
	carts    repository.CartStore
	bot      adapter.BotPort
	log      *zerolog.Logger
}

func NewCartReminderWorker(
	interval, after time.Duration,
	carts repository.CartStore,
	bot adapter.BotPort,
	logger *zerolog.Logger,
) *CartReminderWorker {
	compLog := logger.With().Str("component", "CartReminderWorker").Logger()
	return &CartReminderWorker{
		interval: interval,
		after:    after,
		carts:    carts,
		bot:      bot,
		log:      &compLog,
	}
}

func (w *CartReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("after", w.after).Msg("starting cart reminder worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping cart reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.runScan(ctx)
		}
	}
}

func (w *CartReminderWorker) runScan(ctx context.Context) {
	carts, err := w.carts.ListIdle(ctx, w.after, 50)
	if err != nil {
		w.log.Error().Err(err).Msg("idle cart scan failed")
		return
	}
	for _, cart := range carts {
		text := fmt.Sprintf(
			"Вы отложили %d товар(а) на сумму %.0f руб. Они всё ещё ждут вас в корзине! Напишите мне, если хотите оформить заказ.",
			len(cart.Items), cart.TotalAmount())
		if err := w.bot.SendMessage(ctx, cart.UserID, text); err != nil {
			w.log.Warn().Err(err).Int64("tg_id", cart.UserID).Msg("reminder send failed")
			continue
		}
		cart.RemindedAt = time.Now()
		if err := w.carts.Save(ctx, cart); err != nil {
			w.log.Error().Err(err).Int64("tg_id", cart.UserID).Msg("reminder mark failed")
			continue
		}
		metrics.CartReminderSent()
	}
}
