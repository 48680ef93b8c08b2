// File: internal/usecase/consultant_uc_test.go
package usecase

import (
	"context"
	"testing"
	"time"

	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/adapter"
)

type consultantEnv struct {
	uc       *consultantUC
	ai       *scriptedAI
	sessions *memSessionStore
	carts    *memCartStore
	locker   *fakeLocker
	orders   *memOrderRepo
}

func newConsultantEnv(ai *scriptedAI) *consultantEnv {
	log := testLogger()
	catalog := newMemCatalogRepo(sampleJacket(), sampleSweater(), sampleScarf())
	carts := newMemCartStore()
	profiles := newMemProfileRepo()
	orders := newMemOrderRepo()
	sessions := newMemSessionStore()
	locker := newFakeLocker()

	catalogUC := NewCatalogUseCase(catalog)
	cartUC := NewCartUseCase(catalog, carts)
	profileUC := NewProfileUseCase(profiles)
	searchUC := NewSearchUseCase(catalog, ai, "gpt-4o-mini", log)
	checkoutUC := NewCheckoutUseCase(carts, profiles, orders, &fakeTxManager{}, log)
	checkoutUC.newGroupID = func() string { return "G1" }
	registry := NewToolRegistry(catalogUC, cartUC, profileUC, searchUC, checkoutUC, log)

	uc := NewConsultantUseCase(sessions, ai, registry, locker, "gpt-4o-mini", 6000, time.Minute, log)
	return &consultantEnv{uc: uc, ai: ai, sessions: sessions, carts: carts, locker: locker, orders: orders}
}

func toolCall(id, name, args string) adapter.ToolCall {
	return adapter.ToolCall{ID: id, Name: name, Arguments: args}
}

func TestHandleMessagePlainText(t *testing.T) {
	ai := &scriptedAI{toolResults: []adapter.ChatResult{{Content: "Здравствуйте! Чем помочь?"}}}
	env := newConsultantEnv(ai)

	reply, err := env.uc.HandleMessage(context.Background(), 10, "привет")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply.Text != "Здравствуйте! Чем помочь?" {
		t.Fatalf("reply = %+v", reply)
	}

	sess, err := env.sessions.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("session missing: %v", err)
	}
	if sess.History[0].Role != model.RoleSystem {
		t.Fatal("system prompt not seeded")
	}
	// system, user, assistant
	if len(sess.History) != 3 {
		t.Fatalf("history length = %d", len(sess.History))
	}
}

func TestHandleMessageBusy(t *testing.T) {
	ai := &scriptedAI{}
	env := newConsultantEnv(ai)
	_, _ = env.locker.TryLock(context.Background(), "consultant_turn:10", time.Minute)

	reply, err := env.uc.HandleMessage(context.Background(), 10, "привет")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply.Text != "Секундочку, я ещё обрабатываю ваше предыдущее сообщение." {
		t.Fatalf("reply = %q", reply.Text)
	}
	if _, err := env.sessions.Get(context.Background(), 10); err == nil {
		t.Fatal("busy turn must not touch the session")
	}
}

func TestHandleMessageToolThenNarration(t *testing.T) {
	ai := &scriptedAI{
		toolResults: []adapter.ChatResult{{
			ToolCalls: []adapter.ToolCall{toolCall("c1", "get_product_details", `{"name":"Куртка осенняя"}`)},
		}},
		chatReplies: []string{"Это отличная осенняя куртка за 100 руб."},
	}
	env := newConsultantEnv(ai)

	reply, err := env.uc.HandleMessage(context.Background(), 10, "расскажи про куртку")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply.Text != "Это отличная осенняя куртка за 100 руб." {
		t.Fatalf("text = %q", reply.Text)
	}
	if reply.Photo != "photo-jacket-1" {
		t.Fatalf("photo = %q", reply.Photo)
	}

	sess, _ := env.sessions.Get(context.Background(), 10)
	// system, user, assistant(tool call), tool result, assistant narration
	roles := []string{model.RoleSystem, model.RoleUser, model.RoleAssistant, model.RoleTool, model.RoleAssistant}
	if len(sess.History) != len(roles) {
		t.Fatalf("history = %d entries", len(sess.History))
	}
	for i, want := range roles {
		if sess.History[i].Role != want {
			t.Fatalf("history[%d].Role = %s, want %s", i, sess.History[i].Role, want)
		}
	}
	if sess.History[3].ToolCallID != "c1" {
		t.Fatalf("tool result not tied to call: %+v", sess.History[3])
	}
}

func TestHandleMessageClarificationShortCircuits(t *testing.T) {
	ai := &scriptedAI{
		toolResults: []adapter.ChatResult{{
			ToolCalls: []adapter.ToolCall{toolCall("c1", "filter_products", `{"query":"что-нибудь тёплое"}`)},
		}},
		jsonReplies: []string{`{"exact":[{"id":1,"reason":"куртка"},{"id":2,"reason":"свитер"}]}`},
	}
	env := newConsultantEnv(ai)

	reply, err := env.uc.HandleMessage(context.Background(), 10, "посоветуй что-нибудь тёплое")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !reply.Clarification {
		t.Fatalf("reply = %+v, want clarification", reply)
	}
	if ai.lastChatMessages != nil {
		t.Fatal("clarification must suppress the narration call")
	}

	sess, _ := env.sessions.Get(context.Background(), 10)
	if sess.SearchContext == nil || sess.SearchContext.WaitingFor != "size" {
		t.Fatalf("search context = %+v", sess.SearchContext)
	}
}

func TestHandleMessageCarousel(t *testing.T) {
	ai := &scriptedAI{
		toolResults: []adapter.ChatResult{{
			ToolCalls: []adapter.ToolCall{toolCall("c1", "filter_products", `{"query":"куртка размер 42 цвет чёрный"}`)},
		}},
		jsonReplies: []string{`{"exact":[{"id":1,"reason":"подходит"}]}`},
		chatReplies: []string{"Шарф"}, // related products lookup
	}
	env := newConsultantEnv(ai)

	reply, err := env.uc.HandleMessage(context.Background(), 10, "нужна куртка, размер 42, цвет чёрный")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(reply.Products) != 1 || reply.Products[0].ID != 1 {
		t.Fatalf("products = %+v", reply.Products)
	}
	if reply.NoExactMatch {
		t.Fatal("unexpected no-exact-match flag")
	}

	sess, _ := env.sessions.Get(context.Background(), 10)
	if len(sess.CurrentProducts) != 1 || sess.CurrentProducts[0] != 1 || sess.CarouselPos != 0 {
		t.Fatalf("carousel state = %v pos=%d", sess.CurrentProducts, sess.CarouselPos)
	}
}

func TestHandleMessageModelFailureApologizes(t *testing.T) {
	ai := &scriptedAI{toolsErr: context.DeadlineExceeded}
	env := newConsultantEnv(ai)

	reply, err := env.uc.HandleMessage(context.Background(), 10, "привет")
	if err != nil {
		t.Fatalf("HandleMessage must degrade, got %v", err)
	}
	if reply.Text != "Извините, произошла ошибка. Попробуйте ещё раз." {
		t.Fatalf("reply = %q", reply.Text)
	}

	// user message still lands in the saved session
	sess, err := env.sessions.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("session not saved: %v", err)
	}
	last := sess.History[len(sess.History)-1]
	if last.Role != model.RoleUser || last.Content != "привет" {
		t.Fatalf("last history entry = %+v", last)
	}
}

func TestHandleMessageOrderedToolCalls(t *testing.T) {
	delivery := `{"delivery":true,"full_name":"Иванов Иван","phone":"+79990001122","address":"Москва"}`
	ai := &scriptedAI{
		toolResults: []adapter.ChatResult{{
			ToolCalls: []adapter.ToolCall{
				toolCall("c1", "add_to_cart", `{"name":"Шарф","quantity":1}`),
				toolCall("c2", "complete_order", delivery),
			},
		}},
		chatReplies: []string{"Заказ оформлен!"},
	}
	env := newConsultantEnv(ai)

	reply, err := env.uc.HandleMessage(context.Background(), 10, "шарф, 1 штуку, и сразу оформи доставку")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply.Text != "Заказ оформлен!" {
		t.Fatalf("reply = %q", reply.Text)
	}

	// complete_order ran after add_to_cart, so it saw a non-empty cart
	if len(env.orders.groups) != 1 || env.orders.groups[0].TotalAmount != 20 {
		t.Fatalf("orders = %+v", env.orders.groups)
	}
	cart, _ := env.carts.Get(context.Background(), 10)
	if !cart.IsEmpty() {
		t.Fatal("cart not cleared after persisted order")
	}
}

func TestReset(t *testing.T) {
	ai := &scriptedAI{toolResults: []adapter.ChatResult{{Content: "ок"}}}
	env := newConsultantEnv(ai)
	ctx := context.Background()

	if _, err := env.uc.HandleMessage(ctx, 10, "привет"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if err := env.uc.Reset(ctx, 10); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := env.sessions.Get(ctx, 10); err == nil {
		t.Fatal("session survived reset")
	}
}
