// File: internal/usecase/tools_test.go
package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/adapter"
)

func newRegistryEnv(ai *scriptedAI) (*ToolRegistry, *model.ConsultantSession) {
	log := testLogger()
	catalog := newMemCatalogRepo(sampleJacket(), sampleSweater(), sampleScarf())
	carts := newMemCartStore()
	checkoutUC := NewCheckoutUseCase(carts, newMemProfileRepo(), newMemOrderRepo(), &fakeTxManager{}, log)
	registry := NewToolRegistry(
		NewCatalogUseCase(catalog),
		NewCartUseCase(catalog, carts),
		NewProfileUseCase(newMemProfileRepo()),
		NewSearchUseCase(catalog, ai, "gpt-4o-mini", log),
		checkoutUC,
		log,
	)
	return registry, model.NewConsultantSession(10, "")
}

func TestDefsRegistrationOrder(t *testing.T) {
	registry, _ := newRegistryEnv(&scriptedAI{})

	want := []string{
		"get_products",
		"get_product_details",
		"filter_products",
		"get_related_products",
		"add_to_cart",
		"get_user_info",
		"update_user_info",
		"complete_order",
		"verify_user_data",
	}
	defs := registry.Defs()
	if len(defs) != len(want) {
		t.Fatalf("defs = %d, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Fatalf("defs[%d] = %q, want %q", i, defs[i].Name, name)
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	registry, sess := newRegistryEnv(&scriptedAI{})

	payload, effect := registry.Dispatch(context.Background(), sess, adapter.ToolCall{ID: "c1", Name: "launch_rocket"})
	if effect != nil {
		t.Fatalf("effect = %+v", effect)
	}
	if !strings.Contains(payload, "неизвестный инструмент") {
		t.Fatalf("payload = %s", payload)
	}
}

func TestDispatchBadArgumentsPayload(t *testing.T) {
	registry, sess := newRegistryEnv(&scriptedAI{})

	payload, effect := registry.Dispatch(context.Background(), sess, adapter.ToolCall{
		ID: "c1", Name: "get_product_details", Arguments: `{"name":`,
	})
	if effect != nil {
		t.Fatalf("effect = %+v", effect)
	}
	if !strings.Contains(payload, "некорректные аргументы") {
		t.Fatalf("payload = %s", payload)
	}
}

func TestDispatchEmptyArgumentsDefaultsToObject(t *testing.T) {
	registry, sess := newRegistryEnv(&scriptedAI{})

	payload, _ := registry.Dispatch(context.Background(), sess, adapter.ToolCall{ID: "c1", Name: "get_products"})
	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v\n%s", err, payload)
	}
	if _, ok := decoded["error"]; ok {
		t.Fatalf("unexpected error payload: %s", payload)
	}
}

func TestDispatchProductDetailsPhotoEffect(t *testing.T) {
	registry, sess := newRegistryEnv(&scriptedAI{})

	payload, effect := registry.Dispatch(context.Background(), sess, adapter.ToolCall{
		ID: "c1", Name: "get_product_details", Arguments: `{"name":"Куртка осенняя"}`,
	})
	if effect == nil || effect.Photo != "photo-jacket-1" {
		t.Fatalf("effect = %+v", effect)
	}
	if !strings.Contains(payload, "Куртка осенняя") {
		t.Fatalf("payload = %s", payload)
	}

	// a missing product carries no photo effect
	_, effect = registry.Dispatch(context.Background(), sess, adapter.ToolCall{
		ID: "c2", Name: "get_product_details", Arguments: `{"name":"Пальто"}`,
	})
	if effect != nil {
		t.Fatalf("effect for missing product = %+v", effect)
	}
}

func TestDispatchFilterClarificationEffect(t *testing.T) {
	ai := &scriptedAI{jsonReplies: []string{
		`{"exact":[{"id":1,"reason":"куртка"},{"id":2,"reason":"свитер"}]}`,
	}}
	registry, sess := newRegistryEnv(ai)

	_, effect := registry.Dispatch(context.Background(), sess, adapter.ToolCall{
		ID: "c1", Name: "filter_products", Arguments: `{"query":"что-нибудь тёплое"}`,
	})
	if effect == nil || effect.Clarification == "" {
		t.Fatalf("effect = %+v, want clarification", effect)
	}
	if effect.Carousel != nil {
		t.Fatal("clarification must not carry a carousel")
	}
}

func TestDispatchFilterCarouselEffect(t *testing.T) {
	ai := &scriptedAI{jsonReplies: []string{
		`{"exact":[{"id":1,"reason":"подходит"}]}`,
	}}
	registry, sess := newRegistryEnv(ai)

	_, effect := registry.Dispatch(context.Background(), sess, adapter.ToolCall{
		ID: "c1", Name: "filter_products", Arguments: `{"query":"куртка размер 42 цвет чёрный"}`,
	})
	if effect == nil || len(effect.Carousel) != 1 || effect.Carousel[0].ID != 1 {
		t.Fatalf("effect = %+v", effect)
	}
	if effect.NoExactMatch {
		t.Fatal("exact matches flagged as no-exact-match")
	}
}

func TestDispatchFilterAlternativesEffect(t *testing.T) {
	ai := &scriptedAI{jsonReplies: []string{
		`{"exact":[],"alternatives":[{"id":2,"reason":"похоже"}],"subcategory":"Свитеры"}`,
	}}
	registry, sess := newRegistryEnv(ai)

	_, effect := registry.Dispatch(context.Background(), sess, adapter.ToolCall{
		ID: "c1", Name: "filter_products", Arguments: `{"query":"пуховик"}`,
	})
	if effect == nil || !effect.NoExactMatch {
		t.Fatalf("effect = %+v, want alternatives carousel", effect)
	}
	if len(effect.Carousel) != 1 || effect.Carousel[0].ID != 2 {
		t.Fatalf("carousel = %+v", effect.Carousel)
	}
}

func TestDispatchToolFailureBecomesErrorPayload(t *testing.T) {
	ai := &scriptedAI{jsonErr: context.DeadlineExceeded}
	registry, sess := newRegistryEnv(ai)

	payload, effect := registry.Dispatch(context.Background(), sess, adapter.ToolCall{
		ID: "c1", Name: "filter_products", Arguments: `{"query":"куртка"}`,
	})
	if effect != nil {
		t.Fatalf("effect = %+v", effect)
	}
	if !strings.Contains(payload, "Извините, произошла ошибка") {
		t.Fatalf("payload = %s", payload)
	}
}
