// File: internal/usecase/cart_uc_test.go
package usecase

import (
	"context"
	"strings"
	"testing"
)

func TestAddToCartNeedsDetails(t *testing.T) {
	carts := newMemCartStore()
	uc := NewCartUseCase(newMemCatalogRepo(sampleJacket()), carts)

	res, err := uc.AddToCart(context.Background(), 10, "Куртка осенняя", 0, "", "")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	want := []string{"quantity", "color", "size"}
	if len(res.NeedsDetails) != len(want) {
		t.Fatalf("needs_details = %v, want %v", res.NeedsDetails, want)
	}
	for i, f := range want {
		if res.NeedsDetails[i] != f {
			t.Fatalf("needs_details[%d] = %q, want %q", i, res.NeedsDetails[i], f)
		}
	}
	if len(res.AvailableColors) != 2 || len(res.AvailableSizes) != 2 {
		t.Fatalf("option lists not reported: colors=%v sizes=%v", res.AvailableColors, res.AvailableSizes)
	}

	// nothing may be stored until the gate passes
	cart, _ := carts.Get(context.Background(), 10)
	if !cart.IsEmpty() {
		t.Fatalf("cart mutated by incomplete add: %+v", cart.Items)
	}
}

func TestAddToCartInvalidColorListsOptions(t *testing.T) {
	uc := NewCartUseCase(newMemCatalogRepo(sampleJacket()), newMemCartStore())

	res, err := uc.AddToCart(context.Background(), 10, "Куртка осенняя", 1, "Зелёный", "42")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if res.Error == "" || !strings.Contains(res.Error, "Чёрный") || !strings.Contains(res.Error, "Синий") {
		t.Fatalf("error should name valid colors, got %q", res.Error)
	}
	if res.Added != nil {
		t.Fatal("item must not be added on invalid color")
	}
}

func TestAddToCartVariantOnProductWithoutVariants(t *testing.T) {
	uc := NewCartUseCase(newMemCatalogRepo(sampleScarf()), newMemCartStore())

	res, err := uc.AddToCart(context.Background(), 10, "Шарф", 1, "Чёрный", "")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if res.Error == "" {
		t.Fatal("expected error for color on colorless product")
	}
}

func TestAddToCartSuccess(t *testing.T) {
	carts := newMemCartStore()
	uc := NewCartUseCase(newMemCatalogRepo(sampleJacket(), sampleScarf()), carts)

	res, err := uc.AddToCart(context.Background(), 10, "Куртка осенняя", 2, "чёрный", "42")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if res.Added == nil {
		t.Fatalf("expected added item, got %+v", res)
	}
	// case-insensitive resolution keeps the canonical name
	if res.Added.Color != "Чёрный" {
		t.Fatalf("color = %q, want canonical %q", res.Added.Color, "Чёрный")
	}
	if res.Added.Total != 200 {
		t.Fatalf("total = %v, want 200", res.Added.Total)
	}
	if res.CartCount != 1 || res.CartTotal != 200 {
		t.Fatalf("cart count/total = %d/%v", res.CartCount, res.CartTotal)
	}

	// a product without variants needs only quantity
	res, err = uc.AddToCart(context.Background(), 10, "Шарф", 1, "", "")
	if err != nil {
		t.Fatalf("AddToCart scarf: %v", err)
	}
	if res.Added == nil || res.CartCount != 2 || res.CartTotal != 220 {
		t.Fatalf("scarf add failed: %+v", res)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	uc := NewCartUseCase(newMemCatalogRepo(), newMemCartStore())

	res, err := uc.AddToCart(context.Background(), 10, "Пальто", 1, "", "")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if res.Error != "Товар не найден" {
		t.Fatalf("error = %q, want %q", res.Error, "Товар не найден")
	}
}

func TestCartViewAndClear(t *testing.T) {
	carts := newMemCartStore()
	uc := NewCartUseCase(newMemCatalogRepo(sampleScarf()), carts)
	ctx := context.Background()

	if _, err := uc.AddToCart(ctx, 10, "Шарф", 3, "", ""); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	sum, err := uc.View(ctx, 10)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(sum.Items) != 1 || sum.TotalAmount != 60 {
		t.Fatalf("summary = %+v", sum)
	}

	if err := uc.Clear(ctx, 10); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	sum, _ = uc.View(ctx, 10)
	if len(sum.Items) != 0 {
		t.Fatalf("cart not cleared: %+v", sum.Items)
	}
}
