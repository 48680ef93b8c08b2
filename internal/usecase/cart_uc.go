// File: internal/usecase/cart_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
)

var _ CartUseCase = (*cartUC)(nil)

// CartUseCase manages the per-user pending cart.
type CartUseCase interface {
	// AddToCart runs the variant gate: quantity must be positive, and
	// color/size must each be resolvable against the product or absent
	// from it entirely. All checks pass before the cart is touched;
	// a partial line item is never stored.
	AddToCart(ctx context.Context, userID int64, productName string, quantity int, color, size string) (*AddToCartResult, error)

	View(ctx context.Context, userID int64) (*CartSummary, error)

	Clear(ctx context.Context, userID int64) error
}

type cartUC struct {
	catalog repository.CatalogRepository
	carts   repository.CartStore
}

func NewCartUseCase(catalog repository.CatalogRepository, carts repository.CartStore) *cartUC {
	return &cartUC{catalog: catalog, carts: carts}
}

func (u *cartUC) AddToCart(ctx context.Context, userID int64, productName string, quantity int, color, size string) (*AddToCartResult, error) {
	p, err := u.catalog.FindByName(ctx, nil, productName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &AddToCartResult{Error: msgProductNotFound}, nil
		}
		return nil, err
	}

	color = strings.TrimSpace(color)
	size = strings.TrimSpace(size)

	res := &AddToCartResult{}
	var needs []string
	if quantity <= 0 {
		needs = append(needs, "quantity")
	}

	var pickedColor model.Color
	switch {
	case !p.HasColors():
		if color != "" {
			res.Error = fmt.Sprintf("У товара «%s» нет вариантов цвета", p.Name)
			return res, nil
		}
	case color == "":
		needs = append(needs, "color")
		res.AvailableColors = p.ColorNames()
	default:
		c, ok := p.FindColor(color)
		if !ok {
			res.Error = fmt.Sprintf("Цвета «%s» нет. Доступные цвета: %s", color, strings.Join(p.ColorNames(), ", "))
			res.AvailableColors = p.ColorNames()
			return res, nil
		}
		pickedColor = c
	}

	var pickedSize model.Size
	switch {
	case !p.HasSizes():
		if size != "" {
			res.Error = fmt.Sprintf("У товара «%s» нет вариантов размера", p.Name)
			return res, nil
		}
	case size == "":
		needs = append(needs, "size")
		res.AvailableSizes = p.SizeValues()
	default:
		s, ok := p.FindSize(size)
		if !ok {
			res.Error = fmt.Sprintf("Размера «%s» нет. Доступные размеры: %s", size, strings.Join(p.SizeValues(), ", "))
			res.AvailableSizes = p.SizeValues()
			return res, nil
		}
		pickedSize = s
	}

	if len(needs) > 0 {
		res.NeedsDetails = needs
		return res, nil
	}

	cart, err := u.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := model.NewCartItem(p, quantity, pickedColor, pickedSize)
	cart.Add(item)
	if err := u.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	res.Added = &item
	res.CartCount = len(cart.Items)
	res.CartTotal = cart.TotalAmount()
	return res, nil
}

func (u *cartUC) View(ctx context.Context, userID int64) (*CartSummary, error) {
	cart, err := u.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(cart), nil
}

func (u *cartUC) Clear(ctx context.Context, userID int64) error {
	return u.carts.Clear(ctx, userID)
}
