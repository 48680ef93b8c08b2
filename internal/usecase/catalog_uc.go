// File: internal/usecase/catalog_uc.go
package usecase

import (
	"context"
	"errors"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
)

var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase serves read-only catalog views.
type CatalogUseCase interface {
	// GetProducts returns the full catalog grouped by category and subcategory.
	GetProducts(ctx context.Context) (*CatalogResult, error)
	// GetProductDetails resolves a product by its exact name. A missing
	// product is reported in the result, not as an error.
	GetProductDetails(ctx context.Context, name string) (*ProductDetails, error)
	// ProductsByIDs loads products preserving the given order; unknown
	// ids are skipped.
	ProductsByIDs(ctx context.Context, ids []int64) ([]*model.Product, error)
}

type catalogUC struct {
	catalog repository.CatalogRepository
}

func NewCatalogUseCase(catalog repository.CatalogRepository) *catalogUC {
	return &catalogUC{catalog: catalog}
}

func (u *catalogUC) GetProducts(ctx context.Context) (*CatalogResult, error) {
	products, err := u.catalog.ListProducts(ctx, nil)
	if err != nil {
		return nil, err
	}

	// ListProducts orders by category, subcategory, name, so grouping is
	// a single pass.
	res := &CatalogResult{}
	for _, p := range products {
		var cat *CategoryNode
		if n := len(res.Categories); n > 0 && res.Categories[n-1].Name == p.Category {
			cat = &res.Categories[n-1]
		} else {
			res.Categories = append(res.Categories, CategoryNode{Name: p.Category})
			cat = &res.Categories[len(res.Categories)-1]
		}
		var sub *SubcategoryNode
		if n := len(cat.Subcategories); n > 0 && cat.Subcategories[n-1].Name == p.Subcategory {
			sub = &cat.Subcategories[n-1]
		} else {
			cat.Subcategories = append(cat.Subcategories, SubcategoryNode{Name: p.Subcategory})
			sub = &cat.Subcategories[len(cat.Subcategories)-1]
		}
		sub.Products = append(sub.Products, ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return res, nil
}

func (u *catalogUC) GetProductDetails(ctx context.Context, name string) (*ProductDetails, error) {
	p, err := u.catalog.FindByName(ctx, nil, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &ProductDetails{Error: msgProductNotFound}, nil
		}
		return nil, err
	}
	return &ProductDetails{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Colors:      p.ColorNames(),
		Sizes:       p.SizeValues(),
		Photos:      p.Photos,
		Attributes:  p.Attributes,
	}, nil
}

func (u *catalogUC) ProductsByIDs(ctx context.Context, ids []int64) ([]*model.Product, error) {
	out := make([]*model.Product, 0, len(ids))
	for _, id := range ids {
		p, err := u.catalog.FindByID(ctx, nil, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
