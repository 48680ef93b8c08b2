package repository

import (
	"context"

	"telegram-store-consultant/internal/domain/model"
)

// CatalogRepository is read-only access to products with their variant
// dimensions, photos and category placement.
type CatalogRepository interface {
	// ListProducts returns the whole catalog with colors/sizes loaded.
	ListProducts(ctx context.Context, qx any) ([]*model.Product, error)

	// FindByName matches the product name exactly (domain.ErrNotFound otherwise).
	FindByName(ctx context.Context, qx any, name string) (*model.Product, error)

	FindByID(ctx context.Context, qx any, id int64) (*model.Product, error)
}
