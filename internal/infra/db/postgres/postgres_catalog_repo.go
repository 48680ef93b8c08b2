// File: internal/infra/db/postgres/postgres_catalog_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
)

var _ repository.CatalogRepository = (*PostgresCatalogRepo)(nil)

// PostgresCatalogRepo reads products with their variant dimensions.
// The catalog is managed elsewhere (admin panel); this side is read-only.
type PostgresCatalogRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalogRepo(pool *pgxpool.Pool) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{pool: pool}
}

const productColumns = `
SELECT p.id, p.name, p.price, COALESCE(p.description, ''),
       COALESCE(c.name, ''), COALESCE(sc.name, '')
  FROM products p
  LEFT JOIN subcategories sc ON sc.id = p.subcategory_id
  LEFT JOIN categories c ON c.id = sc.category_id`

func (r *PostgresCatalogRepo) ListProducts(ctx context.Context, qx any) ([]*model.Product, error) {
	rows, err := pickQuery(ctx, r.pool, qx, productColumns+` ORDER BY c.name, sc.name, p.name;`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []*model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Category, &p.Subcategory); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := r.loadVariants(ctx, qx, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PostgresCatalogRepo) FindByName(ctx context.Context, qx any, name string) (*model.Product, error) {
	row := pickRow(ctx, r.pool, qx, productColumns+` WHERE p.name = $1;`, name)
	return r.scanOne(ctx, qx, row)
}

func (r *PostgresCatalogRepo) FindByID(ctx context.Context, qx any, id int64) (*model.Product, error) {
	row := pickRow(ctx, r.pool, qx, productColumns+` WHERE p.id = $1;`, id)
	return r.scanOne(ctx, qx, row)
}

func (r *PostgresCatalogRepo) scanOne(ctx context.Context, qx any, row pgx.Row) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Category, &p.Subcategory); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if err := r.loadVariants(ctx, qx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresCatalogRepo) loadVariants(ctx context.Context, qx any, p *model.Product) error {
	rows, err := pickQuery(ctx, r.pool, qx,
		`SELECT id, name FROM product_colors WHERE product_id = $1 ORDER BY id;`, p.ID)
	if err != nil {
		return fmt.Errorf("query colors: %w", err)
	}
	for rows.Next() {
		var c model.Color
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scan color: %w", err)
		}
		p.Colors = append(p.Colors, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = pickQuery(ctx, r.pool, qx,
		`SELECT id, value FROM product_sizes WHERE product_id = $1 ORDER BY id;`, p.ID)
	if err != nil {
		return fmt.Errorf("query sizes: %w", err)
	}
	for rows.Next() {
		var s model.Size
		if err := rows.Scan(&s.ID, &s.Value); err != nil {
			rows.Close()
			return fmt.Errorf("scan size: %w", err)
		}
		p.Sizes = append(p.Sizes, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = pickQuery(ctx, r.pool, qx,
		`SELECT file_id FROM product_photos WHERE product_id = $1 ORDER BY position;`, p.ID)
	if err != nil {
		return fmt.Errorf("query photos: %w", err)
	}
	for rows.Next() {
		var ph string
		if err := rows.Scan(&ph); err != nil {
			rows.Close()
			return fmt.Errorf("scan photo: %w", err)
		}
		p.Photos = append(p.Photos, ph)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = pickQuery(ctx, r.pool, qx,
		`SELECT name, value FROM product_attributes WHERE product_id = $1 ORDER BY name;`, p.ID)
	if err != nil {
		return fmt.Errorf("query attributes: %w", err)
	}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			rows.Close()
			return fmt.Errorf("scan attribute: %w", err)
		}
		if p.Attributes == nil {
			p.Attributes = make(map[string]string)
		}
		p.Attributes[name] = value
	}
	rows.Close()
	return rows.Err()
}
