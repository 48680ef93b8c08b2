// File: internal/infra/db/postgres/postgres_order_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*PostgresOrderRepo)(nil)

type PostgresOrderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{pool: pool}
}

// SaveGroup inserts the group row and every order row. Callers run it
// inside TxManager.WithTx so the batch lands all-or-nothing.
func (r *PostgresOrderRepo) SaveGroup(ctx context.Context, qx any, g *model.OrderGroup) error {
	const qGroup = `
INSERT INTO order_groups (id, user_id, full_name, phone, delivery, address, total_amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	if err := pickExec(ctx, r.pool, qx, qGroup,
		g.ID, g.UserID, g.FullName, g.Phone, g.Delivery, g.Address, g.TotalAmount, g.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// replayed checkout: the group is already on disk
			return fmt.Errorf("order group %s: %w", g.ID, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("insert order group: %w", err)
	}

	const qOrder = `
INSERT INTO orders (id, group_id, user_id, product_id, product_name, quantity, color, size, total, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`
	for _, o := range g.Orders {
		if err := pickExec(ctx, r.pool, qx, qOrder,
			o.ID, o.GroupID, o.UserID, o.ProductID, o.ProductName, o.Quantity,
			o.Color, o.Size, o.Total, string(o.Status), o.CreatedAt); err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}
	return nil
}

func (r *PostgresOrderRepo) FindGroup(ctx context.Context, qx any, groupID string) (*model.OrderGroup, error) {
	const q = `
SELECT id, user_id, full_name, phone, delivery, address, total_amount, created_at
  FROM order_groups WHERE id = $1;`
	row := pickRow(ctx, r.pool, qx, q, groupID)
	var g model.OrderGroup
	if err := row.Scan(&g.ID, &g.UserID, &g.FullName, &g.Phone, &g.Delivery, &g.Address, &g.TotalAmount, &g.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan order group: %w", err)
	}

	orders, err := r.queryOrders(ctx, qx, `WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		g.Orders = append(g.Orders, *o)
	}
	return &g, nil
}

func (r *PostgresOrderRepo) ListByUser(ctx context.Context, qx any, userID int64) ([]*model.Order, error) {
	return r.queryOrders(ctx, qx, `WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

func (r *PostgresOrderRepo) queryOrders(ctx context.Context, qx any, where string, arg any) ([]*model.Order, error) {
	q := `
SELECT id, group_id, user_id, product_id, product_name, quantity, color, size, total, status, created_at
  FROM orders ` + where + `;`
	rows, err := pickQuery(ctx, r.pool, qx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		var o model.Order
		var status string
		if err := rows.Scan(&o.ID, &o.GroupID, &o.UserID, &o.ProductID, &o.ProductName,
			&o.Quantity, &o.Color, &o.Size, &o.Total, &status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = model.OrderStatus(status)
		out = append(out, &o)
	}
	return out, rows.Err()
}
