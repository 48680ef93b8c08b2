package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-store-consultant/internal/domain"
)

// Repositories accept `qx any` so use cases can run them inside or
// outside a transaction with the same code path: a pgx.Tx or pool conn
// routes through the handle, nil falls back to the pool, anything else
// is a programming error surfaced as ErrInvalidExecContext.

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func pickRow(ctx context.Context, pool *pgxpool.Pool, qx any, sql string, args ...any) pgx.Row {
	switch v := qx.(type) {
	case nil:
		return pool.QueryRow(ctx, sql, args...)
	case pgx.Tx:
		return v.QueryRow(ctx, sql, args...)
	case *pgxpool.Conn:
		return v.QueryRow(ctx, sql, args...)
	default:
		return errRow{err: domain.ErrInvalidExecContext}
	}
}

func pickExec(ctx context.Context, pool *pgxpool.Pool, qx any, sql string, args ...any) error {
	switch v := qx.(type) {
	case nil:
		_, err := pool.Exec(ctx, sql, args...)
		return err
	case pgx.Tx:
		_, err := v.Exec(ctx, sql, args...)
		return err
	case *pgxpool.Conn:
		_, err := v.Exec(ctx, sql, args...)
		return err
	default:
		return domain.ErrInvalidExecContext
	}
}

func pickQuery(ctx context.Context, pool *pgxpool.Pool, qx any, sql string, args ...any) (pgx.Rows, error) {
	switch v := qx.(type) {
	case nil:
		return pool.Query(ctx, sql, args...)
	case pgx.Tx:
		return v.Query(ctx, sql, args...)
	case *pgxpool.Conn:
		return v.Query(ctx, sql, args...)
	default:
		return nil, domain.ErrInvalidExecContext
	}
}
