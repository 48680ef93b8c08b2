// File: internal/infra/db/postgres/postgres_profile_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
	"telegram-store-consultant/internal/infra/security"
)

var _ repository.CustomerProfileRepository = (*PostgresProfileRepo)(nil)

// PostgresProfileRepo persists customer delivery details. Phone and
// address are encrypted at rest; the full name is kept in clear for
// manager-side order listings.
type PostgresProfileRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewPostgresProfileRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *PostgresProfileRepo {
	return &PostgresProfileRepo{pool: pool, enc: enc}
}

func (r *PostgresProfileRepo) Find(ctx context.Context, qx any, userID int64) (*model.CustomerProfile, error) {
	const q = `
SELECT user_id, full_name, phone, address, created_at, updated_at
  FROM customer_profiles WHERE user_id = $1;`
	row := pickRow(ctx, r.pool, qx, q, userID)
	var p model.CustomerProfile
	if err := row.Scan(&p.UserID, &p.FullName, &p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	var err error
	if p.Phone, err = r.enc.Decrypt(p.Phone); err != nil {
		return nil, fmt.Errorf("decrypt phone: %w", err)
	}
	if p.Address, err = r.enc.Decrypt(p.Address); err != nil {
		return nil, fmt.Errorf("decrypt address: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfileRepo) Save(ctx context.Context, qx any, p *model.CustomerProfile) error {
	phone, err := r.enc.Encrypt(p.Phone)
	if err != nil {
		return fmt.Errorf("encrypt phone: %w", err)
	}
	address, err := r.enc.Encrypt(p.Address)
	if err != nil {
		return fmt.Errorf("encrypt address: %w", err)
	}
	const q = `
INSERT INTO customer_profiles (user_id, full_name, phone, address, created_at, updated_at)
VALUES ($1,$2,$3,$4,COALESCE($5,NOW()),NOW())
ON CONFLICT (user_id) DO UPDATE SET
  full_name = EXCLUDED.full_name,
  phone = EXCLUDED.phone,
  address = EXCLUDED.address,
  updated_at = NOW();`
	if err := pickExec(ctx, r.pool, qx, q, p.UserID, p.FullName, phone, address, p.CreatedAt); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
