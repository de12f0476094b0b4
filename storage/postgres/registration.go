package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessionkit/core/registration"
)

// RegistrationRepository persists registration key hashes in PostgreSQL.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a RegistrationRepository backed by pool.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) Upsert(ctx context.Context, userID int64, keyHash []byte) error {
	const q = `INSERT INTO registration_keys ("user", key) VALUES ($1, $2)
		ON CONFLICT ("user") DO UPDATE SET key = EXCLUDED.key`

	_, err := r.pool.Exec(ctx, q, userID, keyHash)
	return err
}

// Consume deletes the stored hash and returns it in one statement, so the key
// is burned before any comparison happens; a failed verification cannot be
// retried against the same key.
func (r *RegistrationRepository) Consume(ctx context.Context, userID int64) ([]byte, error) {
	const q = `DELETE FROM registration_keys WHERE "user" = $1 RETURNING key`

	var keyHash []byte
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&keyHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registration.ErrKeyNotFound
		}
		return nil, err
	}
	return keyHash, nil
}

func (r *RegistrationRepository) Activate(ctx context.Context, userID int64) error {
	const q = `UPDATE users SET active = TRUE WHERE id = $1`

	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
