package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessionkit/core/session"
)

// SessionRepository persists session records in PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Insert(ctx context.Context, rec session.Record) error {
	const q = `INSERT INTO sessions (id, key, "user", created, updated) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, q, rec.ID, rec.Key, rec.UserID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return session.ErrExists
		}
		return err
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id []byte) (*session.Record, error) {
	const q = `SELECT key, next_key, "user", created, updated FROM sessions WHERE id = $1`

	rec := session.Record{ID: id}
	err := r.pool.QueryRow(ctx, q, id).Scan(&rec.Key, &rec.NextKey, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// SetNextKey deliberately leaves the updated column alone: the staleness
// clock keeps running until the client confirms the pending key. The
// next_key IS NULL guard makes concurrent stale presentations issue at most
// one pending key; losers see false and keep serving the current key.
func (r *SessionRepository) SetNextKey(ctx context.Context, id, nextKey []byte) (bool, error) {
	const q = `UPDATE sessions SET next_key = $2 WHERE id = $1 AND next_key IS NULL`

	tag, err := r.pool.Exec(ctx, q, id, nextKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// PromoteNextKey is a single conditional UPDATE; the row-level atomicity of
// the guard serializes concurrent confirmations of the same key.
func (r *SessionRepository) PromoteNextKey(ctx context.Context, id, nextKey []byte) (bool, error) {
	const q = `UPDATE sessions SET key = next_key, next_key = NULL, updated = NOW() WHERE id = $1 AND next_key = $2`

	tag, err := r.pool.Exec(ctx, q, id, nextKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id []byte) error {
	const q = `DELETE FROM sessions WHERE id = $1`

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, lifetime time.Duration) (int64, error) {
	const q = `DELETE FROM sessions WHERE created < NOW() - $1 * INTERVAL '1 second'`

	tag, err := r.pool.Exec(ctx, q, lifetime.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
