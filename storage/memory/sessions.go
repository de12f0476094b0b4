package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionkit/core/session"
)

// SessionRepository is an in-process session.Repository backed by a
// mutex-guarded map. Suitable for tests and single-process deployments;
// anything multi-node needs the postgres or redis implementation.
type SessionRepository struct {
	mu   sync.Mutex
	rows map[string]session.Record
}

// NewSessionRepository creates an empty in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{rows: make(map[string]session.Record)}
}

func (r *SessionRepository) Insert(ctx context.Context, rec session.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := string(rec.ID)
	if _, ok := r.rows[k]; ok {
		return session.ErrExists
	}
	r.rows[k] = cloneRecord(rec)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id []byte) (*session.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[string(id)]
	if !ok {
		return nil, session.ErrNotFound
	}
	out := cloneRecord(rec)
	return &out, nil
}

func (r *SessionRepository) SetNextKey(ctx context.Context, id, nextKey []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := string(id)
	rec, ok := r.rows[k]
	if !ok || rec.NextKey != nil {
		return false, nil
	}
	rec.NextKey = bytes.Clone(nextKey)
	r.rows[k] = rec
	return true, nil
}

func (r *SessionRepository) PromoteNextKey(ctx context.Context, id, nextKey []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := string(id)
	rec, ok := r.rows[k]
	if !ok || rec.NextKey == nil || !bytes.Equal(rec.NextKey, nextKey) {
		return false, nil
	}

	rec.Key = rec.NextKey
	rec.NextKey = nil
	rec.UpdatedAt = time.Now()
	r.rows[k] = rec
	return true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, string(id))
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, lifetime time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-lifetime)
	var n int64
	for k, rec := range r.rows {
		if rec.CreatedAt.Before(cutoff) {
			delete(r.rows, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions. Test helper.
func (r *SessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func cloneRecord(rec session.Record) session.Record {
	rec.ID = bytes.Clone(rec.ID)
	rec.Key = bytes.Clone(rec.Key)
	rec.NextKey = bytes.Clone(rec.NextKey)
	return rec
}
