package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/core/session"
)

const keyPrefix = "session:"

// insertScript creates the hash only when the id is not already taken.
var insertScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "key", ARGV[1], "user", ARGV[2], "created", ARGV[3], "updated", ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// setNextKeyScript stores the pending key without touching "updated". HSETNX
// is the guard: at most one pending key between confirmations, matching the
// next_key IS NULL condition the SQL repository uses.
var setNextKeyScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
return redis.call("HSETNX", KEYS[1], "next_key", ARGV[1])
`)

// promoteScript is the compare-and-swap for rotation confirmation: the
// pending key becomes current only if it still equals the presented one.
var promoteScript = redis.NewScript(`
local nk = redis.call("HGET", KEYS[1], "next_key")
if not nk or nk ~= ARGV[1] then
	return 0
end
redis.call("HSET", KEYS[1], "key", nk, "updated", ARGV[2])
redis.call("HDEL", KEYS[1], "next_key")
return 1
`)

// SessionRepository persists session records as Redis hashes with a TTL equal
// to the session lifetime.
type SessionRepository struct {
	client    *redis.Client
	lifetime  time.Duration
	scanBatch int64
}

// NewSessionRepository creates a SessionRepository. lifetime bounds the TTL
// applied on insert and must be positive.
func NewSessionRepository(client *redis.Client, lifetime time.Duration) (*SessionRepository, error) {
	if client == nil {
		return nil, errors.New("redis: client is required")
	}
	if lifetime <= 0 {
		return nil, errors.New("redis: lifetime must be positive")
	}
	return &SessionRepository{client: client, lifetime: lifetime, scanBatch: 1000}, nil
}

func sessionKey(id []byte) string {
	return keyPrefix + string(id)
}

func (r *SessionRepository) Insert(ctx context.Context, rec session.Record) error {
	created, err := insertScript.Run(ctx, r.client,
		[]string{sessionKey(rec.ID)},
		rec.Key,
		rec.UserID,
		rec.CreatedAt.UnixNano(),
		rec.UpdatedAt.UnixNano(),
		r.lifetime.Milliseconds(),
	).Int()
	if err != nil {
		return err
	}
	if created == 0 {
		return session.ErrExists
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id []byte) (*session.Record, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, session.ErrNotFound
	}

	userID, err := strconv.ParseInt(fields["user"], 10, 64)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseNanos(fields["created"])
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseNanos(fields["updated"])
	if err != nil {
		return nil, err
	}

	rec := &session.Record{
		ID:        id,
		Key:       []byte(fields["key"]),
		UserID:    userID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if nk, ok := fields["next_key"]; ok {
		rec.NextKey = []byte(nk)
	}
	return rec, nil
}

func (r *SessionRepository) SetNextKey(ctx context.Context, id, nextKey []byte) (bool, error) {
	set, err := setNextKeyScript.Run(ctx, r.client, []string{sessionKey(id)}, nextKey).Int()
	if err != nil {
		return false, err
	}
	return set == 1, nil
}

func (r *SessionRepository) PromoteNextKey(ctx context.Context, id, nextKey []byte) (bool, error) {
	promoted, err := promoteScript.Run(ctx, r.client,
		[]string{sessionKey(id)},
		nextKey,
		time.Now().UnixNano(),
	).Int()
	if err != nil {
		return false, err
	}
	return promoted == 1, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id []byte) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

// DeleteExpired scans for rows created more than lifetime ago. The per-key
// TTL already evicts expired rows; this sweep only matters after a lifetime
// shortening, when old rows still carry the longer TTL.
func (r *SessionRepository) DeleteExpired(ctx context.Context, lifetime time.Duration) (int64, error) {
	cutoff := time.Now().Add(-lifetime).UnixNano()

	var deleted int64
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", r.scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.HGet(ctx, key, "created").Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return deleted, err
		}
		created, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if created < cutoff {
			n, err := r.client.Del(ctx, key).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func parseNanos(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n), nil
}
