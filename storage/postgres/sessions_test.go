package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/registration"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/storage/postgres"
)

// connectTestDB connects to the database named by TEST_PG_CONN_URL and
// applies migrations. Tests are skipped when the variable is unset so the
// suite stays runnable without infrastructure.
func connectTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	connStr := os.Getenv("TEST_PG_CONN_URL")
	if connStr == "" {
		t.Skip("TEST_PG_CONN_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, postgres.Config{
		ConnectionString: connStr,
		RetryAttempts:    1,
		RetryInterval:    time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, nil))
	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email) VALUES ($1) RETURNING id`,
		uuid.NewString()+"@example.com").Scan(&id)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func testRecord(t *testing.T, userID int64, created time.Time) session.Record {
	t.Helper()
	return session.Record{
		ID:        []byte(uuid.NewString()[:18]),
		Key:       []byte(uuid.NewString()[:18]),
		UserID:    userID,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestSessionRepository_InsertGet(t *testing.T) {
	pool := connectTestDB(t)
	ctx := context.Background()
	repo := postgres.NewSessionRepository(pool)
	userID := createTestUser(t, pool)

	rec := testRecord(t, userID, time.Now())
	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Key, got.Key)
	assert.Equal(t, userID, got.UserID)
	assert.Nil(t, got.NextKey)

	assert.ErrorIs(t, repo.Insert(ctx, rec), session.ErrExists)

	_, err = repo.Get(ctx, []byte("no-such-session-id"))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionRepository_SetNextKeyGuard(t *testing.T) {
	pool := connectTestDB(t)
	ctx := context.Background()
	repo := postgres.NewSessionRepository(pool)
	userID := createTestUser(t, pool)

	rec := testRecord(t, userID, time.Now().Add(-2*time.Hour))
	require.NoError(t, repo.Insert(ctx, rec))

	first := []byte(uuid.NewString()[:18])
	set, err := repo.SetNextKey(ctx, rec.ID, first)
	require.NoError(t, err)
	require.True(t, set)

	set, err = repo.SetNextKey(ctx, rec.ID, []byte(uuid.NewString()[:18]))
	require.NoError(t, err)
	assert.False(t, set, "a pending key must not be replaced before confirmation")

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got.NextKey)
	assert.WithinDuration(t, rec.UpdatedAt, got.UpdatedAt, time.Second,
		"issuing a pending key must not reset the staleness clock")

	set, err = repo.SetNextKey(ctx, []byte("no-such-session-id"), first)
	require.NoError(t, err)
	assert.False(t, set, "missing rows lose the guard")
}

func TestSessionRepository_PromoteNextKey(t *testing.T) {
	pool := connectTestDB(t)
	ctx := context.Background()
	repo := postgres.NewSessionRepository(pool)
	userID := createTestUser(t, pool)

	rec := testRecord(t, userID, time.Now())
	require.NoError(t, repo.Insert(ctx, rec))

	next := []byte(uuid.NewString()[:18])
	set, err := repo.SetNextKey(ctx, rec.ID, next)
	require.NoError(t, err)
	require.True(t, set)

	ok, err := repo.PromoteNextKey(ctx, rec.ID, []byte(uuid.NewString()[:18]))
	require.NoError(t, err)
	assert.False(t, ok, "promote must lose when the pending key differs")

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Key, got.Key, "losing promote must not touch the row")
	assert.Equal(t, next, got.NextKey)

	ok, err = repo.PromoteNextKey(ctx, rec.ID, next)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, next, got.Key)
	assert.Nil(t, got.NextKey)

	ok, err = repo.PromoteNextKey(ctx, rec.ID, next)
	require.NoError(t, err)
	assert.False(t, ok, "second promote of a confirmed key must lose")
}

func TestSessionRepository_DeleteAndSweep(t *testing.T) {
	pool := connectTestDB(t)
	ctx := context.Background()
	repo := postgres.NewSessionRepository(pool)
	userID := createTestUser(t, pool)

	rec := testRecord(t, userID, time.Now())
	require.NoError(t, repo.Insert(ctx, rec))
	require.NoError(t, repo.Delete(ctx, rec.ID))
	require.NoError(t, repo.Delete(ctx, rec.ID))

	expired := testRecord(t, userID, time.Now().Add(-48*time.Hour))
	fresh := testRecord(t, userID, time.Now())
	require.NoError(t, repo.Insert(ctx, expired))
	require.NoError(t, repo.Insert(ctx, fresh))

	n, err := repo.DeleteExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	_, err = repo.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = repo.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestRegistrationRepository_Contract(t *testing.T) {
	pool := connectTestDB(t)
	ctx := context.Background()
	repo := postgres.NewRegistrationRepository(pool)
	userID := createTestUser(t, pool)

	hash := []byte(uuid.NewString())
	require.NoError(t, repo.Upsert(ctx, userID, hash))

	replacement := []byte(uuid.NewString())
	require.NoError(t, repo.Upsert(ctx, userID, replacement))

	got, err := repo.Consume(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, replacement, got, "re-issue must replace the stored hash")

	_, err = repo.Consume(ctx, userID)
	assert.ErrorIs(t, err, registration.ErrKeyNotFound, "consume must be single-use")

	require.NoError(t, repo.Activate(ctx, userID))

	var active bool
	require.NoError(t, pool.QueryRow(ctx, `SELECT active FROM users WHERE id = $1`, userID).Scan(&active))
	assert.True(t, active)
}
