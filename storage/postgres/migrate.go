package postgres

import (
	"context"
	"embed"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrFailedToApplyMigrations wraps any goose failure during Migrate.
var ErrFailedToApplyMigrations = errors.New("failed to apply migrations")

// Migrate applies the embedded schema migrations. Goose needs a database/sql
// handle, so one is borrowed from the pool for the duration of the run; the
// pool itself stays open.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if log != nil {
		log.InfoContext(ctx, "database migrations applied",
			slog.String("component", "storage.postgres"),
			slog.Int64("version", version))
	}
	return nil
}
