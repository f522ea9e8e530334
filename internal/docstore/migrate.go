package docstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

func init() {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		panic(err)
	}
}

// MigrateUp applies every pending migration to the Postgres backend.
func MigrateUp(ctx context.Context, dsn string) error {
	return withDB(ctx, dsn, func(ctx context.Context, db *sql.DB) error {
		return goose.UpContext(ctx, db, migrationsDir)
	})
}

// MigrateDown rolls back steps migrations (at least one).
func MigrateDown(ctx context.Context, dsn string, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return withDB(ctx, dsn, func(ctx context.Context, db *sql.DB) error {
		for i := 0; i < steps; i++ {
			if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
				return err
			}
		}
		return nil
	})
}

func MigrateStatus(ctx context.Context, dsn string) error {
	return withDB(ctx, dsn, func(ctx context.Context, db *sql.DB) error {
		return goose.StatusContext(ctx, db, migrationsDir)
	})
}

func MigrationVersion(ctx context.Context, dsn string) (int64, error) {
	var version int64
	err := withDB(ctx, dsn, func(ctx context.Context, db *sql.DB) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	return version, err
}

func withDB(ctx context.Context, dsn string, fn func(context.Context, *sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return fn(ctx, db)
}
