// Package migration bootstraps the PostgreSQL schema used by the records backend.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_records",
		SQL: `CREATE TABLE IF NOT EXISTS records (
  seq        BIGSERIAL   NOT NULL,
  collection TEXT        NOT NULL,
  id         TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  body       JSONB       NOT NULL,
  PRIMARY KEY (collection, id)
);`,
	},
	{
		Name: "create_index_records_collection_seq",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_collection_seq ON records (collection, seq);`,
	},
	{
		Name: "create_index_records_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_created_at ON records (collection, created_at DESC);`,
	},
}

// EnsureMigrated creates the records table and its indexes when the table is missing.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	start := time.Now()
	log := logger.With(slog.String("component", "database"))

	var exists bool
	const sentinel = "SELECT to_regclass('public.records') IS NOT NULL"
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		log.ErrorContext(ctx, "db_migration_failed", slog.String("error", err.Error()))
		return fmt.Errorf("check sentinel table: %w", err)
	}
	if exists {
		log.InfoContext(ctx, "db_migration_skip", slog.Duration("duration", time.Since(start)))
		return nil
	}

	log.InfoContext(ctx, "db_migration_start", slog.Int("steps", len(steps)))
	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed",
				slog.String("migration_step", step.Name),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.DebugContext(ctx, "db_migration_step",
			slog.String("migration_step", step.Name),
			slog.Duration("duration", time.Since(stepStart)),
		)
	}

	log.InfoContext(ctx, "db_migration_success", slog.Duration("duration", time.Since(start)))
	return nil
}
