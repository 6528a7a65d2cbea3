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

// profiles are owned by the auth provider; documents only keep the uuid.
var steps = []migrationStep{
	{
		Name: "create_table_vehicles",
		SQL: `CREATE TABLE IF NOT EXISTS vehicles (
  id              BIGSERIAL   PRIMARY KEY,
  plate_number    TEXT        NOT NULL UNIQUE,
  model_name      TEXT        NOT NULL,
  image_url       TEXT,
  class           TEXT,
  type            TEXT,
  fuel_type       TEXT,
  gear            TEXT,
  person_capacity TEXT,
  trunk_capacity  TEXT,
  other_details   JSONB,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_campaigns",
		SQL: `CREATE TABLE IF NOT EXISTS campaigns (
  id         BIGSERIAL   PRIMARY KEY,
  title      TEXT        NOT NULL,
  image_url  TEXT,
  target_url TEXT,
  is_active  BOOLEAN     NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id              BIGSERIAL   PRIMARY KEY,
  customer_id     UUID        NOT NULL,
  vehicle_id      BIGINT      REFERENCES vehicles (id) ON DELETE SET NULL,
  document_type   TEXT        NOT NULL CHECK (document_type IN ('invoice', 'contract', 'receipt', 'other')),
  file_path       TEXT        NOT NULL,
  file_name       TEXT,
  is_seen_customer BOOLEAN    NOT NULL DEFAULT false,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_customer_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_customer_id ON documents (customer_id);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(
		slog.String("component", "database"),
		slog.String("db_host", dbHost),
	)

	log.InfoContext(ctx, "db_migration_check", slog.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.ErrorContext(ctx, "db_migration_failed",
			slog.String("status", "error"),
			slog.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.InfoContext(ctx, "db_migration_skip",
			slog.String("status", "success"),
			slog.String("reason", "schema already exists"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.InfoContext(ctx, "db_migration_start", slog.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed",
				slog.String("status", "error"),
				slog.String("migration_step", step.Name),
				slog.String("error_message", err.Error()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.InfoContext(ctx, "db_migration_step",
			slog.String("status", "success"),
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.InfoContext(ctx, "db_migration_success",
		slog.String("status", "success"),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
