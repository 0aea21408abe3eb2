package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateEducationsTable, downCreateEducationsTable)
}

func upCreateEducationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE educations (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  tutor_profile_id UUID NOT NULL REFERENCES tutor_profiles(id) ON DELETE CASCADE,
	  institute TEXT NOT NULL,
	  degree TEXT NOT NULL,
	  field_of_study TEXT NOT NULL,
	  start_year INTEGER NOT NULL,
	  end_year INTEGER,
	  is_current BOOLEAN NOT NULL DEFAULT false,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  CHECK (end_year IS NULL OR start_year <= end_year)
	);

	CREATE INDEX idx_educations_tutor ON educations(tutor_profile_id);
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateEducationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS educations;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
