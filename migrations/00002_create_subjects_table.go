package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSubjectsTable, downCreateSubjectsTable)
}

func upCreateSubjectsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE subjects (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  name TEXT NOT NULL,
	  category_id UUID NOT NULL,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateSubjectsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS subjects;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
