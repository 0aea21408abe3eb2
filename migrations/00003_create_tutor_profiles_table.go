package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateTutorProfilesTable, downCreateTutorProfilesTable)
}

func upCreateTutorProfilesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE tutor_profiles (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	  hourly_rate NUMERIC(10, 2) NOT NULL CHECK (hourly_rate > 0),
	  is_featured BOOLEAN NOT NULL DEFAULT false,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  CONSTRAINT tutor_profiles_user_uq UNIQUE (user_id)
	);

	CREATE TABLE tutor_subjects (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  tutor_profile_id UUID NOT NULL REFERENCES tutor_profiles(id) ON DELETE CASCADE,
	  subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  UNIQUE (tutor_profile_id, subject_id)
	);
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateTutorProfilesTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS tutor_subjects; DROP TABLE IF EXISTS tutor_profiles;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
