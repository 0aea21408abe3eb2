package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAvailabilitiesTable, downCreateAvailabilitiesTable)
}

func upCreateAvailabilitiesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE availabilities (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  tutor_profile_id UUID NOT NULL REFERENCES tutor_profiles(id) ON DELETE CASCADE,
	  day_of_week TEXT NOT NULL CHECK (day_of_week IN
	    ('SUNDAY', 'MONDAY', 'TUESDAY', 'WEDNESDAY', 'THURSDAY', 'FRIDAY', 'SATURDAY')),
	  start_time TEXT NOT NULL,
	  end_time TEXT NOT NULL,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  CHECK (start_time < end_time)
	);

	CREATE INDEX idx_availabilities_tutor_day ON availabilities(tutor_profile_id, day_of_week);
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateAvailabilitiesTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS availabilities;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
