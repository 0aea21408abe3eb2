package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateTimeSlotsTable, downCreateTimeSlotsTable)
}

func upCreateTimeSlotsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE time_slots (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  tutor_profile_id UUID NOT NULL REFERENCES tutor_profiles(id) ON DELETE CASCADE,
	  date DATE NOT NULL,
	  start_time TEXT NOT NULL,
	  end_time TEXT NOT NULL,
	  is_booked BOOLEAN NOT NULL DEFAULT false,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  CHECK (start_time < end_time)
	);

	CREATE INDEX idx_time_slots_tutor_date ON time_slots(tutor_profile_id, date);
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateTimeSlotsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS time_slots;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
