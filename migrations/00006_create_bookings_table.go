package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateBookingsTable, downCreateBookingsTable)
}

func upCreateBookingsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE bookings (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  student_id UUID NOT NULL REFERENCES users(id),
	  tutor_profile_id UUID NOT NULL REFERENCES tutor_profiles(id),
	  subject_id UUID NOT NULL REFERENCES subjects(id),
	  time_slot_id UUID NOT NULL REFERENCES time_slots(id) ON DELETE CASCADE,
	  status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'CONFIRM', 'COMPLETE', 'CANCELLED')),
	  booking_price NUMERIC(10, 2) NOT NULL CHECK (booking_price >= 0),
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);

	-- не больше одного активного бронирования на слот
	CREATE UNIQUE INDEX bookings_active_slot_uq ON bookings(time_slot_id) WHERE status IN ('PENDING', 'CONFIRM', 'COMPLETE');
	CREATE INDEX idx_bookings_student ON bookings(student_id);
	CREATE INDEX idx_bookings_tutor ON bookings(tutor_profile_id);
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateBookingsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS bookings;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
