package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateReviewsTable, downCreateReviewsTable)
}

func upCreateReviewsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE reviews (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
	  student_id UUID NOT NULL REFERENCES users(id),
	  tutor_profile_id UUID NOT NULL REFERENCES tutor_profiles(id),
	  rating DOUBLE PRECISION NOT NULL CHECK (rating >= 0 AND rating <= 5),
	  comment TEXT,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  CONSTRAINT reviews_booking_uq UNIQUE (booking_id)
	);

	CREATE INDEX idx_reviews_tutor ON reviews(tutor_profile_id);
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateReviewsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS reviews;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
