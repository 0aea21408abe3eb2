package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ActiveSlotConstraint частичный уникальный индекс: не больше одного
// активного бронирования на слот
const ActiveSlotConstraint = "bookings_active_slot_uq"

type PgBookingRepository struct {
	*base.Repository
}

func NewBookingRepository(db base.Querier) *PgBookingRepository {
	return &PgBookingRepository{Repository: base.NewRepository(db)}
}

const bookingColumns = `id, student_id, tutor_profile_id, subject_id, time_slot_id, status, booking_price, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	booking := &model.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.TutorProfileID,
		&booking.SubjectID,
		&booking.TimeSlotID,
		&booking.Status,
		&booking.BookingPrice,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	return booking, err
}

// Create создаёт новое бронирование. Проигравший в гонке за слот получает
// ErrSlotAlreadyBooked от уникального индекса.
func (r *PgBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (student_id, tutor_profile_id, subject_id, time_slot_id, status, booking_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.StudentID,
		booking.TutorProfileID,
		booking.SubjectID,
		booking.TimeSlotID,
		booking.Status,
		booking.BookingPrice,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, ActiveSlotConstraint) {
			return apperr.ErrSlotAlreadyBooked
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *PgBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByIDForUpdate получает бронирование с блокировкой строки
func (r *PgBookingRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *PgBookingRepository) get(ctx context.Context, query string, args ...any) (*model.Booking, error) {
	booking, err := scanBooking(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return booking, nil
}

// UpdateStatus обновляет статус бронирования
func (r *PgBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// FindActiveBySlot получает активное бронирование для слота
func (r *PgBookingRepository) FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE time_slot_id = $1 AND status = ANY($2)
		LIMIT 1
	`

	return r.get(ctx, query, slotID, statusStrings(model.ActiveBookingStatuses))
}

// ExistsWithStatus есть ли у преподавателя бронирование предмета в данном статусе
func (r *PgBookingRepository) ExistsWithStatus(ctx context.Context, profileID, subjectID uuid.UUID, status model.BookingStatus) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE tutor_profile_id = $1 AND subject_id = $2 AND status = $3
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, profileID, subjectID, status).Scan(&exists); err != nil {
		return false, fmt.Errorf("check booking exists: %w", err)
	}

	return exists, nil
}

// ListByStudent все бронирования студента
func (r *PgBookingRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, studentID)
}

// ListByTutor все бронирования преподавателя
func (r *PgBookingRepository) ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tutor_profile_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, profileID)
}

func (r *PgBookingRepository) list(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func statusStrings(statuses []model.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
