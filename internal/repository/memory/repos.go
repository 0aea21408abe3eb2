package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
)

func now() time.Time {
	return time.Now().UTC()
}

// ── users ──

type userRepo struct{ v *view }

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	t, done := r.v.write()
	defer done()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = model.UserStatusActive
	}
	user.CreatedAt = now()
	t.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	t, done := r.v.read()
	defer done()

	u, ok := t.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.UserStatus) error {
	t, done := r.v.write()
	defer done()

	u, ok := t.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Status = status
	t.users[id] = u
	return nil
}

func (r *userRepo) List(_ context.Context) ([]*model.User, error) {
	t, done := r.v.read()
	defer done()

	result := make([]*model.User, 0, len(t.users))
	for _, u := range t.users {
		result = append(result, &u)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// ── tutors ──

type tutorRepo struct{ v *view }

func (r *tutorRepo) Create(_ context.Context, profile *model.TutorProfile) error {
	t, done := r.v.write()
	defer done()

	for _, p := range t.tutors {
		if p.UserID == profile.UserID {
			return apperr.ErrTutorProfileExists
		}
	}
	profile.ID = uuid.New()
	profile.CreatedAt = now()
	profile.UpdatedAt = profile.CreatedAt
	t.tutors[profile.ID] = *profile
	return nil
}

func (r *tutorRepo) GetByID(_ context.Context, id uuid.UUID) (*model.TutorProfile, error) {
	t, done := r.v.read()
	defer done()

	p, ok := t.tutors[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *tutorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.TutorProfile, error) {
	t, done := r.v.read()
	defer done()

	for _, p := range t.tutors {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, nil
}

// LockByID транзакции и так сериализованы
func (r *tutorRepo) LockByID(_ context.Context, id uuid.UUID) error {
	t, done := r.v.read()
	defer done()

	if _, ok := t.tutors[id]; !ok {
		return fmt.Errorf("lock tutor profile: not found")
	}
	return nil
}

func (r *tutorRepo) UpdateHourlyRate(_ context.Context, id uuid.UUID, rate float64) error {
	t, done := r.v.write()
	defer done()

	p, ok := t.tutors[id]
	if !ok {
		return fmt.Errorf("tutor profile not found")
	}
	p.HourlyRate = rate
	p.UpdatedAt = now()
	t.tutors[id] = p
	return nil
}

func (r *tutorRepo) SetFeatured(_ context.Context, id uuid.UUID, featured bool) error {
	t, done := r.v.write()
	defer done()

	p, ok := t.tutors[id]
	if !ok {
		return fmt.Errorf("tutor profile not found")
	}
	p.IsFeatured = featured
	p.UpdatedAt = now()
	t.tutors[id] = p
	return nil
}

func (r *tutorRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	t, done := r.v.read()
	defer done()

	profiles := make([]model.TutorProfile, 0, len(t.tutors))
	for _, p := range t.tutors {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt.Before(profiles[j].CreatedAt) })

	ids := make([]uuid.UUID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids, nil
}

func (r *tutorRepo) HasSubject(ctx context.Context, profileID, subjectID uuid.UUID) (bool, error) {
	ts, err := r.GetSubject(ctx, profileID, subjectID)
	return ts != nil, err
}

func (r *tutorRepo) GetSubject(_ context.Context, profileID, subjectID uuid.UUID) (*model.TutorSubject, error) {
	t, done := r.v.read()
	defer done()

	for _, ts := range t.tutorSubjects {
		if ts.TutorProfileID == profileID && ts.SubjectID == subjectID {
			return &ts, nil
		}
	}
	return nil, nil
}

func (r *tutorRepo) ListSubjectIDs(_ context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	t, done := r.v.read()
	defer done()

	var ids []uuid.UUID
	for _, ts := range t.tutorSubjects {
		if ts.TutorProfileID == profileID {
			ids = append(ids, ts.SubjectID)
		}
	}
	return ids, nil
}

func (r *tutorRepo) AddSubjects(_ context.Context, profileID uuid.UUID, subjectIDs []uuid.UUID) error {
	t, done := r.v.write()
	defer done()

	for _, sid := range subjectIDs {
		exists := false
		for _, ts := range t.tutorSubjects {
			if ts.TutorProfileID == profileID && ts.SubjectID == sid {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		id := uuid.New()
		t.tutorSubjects[id] = model.TutorSubject{ID: id, TutorProfileID: profileID, SubjectID: sid, CreatedAt: now()}
	}
	return nil
}

func (r *tutorRepo) DeleteSubject(_ context.Context, id uuid.UUID) error {
	t, done := r.v.write()
	defer done()

	if _, ok := t.tutorSubjects[id]; !ok {
		return fmt.Errorf("tutor subject not found")
	}
	delete(t.tutorSubjects, id)
	return nil
}

// ── subjects ──

type subjectRepo struct{ v *view }

func (r *subjectRepo) Create(_ context.Context, subject *model.Subject) error {
	t, done := r.v.write()
	defer done()

	if subject.ID == uuid.Nil {
		subject.ID = uuid.New()
	}
	subject.CreatedAt = now()
	t.subjects[subject.ID] = *subject
	return nil
}

func (r *subjectRepo) ExistingIDs(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	t, done := r.v.read()
	defer done()

	var found []uuid.UUID
	for _, id := range ids {
		if _, ok := t.subjects[id]; ok && !slices.Contains(found, id) {
			found = append(found, id)
		}
	}
	return found, nil
}

// ── education ──

type educationRepo struct{ v *view }

// storedEducation копия без общих указателей с вызывающим
func storedEducation(e *model.Education) model.Education {
	c := *e
	if e.EndYear != nil {
		year := *e.EndYear
		c.EndYear = &year
	}
	return c
}

func (r *educationRepo) Create(_ context.Context, e *model.Education) error {
	t, done := r.v.write()
	defer done()

	e.ID = uuid.New()
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	t.educations[e.ID] = storedEducation(e)
	return nil
}

func (r *educationRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Education, error) {
	t, done := r.v.read()
	defer done()

	e, ok := t.educations[id]
	if !ok {
		return nil, nil
	}
	c := storedEducation(&e)
	return &c, nil
}

func (r *educationRepo) Update(_ context.Context, e *model.Education) error {
	t, done := r.v.write()
	defer done()

	if _, ok := t.educations[e.ID]; !ok {
		return fmt.Errorf("education not found")
	}
	e.UpdatedAt = now()
	t.educations[e.ID] = storedEducation(e)
	return nil
}

func (r *educationRepo) Delete(_ context.Context, id uuid.UUID) error {
	t, done := r.v.write()
	defer done()

	if _, ok := t.educations[id]; !ok {
		return fmt.Errorf("education not found")
	}
	delete(t.educations, id)
	return nil
}

func (r *educationRepo) ListByTutor(_ context.Context, profileID uuid.UUID) ([]*model.Education, error) {
	t, done := r.v.read()
	defer done()

	var result []*model.Education
	for _, e := range t.educations {
		if e.TutorProfileID == profileID {
			c := storedEducation(&e)
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartYear != result[j].StartYear {
			return result[i].StartYear > result[j].StartYear
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ── availability ──

type availabilityRepo struct{ v *view }

func (r *availabilityRepo) Create(_ context.Context, a *model.Availability) error {
	t, done := r.v.write()
	defer done()

	a.ID = uuid.New()
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt
	t.availability[a.ID] = *a
	return nil
}

func (r *availabilityRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Availability, error) {
	t, done := r.v.read()
	defer done()

	a, ok := t.availability[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *availabilityRepo) Update(_ context.Context, a *model.Availability) error {
	t, done := r.v.write()
	defer done()

	if _, ok := t.availability[a.ID]; !ok {
		return fmt.Errorf("availability not found")
	}
	a.UpdatedAt = now()
	t.availability[a.ID] = *a
	return nil
}

func (r *availabilityRepo) Delete(_ context.Context, id uuid.UUID) error {
	t, done := r.v.write()
	defer done()

	if _, ok := t.availability[id]; !ok {
		return fmt.Errorf("availability not found")
	}
	delete(t.availability, id)
	return nil
}

func (r *availabilityRepo) ListByTutor(_ context.Context, profileID uuid.UUID) ([]*model.Availability, error) {
	return r.filter(func(a model.Availability) bool { return a.TutorProfileID == profileID }), nil
}

func (r *availabilityRepo) ListByTutorAndDay(_ context.Context, profileID uuid.UUID, day model.DayOfWeek) ([]*model.Availability, error) {
	return r.filter(func(a model.Availability) bool {
		return a.TutorProfileID == profileID && a.DayOfWeek == day
	}), nil
}

func (r *availabilityRepo) filter(keep func(model.Availability) bool) []*model.Availability {
	t, done := r.v.read()
	defer done()

	var result []*model.Availability
	for _, a := range t.availability {
		if keep(a) {
			result = append(result, &a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

// ── slots ──

type slotRepo struct{ v *view }

func (r *slotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	t, done := r.v.write()
	defer done()

	slot.ID = uuid.New()
	slot.CreatedAt = now()
	slot.UpdatedAt = slot.CreatedAt
	t.slots[slot.ID] = *slot
	return nil
}

func (r *slotRepo) GetByID(_ context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	t, done := r.v.read()
	defer done()

	s, ok := t.slots[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *slotRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	return r.GetByID(ctx, id)
}

func (r *slotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	t, done := r.v.write()
	defer done()

	cur, ok := t.slots[slot.ID]
	if !ok {
		return fmt.Errorf("slot not found")
	}
	cur.Date = slot.Date
	cur.StartTime = slot.StartTime
	cur.EndTime = slot.EndTime
	cur.UpdatedAt = now()
	t.slots[slot.ID] = cur
	slot.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *slotRepo) SetBooked(_ context.Context, id uuid.UUID, booked bool) error {
	t, done := r.v.write()
	defer done()

	s, ok := t.slots[id]
	if !ok {
		return fmt.Errorf("slot not found")
	}
	s.IsBooked = booked
	s.UpdatedAt = now()
	t.slots[id] = s
	return nil
}

func (r *slotRepo) Delete(_ context.Context, id uuid.UUID) error {
	t, done := r.v.write()
	defer done()

	if _, ok := t.slots[id]; !ok {
		return fmt.Errorf("slot not found")
	}
	delete(t.slots, id)
	return nil
}

func (r *slotRepo) ListByTutorAndDate(_ context.Context, profileID uuid.UUID, date time.Time) ([]*model.TimeSlot, error) {
	return r.filter(func(s model.TimeSlot) bool {
		return s.TutorProfileID == profileID && s.Date.Equal(date)
	}), nil
}

func (r *slotRepo) ListByTutorRange(_ context.Context, profileID uuid.UUID, from, to time.Time) ([]*model.TimeSlot, error) {
	return r.filter(func(s model.TimeSlot) bool {
		return s.TutorProfileID == profileID && !s.Date.Before(from) && s.Date.Before(to)
	}), nil
}

func (r *slotRepo) filter(keep func(model.TimeSlot) bool) []*model.TimeSlot {
	t, done := r.v.read()
	defer done()

	var result []*model.TimeSlot
	for _, s := range t.slots {
		if keep(s) {
			result = append(result, &s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

// ── bookings ──

type bookingRepo struct{ v *view }

func (r *bookingRepo) Create(_ context.Context, booking *model.Booking) error {
	t, done := r.v.write()
	defer done()

	// то же правило, что и частичный уникальный индекс в PostgreSQL
	for _, b := range t.bookings {
		if b.TimeSlotID == booking.TimeSlotID && b.Status.IsActive() && booking.Status.IsActive() {
			return apperr.ErrSlotAlreadyBooked
		}
	}

	booking.ID = uuid.New()
	booking.CreatedAt = now()
	booking.UpdatedAt = booking.CreatedAt
	stored := *booking
	stored.Slot = nil
	t.bookings[booking.ID] = stored
	return nil
}

func (r *bookingRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	t, done := r.v.read()
	defer done()

	b, ok := t.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *bookingRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *bookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.BookingStatus) error {
	t, done := r.v.write()
	defer done()

	b, ok := t.bookings[id]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	b.Status = status
	b.UpdatedAt = now()
	t.bookings[id] = b
	return nil
}

func (r *bookingRepo) FindActiveBySlot(_ context.Context, slotID uuid.UUID) (*model.Booking, error) {
	found := r.filter(func(b model.Booking) bool { return b.TimeSlotID == slotID && b.Status.IsActive() })
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *bookingRepo) ExistsWithStatus(_ context.Context, profileID, subjectID uuid.UUID, status model.BookingStatus) (bool, error) {
	found := r.filter(func(b model.Booking) bool {
		return b.TutorProfileID == profileID && b.SubjectID == subjectID && b.Status == status
	})
	return len(found) > 0, nil
}

func (r *bookingRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.StudentID == studentID }), nil
}

func (r *bookingRepo) ListByTutor(_ context.Context, profileID uuid.UUID) ([]*model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.TutorProfileID == profileID }), nil
}

func (r *bookingRepo) filter(keep func(model.Booking) bool) []*model.Booking {
	t, done := r.v.read()
	defer done()

	var result []*model.Booking
	for _, b := range t.bookings {
		if keep(b) {
			result = append(result, &b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

// ── reviews ──

type reviewRepo struct{ v *view }

func (r *reviewRepo) Create(_ context.Context, review *model.Review) error {
	t, done := r.v.write()
	defer done()

	for _, rv := range t.reviews {
		if rv.BookingID == review.BookingID {
			return apperr.ErrReviewAlreadyExists
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = now()
	t.reviews[review.ID] = *review
	return nil
}

func (r *reviewRepo) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*model.Review, error) {
	t, done := r.v.read()
	defer done()

	for _, rv := range t.reviews {
		if rv.BookingID == bookingID {
			return &rv, nil
		}
	}
	return nil, nil
}

func (r *reviewRepo) ListByTutor(_ context.Context, profileID uuid.UUID) ([]*model.Review, error) {
	t, done := r.v.read()
	defer done()

	var result []*model.Review
	for _, rv := range t.reviews {
		if rv.TutorProfileID == profileID {
			result = append(result, &rv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}
