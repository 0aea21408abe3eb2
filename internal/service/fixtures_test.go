package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/tutor_scheduler/internal/timeutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 2026-10-19 понедельник
const monday = "2026-10-19"

type eventRecorder struct {
	mu  sync.Mutex
	got []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ev)
	return nil
}

func (r *eventRecorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.got))
	for i, ev := range r.got {
		out[i] = ev.Type
	}
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	data        map[string][]*model.TimeSlot
	gens        map[string]int64
	hits        int
	invalidated int
	dropped     int

	// beforeSet вызывается перед записью, вне мьютекса
	beforeSet func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data: make(map[string][]*model.TimeSlot),
		gens: make(map[string]int64),
	}
}

func cacheKey(profileID uuid.UUID, date time.Time) string {
	return profileID.String() + ":" + date.Format(model.DateLayout)
}

func (c *fakeCache) GetOpenSlots(_ context.Context, profileID uuid.UUID, date time.Time) ([]*model.TimeSlot, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(profileID, date)
	slots, ok := c.data[key]
	if ok {
		c.hits++
	}
	return slots, c.gens[key], ok, nil
}

func (c *fakeCache) SetOpenSlots(_ context.Context, profileID uuid.UUID, date time.Time, gen int64, slots []*model.TimeSlot) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(profileID, date)
	if c.gens[key] != gen {
		c.dropped++
		return nil
	}
	c.data[key] = slots
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, profileID uuid.UUID, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(profileID, date)
	delete(c.data, key)
	c.gens[key]++
	c.invalidated++
	return nil
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	pub   *eventRecorder
	cache *fakeCache

	availability *AvailabilityService
	slots        *SlotService
	bookings     *BookingService
	reviews      *ReviewService
	tutors       *TutorService
	admin        *AdminService

	tutor   auth.Principal
	student auth.Principal
	root    auth.Principal
	profile *model.TutorProfile
	subject *model.Subject

	nextSlot int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	f := &fixture{
		ctx:   context.Background(),
		store: memory.NewStore(),
		pub:   &eventRecorder{},
		cache: newFakeCache(),
	}
	hooks := Hooks{Publisher: f.pub, Cache: f.cache}

	f.availability = NewAvailabilityService(f.store, logger)
	f.slots = NewSlotService(f.store, hooks, logger)
	f.bookings = NewBookingService(f.store, NewPricingCalculator(), hooks, logger)
	f.reviews = NewReviewService(f.store, hooks, logger)
	f.tutors = NewTutorService(f.store, logger)
	f.admin = NewAdminService(f.store, logger)

	f.tutor = f.user(t, model.RoleTutor)
	f.student = f.user(t, model.RoleStudent)
	f.root = f.user(t, model.RoleAdmin)

	var err error
	f.profile, err = f.tutors.CreateProfile(f.ctx, f.tutor, 25)
	require.NoError(t, err)

	f.subject = f.newSubject(t, "Mathematics")
	_, err = f.tutors.AddSubjects(f.ctx, f.tutor, AddSubjectsRequest{SubjectIDs: []uuid.UUID{f.subject.ID}})
	require.NoError(t, err)

	_, err = f.availability.Add(f.ctx, f.tutor, AvailabilityRequest{
		DayOfWeek: model.Monday,
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) user(t *testing.T, role model.Role) auth.Principal {
	t.Helper()

	u := &model.User{
		ID:     uuid.New(),
		Name:   string(role),
		Email:  uuid.NewString() + "@example.com",
		Role:   role,
		Status: model.UserStatusActive,
	}
	require.NoError(t, f.store.Repos().Users.Create(f.ctx, u))
	return auth.Principal{ID: u.ID, Role: u.Role, Status: u.Status}
}

// newTutor второй преподаватель со своим профилем и тем же окном по понедельникам
func (f *fixture) newTutor(t *testing.T) (auth.Principal, *model.TutorProfile) {
	t.Helper()

	p := f.user(t, model.RoleTutor)
	profile, err := f.tutors.CreateProfile(f.ctx, p, 30)
	require.NoError(t, err)
	_, err = f.availability.Add(f.ctx, p, AvailabilityRequest{DayOfWeek: model.Monday, StartTime: "09:00", EndTime: "17:00"})
	require.NoError(t, err)
	return p, profile
}

func (f *fixture) newSubject(t *testing.T, name string) *model.Subject {
	t.Helper()

	s := &model.Subject{Name: name, CategoryID: uuid.New()}
	require.NoError(t, f.store.Repos().Subjects.Create(f.ctx, s))
	return s
}

// newSlot свободный часовой слот; каждый вызов берёт следующий час,
// после 16:00 переходит на следующий понедельник
func (f *fixture) newSlot(t *testing.T) *model.TimeSlot {
	t.Helper()

	n := f.nextSlot
	f.nextSlot++

	base, err := timeutil.ParseDate(monday)
	require.NoError(t, err)
	date := base.AddDate(0, 0, 7*(n/8))
	hour := 9 + n%8

	slot, err := f.slots.CreateSlot(f.ctx, f.tutor, SlotRequest{
		Date:      date.Format(model.DateLayout),
		StartTime: fmt.Sprintf("%02d:00", hour),
		EndTime:   fmt.Sprintf("%02d:00", hour+1),
	})
	require.NoError(t, err)
	return slot
}

func (f *fixture) book(t *testing.T, slot *model.TimeSlot) *model.Booking {
	t.Helper()

	b, err := f.bookings.CreateBooking(f.ctx, f.student, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
	require.NoError(t, err)
	return b
}

// bookingIn бронирование, доведённое до нужного статуса
func (f *fixture) bookingIn(t *testing.T, status model.BookingStatus) *model.Booking {
	t.Helper()

	b := f.book(t, f.newSlot(t))
	var err error
	switch status {
	case model.BookingStatusPending:
	case model.BookingStatusConfirmed:
		b, err = f.bookings.ConfirmBooking(f.ctx, f.tutor, b.ID)
	case model.BookingStatusCompleted:
		_, err = f.bookings.ConfirmBooking(f.ctx, f.tutor, b.ID)
		require.NoError(t, err)
		b, err = f.bookings.CompleteBooking(f.ctx, f.tutor, b.ID)
	case model.BookingStatusCancelled:
		b, err = f.bookings.CancelBooking(f.ctx, f.student, b.ID)
	}
	require.NoError(t, err)
	require.Equal(t, status, b.Status)
	return b
}

func (f *fixture) storedSlot(t *testing.T, id uuid.UUID) *model.TimeSlot {
	t.Helper()

	slot, err := f.store.Repos().Slots.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, slot)
	return slot
}
