package service

import (
	"sync"
	"testing"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	slot, err := f.slots.CreateSlot(f.ctx, f.tutor, SlotRequest{Date: monday, StartTime: "10:00", EndTime: "12:00"})
	require.NoError(t, err)

	b, err := f.bookings.CreateBooking(f.ctx, f.student, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, 50.0, b.BookingPrice)
	assert.Equal(t, f.student.ID, b.StudentID)
	assert.Equal(t, f.profile.ID, b.TutorProfileID)
	assert.True(t, f.storedSlot(t, slot.ID).IsBooked)
	assert.Equal(t, []events.Type{events.BookingCreated}, f.pub.types())
}

func TestCreateBooking_PriceFrozenAfterRateChange(t *testing.T) {
	f := newFixture(t)

	slot, err := f.slots.CreateSlot(f.ctx, f.tutor, SlotRequest{Date: monday, StartTime: "13:00", EndTime: "15:00"})
	require.NoError(t, err)
	b := f.book(t, slot)
	require.Equal(t, 50.0, b.BookingPrice)

	_, err = f.tutors.UpdateHourlyRate(f.ctx, f.tutor, 80)
	require.NoError(t, err)

	stored, err := f.store.Repos().Bookings.GetByID(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.BookingPrice)

	// новое бронирование идёт уже по новой ставке
	next := f.book(t, f.newSlot(t))
	assert.Equal(t, 80.0, next.BookingPrice)
}

func TestCreateBooking_Failures(t *testing.T) {
	f := newFixture(t)
	slot := f.newSlot(t)
	other := f.newSubject(t, "Chemistry")

	_, err := f.bookings.CreateBooking(f.ctx, f.student, CreateBookingRequest{TimeSlotID: uuid.New(), SubjectID: f.subject.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeSlotNotFound))

	_, err = f.bookings.CreateBooking(f.ctx, f.student, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: other.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeSubjectNotTaught))

	_, err = f.bookings.CreateBooking(f.ctx, f.student, CreateBookingRequest{TimeSlotID: slot.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))

	_, err = f.bookings.CreateBooking(f.ctx, f.tutor, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	f.book(t, slot)
	second := f.user(t, model.RoleStudent)
	_, err = f.bookings.CreateBooking(f.ctx, second, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeSlotAlreadyBooked))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateBooking_StaleFlag(t *testing.T) {
	f := newFixture(t)
	slot := f.newSlot(t)

	// активное бронирование есть, а флаг слота не выставлен
	require.NoError(t, f.store.Repos().Bookings.Create(f.ctx, &model.Booking{
		StudentID:      uuid.New(),
		TutorProfileID: f.profile.ID,
		SubjectID:      f.subject.ID,
		TimeSlotID:     slot.ID,
		Status:         model.BookingStatusConfirmed,
		BookingPrice:   25,
	}))
	require.False(t, f.storedSlot(t, slot.ID).IsBooked)

	_, err := f.bookings.CreateBooking(f.ctx, f.student, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeSlotAlreadyBooked))
}

func TestCreateBooking_InvalidRateRollsBack(t *testing.T) {
	f := newFixture(t)
	slot := f.newSlot(t)

	require.NoError(t, f.store.Repos().Tutors.UpdateHourlyRate(f.ctx, f.profile.ID, 0))

	_, err := f.bookings.CreateBooking(f.ctx, f.student, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidHourlyRate))

	assert.False(t, f.storedSlot(t, slot.ID).IsBooked)
	list, err := f.store.Repos().Bookings.ListByStudent(f.ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateBooking_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	slot := f.newSlot(t)

	const n = 24
	students := make([]auth.Principal, n)
	for i := range students {
		students[i] = f.user(t, model.RoleStudent)
	}

	var (
		wg     sync.WaitGroup
		start  = make(chan struct{})
		errs   = make([]error, n)
		ok     = make([]bool, n)
		winner uuid.UUID
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			b, err := f.bookings.CreateBooking(f.ctx, students[i], CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
			errs[i] = err
			if err == nil {
				ok[i] = true
				winner = b.StudentID
			}
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for i := 0; i < n; i++ {
		if ok[i] {
			successes++
			continue
		}
		assert.True(t, apperr.IsCode(errs[i], apperr.CodeSlotAlreadyBooked), "attempt %d: %v", i, errs[i])
	}
	require.Equal(t, 1, successes)
	assert.True(t, f.storedSlot(t, slot.ID).IsBooked)

	active, err := f.store.Repos().Bookings.ListByTutor(f.ctx, f.profile.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, winner, active[0].StudentID)
	assert.Equal(t, model.BookingStatusPending, active[0].Status)
}

func TestBookingStateMachine_AllTransitions(t *testing.T) {
	type action string
	const (
		cancel   action = "cancel"
		confirm  action = "confirm"
		complete action = "complete"
	)

	expected := map[model.BookingStatus]map[action]string{
		model.BookingStatusPending: {
			cancel:   "",
			confirm:  "",
			complete: apperr.CodeInvalidStatus,
		},
		model.BookingStatusConfirmed: {
			cancel:   apperr.CodeBookingConfirmed,
			confirm:  apperr.CodeInvalidStatus,
			complete: "",
		},
		model.BookingStatusCompleted: {
			cancel:   apperr.CodeCannotCancelComplete,
			confirm:  apperr.CodeInvalidStatus,
			complete: apperr.CodeInvalidStatus,
		},
		model.BookingStatusCancelled: {
			cancel:   apperr.CodeAlreadyCancelled,
			confirm:  apperr.CodeInvalidStatus,
			complete: apperr.CodeInvalidStatus,
		},
	}
	next := map[action]model.BookingStatus{
		cancel:   model.BookingStatusCancelled,
		confirm:  model.BookingStatusConfirmed,
		complete: model.BookingStatusCompleted,
	}

	for from, actions := range expected {
		for act, wantCode := range actions {
			t.Run(string(from)+"/"+string(act), func(t *testing.T) {
				f := newFixture(t)
				b := f.bookingIn(t, from)

				var (
					got *model.Booking
					err error
				)
				switch act {
				case cancel:
					got, err = f.bookings.CancelBooking(f.ctx, f.student, b.ID)
				case confirm:
					got, err = f.bookings.ConfirmBooking(f.ctx, f.tutor, b.ID)
				case complete:
					got, err = f.bookings.CompleteBooking(f.ctx, f.tutor, b.ID)
				}

				stored, getErr := f.store.Repos().Bookings.GetByID(f.ctx, b.ID)
				require.NoError(t, getErr)

				if wantCode == "" {
					require.NoError(t, err)
					assert.Equal(t, next[act], got.Status)
					assert.Equal(t, next[act], stored.Status)
					assert.True(t, from.CanTransitionTo(next[act]))
					return
				}

				assert.True(t, apperr.IsCode(err, wantCode), "got %v", err)
				assert.Equal(t, from, stored.Status)
				assert.False(t, from.CanTransitionTo(next[act]))
			})
		}
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	slot := f.newSlot(t)
	b := f.book(t, slot)

	stranger := f.user(t, model.RoleStudent)
	_, err := f.bookings.CancelBooking(f.ctx, stranger, b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	_, err = f.bookings.CancelBooking(f.ctx, f.student, uuid.New())
	assert.True(t, apperr.IsCode(err, apperr.CodeBookingNotFound))

	cancelled, err := f.bookings.CancelBooking(f.ctx, f.student, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	assert.False(t, f.storedSlot(t, slot.ID).IsBooked)

	// слот снова можно забронировать
	again, err := f.bookings.CreateBooking(f.ctx, stranger, CreateBookingRequest{TimeSlotID: slot.ID, SubjectID: f.subject.ID})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, again.Status)
	assert.True(t, f.storedSlot(t, slot.ID).IsBooked)

	assert.Equal(t, []events.Type{events.BookingCreated, events.BookingCancelled, events.BookingCreated}, f.pub.types())
}

func TestCancelBooking_Confirmed(t *testing.T) {
	f := newFixture(t)
	b := f.bookingIn(t, model.BookingStatusConfirmed)

	_, err := f.bookings.CancelBooking(f.ctx, f.student, b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeBookingConfirmed))
	assert.True(t, f.storedSlot(t, b.TimeSlotID).IsBooked)
}

func TestConfirmBooking_Authorization(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, f.newSlot(t))

	otherTutor, _ := f.newTutor(t)
	_, err := f.bookings.ConfirmBooking(f.ctx, otherTutor, b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotAuthorized))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.bookings.ConfirmBooking(f.ctx, f.student, b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	_, err = f.bookings.ConfirmBooking(f.ctx, f.tutor, uuid.New())
	assert.True(t, apperr.IsCode(err, apperr.CodeBookingNotFound))
}

func TestConfirmBooking_BannedAccounts(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, f.newSlot(t))

	_, err := f.admin.UpdateUserStatus(f.ctx, f.root, UpdateUserStatusRequest{UserID: f.student.ID, Status: model.UserStatusBanned})
	require.NoError(t, err)

	_, err = f.bookings.ConfirmBooking(f.ctx, f.tutor, b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeAccountBanned))

	banned := f.tutor
	banned.Status = model.UserStatusBanned
	_, err = f.bookings.ConfirmBooking(f.ctx, banned, b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeAccountBanned))

	stored, err := f.store.Repos().Bookings.GetByID(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, stored.Status)
}

func TestCompleteBooking_BannedTutorInStore(t *testing.T) {
	f := newFixture(t)
	b := f.bookingIn(t, model.BookingStatusConfirmed)

	require.NoError(t, f.store.Repos().Users.UpdateStatus(f.ctx, f.tutor.ID, model.UserStatusBanned))

	_, err := f.bookings.CompleteBooking(f.ctx, f.tutor, b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeAccountBanned))
}

func TestGetBooking_Visibility(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, f.newSlot(t))

	got, err := f.bookings.GetBooking(f.ctx, f.student, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Slot)
	assert.Equal(t, b.TimeSlotID, got.Slot.ID)

	_, err = f.bookings.GetBooking(f.ctx, f.tutor, b.ID)
	require.NoError(t, err)

	_, err = f.bookings.GetBooking(f.ctx, f.user(t, model.RoleStudent), b.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeBookingNotFound))

	mine, err := f.bookings.ListStudentBookings(f.ctx, f.student)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	tutorList, err := f.bookings.ListTutorBookings(f.ctx, f.tutor)
	require.NoError(t, err)
	assert.Len(t, tutorList, 1)
}
