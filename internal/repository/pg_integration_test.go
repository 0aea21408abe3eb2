package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/app"
	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type PgStoreIntegrationTestSuite struct {
	suite.Suite
	ctx   context.Context
	pgc   *postgres.PostgresContainer
	pool  *pgxpool.Pool
	store *repository.PgStore
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION") != "1" {
		t.Skip("set INTEGRATION=1 to run postgres integration tests")
	}
	suite.Run(t, new(PgStoreIntegrationTestSuite))
}

func (s *PgStoreIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgc, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tutor"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgc = pgc

	dsn, err := pgc.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(s.ctx, dsn)
	s.Require().NoError(err)

	migrator, err := app.NewMigrator(s.pool, zap.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(migrator.Run(s.ctx))
	version, err := migrator.Version(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(8), version)
	s.Require().NoError(migrator.Close())

	s.store = repository.NewPgStore(s.pool)
}

func (s *PgStoreIntegrationTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgc != nil {
		s.Require().NoError(s.pgc.Terminate(s.ctx))
	}
}

func (s *PgStoreIntegrationTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE reviews, bookings, time_slots, availabilities, educations, tutor_subjects, tutor_profiles, subjects, users CASCADE`)
	s.Require().NoError(err)
}

type seed struct {
	tutor   *model.User
	student *model.User
	profile *model.TutorProfile
	subject *model.Subject
	slot    *model.TimeSlot
}

func (s *PgStoreIntegrationTestSuite) seed() seed {
	r := s.store.Repos()
	var out seed

	out.tutor = &model.User{Name: "Ирина", Email: "tutor@example.com", Role: model.RoleTutor, Status: model.UserStatusActive}
	out.student = &model.User{Name: "Пётр", Email: "student@example.com", Role: model.RoleStudent, Status: model.UserStatusActive}
	s.Require().NoError(r.Users.Create(s.ctx, out.tutor))
	s.Require().NoError(r.Users.Create(s.ctx, out.student))

	out.profile = &model.TutorProfile{UserID: out.tutor.ID, HourlyRate: 25}
	s.Require().NoError(r.Tutors.Create(s.ctx, out.profile))

	out.subject = &model.Subject{Name: "Mathematics", CategoryID: uuid.New()}
	s.Require().NoError(r.Subjects.Create(s.ctx, out.subject))
	s.Require().NoError(r.Tutors.AddSubjects(s.ctx, out.profile.ID, []uuid.UUID{out.subject.ID}))

	_, err := service.NewAvailabilityService(s.store, zap.NewNop()).Add(s.ctx, principalOf(out.tutor), service.AvailabilityRequest{
		DayOfWeek: model.Monday,
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	s.Require().NoError(err)

	out.slot = &model.TimeSlot{
		TutorProfileID: out.profile.ID,
		Date:           time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		StartTime:      "10:00",
		EndTime:        "11:00",
	}
	s.Require().NoError(r.Slots.Create(s.ctx, out.slot))

	return out
}

func principalOf(u *model.User) auth.Principal {
	return auth.Principal{ID: u.ID, Role: u.Role, Status: u.Status}
}

func (s *PgStoreIntegrationTestSuite) TestGetMissingReturnsNil() {
	r := s.store.Repos()

	user, err := r.Users.GetByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(user)

	slot, err := r.Slots.GetByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(slot)
}

func (s *PgStoreIntegrationTestSuite) TestSlotRoundTrip() {
	seeded := s.seed()
	r := s.store.Repos()

	got, err := r.Slots.GetByID(s.ctx, seeded.slot.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.Date.Equal(seeded.slot.Date))
	s.Equal("2026-10-19", got.DateString())
	s.Equal("10:00", got.StartTime)
	s.False(got.IsBooked)

	byDate, err := r.Slots.ListByTutorAndDate(s.ctx, seeded.profile.ID, seeded.slot.Date)
	s.Require().NoError(err)
	s.Len(byDate, 1)

	week, err := r.Slots.ListByTutorRange(s.ctx, seeded.profile.ID, seeded.slot.Date.AddDate(0, 0, 1), seeded.slot.Date.AddDate(0, 0, 7))
	s.Require().NoError(err)
	s.Empty(week)
}

func (s *PgStoreIntegrationTestSuite) TestUniqueConstraintsMapToDomainErrors() {
	seeded := s.seed()
	r := s.store.Repos()

	err := r.Tutors.Create(s.ctx, &model.TutorProfile{UserID: seeded.tutor.ID, HourlyRate: 30})
	s.True(apperr.IsCode(err, apperr.CodeTutorProfileExists))

	first := &model.Booking{
		StudentID:      seeded.student.ID,
		TutorProfileID: seeded.profile.ID,
		SubjectID:      seeded.subject.ID,
		TimeSlotID:     seeded.slot.ID,
		Status:         model.BookingStatusPending,
		BookingPrice:   25,
	}
	s.Require().NoError(r.Bookings.Create(s.ctx, first))

	second := *first
	err = r.Bookings.Create(s.ctx, &second)
	s.True(apperr.IsCode(err, apperr.CodeSlotAlreadyBooked))

	// отменённое бронирование не мешает новому
	s.Require().NoError(r.Bookings.UpdateStatus(s.ctx, first.ID, model.BookingStatusCancelled))
	third := *first
	s.Require().NoError(r.Bookings.Create(s.ctx, &third))

	review := &model.Review{BookingID: third.ID, StudentID: seeded.student.ID, TutorProfileID: seeded.profile.ID, Rating: 4.5}
	s.Require().NoError(r.Reviews.Create(s.ctx, review))
	dup := *review
	err = r.Reviews.Create(s.ctx, &dup)
	s.True(apperr.IsCode(err, apperr.CodeReviewAlreadyExists))
}

func (s *PgStoreIntegrationTestSuite) TestInTxRollsBack() {
	seeded := s.seed()

	err := s.store.InTx(s.ctx, func(ctx context.Context, r *repository.Repositories) error {
		if err := r.Slots.SetBooked(ctx, seeded.slot.ID, true); err != nil {
			return err
		}
		return apperr.ErrSlotBooked
	})
	s.ErrorIs(err, apperr.ErrSlotBooked)

	got, err := s.store.Repos().Slots.GetByID(s.ctx, seeded.slot.ID)
	s.Require().NoError(err)
	s.False(got.IsBooked)
}

func (s *PgStoreIntegrationTestSuite) TestConcurrentBookingsHaveSingleWinner() {
	seeded := s.seed()
	bookings := service.NewBookingService(s.store, service.NewPricingCalculator(), service.Hooks{}, zap.NewNop())

	const students = 10
	principals := make([]auth.Principal, students)
	for i := range principals {
		u := &model.User{Name: "student", Email: uuid.NewString() + "@example.com", Role: model.RoleStudent, Status: model.UserStatusActive}
		s.Require().NoError(s.store.Repos().Users.Create(s.ctx, u))
		principals[i] = principalOf(u)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		losers  int
	)
	for _, p := range principals {
		wg.Add(1)
		go func(p auth.Principal) {
			defer wg.Done()
			_, err := bookings.CreateBooking(s.ctx, p, service.CreateBookingRequest{
				TimeSlotID: seeded.slot.ID,
				SubjectID:  seeded.subject.ID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case apperr.IsCode(err, apperr.CodeSlotAlreadyBooked):
				losers++
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}(p)
	}
	wg.Wait()

	s.Equal(1, winners)
	s.Equal(students-1, losers)

	slot, err := s.store.Repos().Slots.GetByID(s.ctx, seeded.slot.ID)
	s.Require().NoError(err)
	s.True(slot.IsBooked)

	active, err := s.store.Repos().Bookings.FindActiveBySlot(s.ctx, seeded.slot.ID)
	s.Require().NoError(err)
	require.NotNil(s.T(), active)
	assert.Equal(s.T(), 25.0, active.BookingPrice)
}

func (s *PgStoreIntegrationTestSuite) TestEducationRoundTrip() {
	seeded := s.seed()
	tutors := service.NewTutorService(s.store, zap.NewNop())
	tutor := principalOf(seeded.tutor)

	end := 2015
	edu, err := tutors.AddEducation(s.ctx, tutor, service.EducationRequest{
		Institute: "MIPT", Degree: "BSc", FieldOfStudy: "Physics", StartYear: 2011, EndYear: &end,
	})
	s.Require().NoError(err)

	stored, err := s.store.Repos().Education.GetByID(s.ctx, edu.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Require().NotNil(stored.EndYear)
	s.Equal(2015, *stored.EndYear)

	later := 2016
	updated, err := tutors.UpdateEducation(s.ctx, tutor, edu.ID, service.EducationPatch{EndYear: &later})
	s.Require().NoError(err)
	s.True(updated.UpdatedAt.After(stored.UpdatedAt) || updated.UpdatedAt.Equal(stored.UpdatedAt))

	list, err := tutors.ListEducation(s.ctx, seeded.profile.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(2016, *list[0].EndYear)

	err = tutors.DeleteEducation(s.ctx, principalOf(seeded.student), edu.ID)
	s.True(apperr.IsCode(err, apperr.CodeUnauthorized))

	s.Require().NoError(tutors.DeleteEducation(s.ctx, tutor, edu.ID))
	err = tutors.DeleteEducation(s.ctx, tutor, edu.ID)
	s.True(apperr.IsCode(err, apperr.CodeEducationNotFound))
}

func (s *PgStoreIntegrationTestSuite) TestListUsers() {
	seeded := s.seed()

	users, err := s.store.Repos().Users.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(seeded.tutor.ID, users[0].ID)
	s.Equal(seeded.student.ID, users[1].ID)
}
