package metrics

import (
	"errors"
	"testing"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ResultLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBooking("create", nil)
	m.ObserveBooking("create", nil)
	m.ObserveBooking("create", apperr.ErrSlotAlreadyBooked)
	m.ObserveSlot("delete", apperr.ErrSlotBooked.WithDetail("timeSlotId", "booked"))
	m.ObserveJob("generate_slots", errors.New("db down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("create", apperr.CodeSlotAlreadyBooked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.slots.WithLabelValues("delete", apperr.CodeSlotBooked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("generate_slots", apperr.CodeInternal)))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
