package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
	drained  bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestNatsPublisher_Publish(t *testing.T) {
	c := &fakeConn{}
	p := newNatsPublisher(c, "tutoring", zap.NewNop())

	ev := Event{
		Type:         BookingCreated,
		BookingID:    uuid.New(),
		StudentID:    uuid.New(),
		Status:       "PENDING",
		BookingPrice: 50,
		OccurredAt:   time.Now().UTC(),
	}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, c.subjects, 1)
	assert.Equal(t, "tutoring.booking.created", c.subjects[0])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(c.payloads[0], &decoded))
	assert.Equal(t, "booking.created", decoded["event_type"])
	assert.Equal(t, ev.BookingID.String(), decoded["booking_id"])
	assert.Equal(t, 50.0, decoded["booking_price"])

	require.NoError(t, p.Close())
	assert.True(t, c.drained)
}

func TestNatsPublisher_NoPrefix(t *testing.T) {
	p := newNatsPublisher(&fakeConn{}, "", zap.NewNop())
	assert.Equal(t, "review.created", p.Subject(ReviewCreated))
}

func TestNatsPublisher_PublishError(t *testing.T) {
	p := newNatsPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "", zap.NewNop())
	err := p.Publish(context.Background(), Event{Type: BookingCancelled})
	assert.ErrorContains(t, err, "connection closed")
}

func TestMulti_DeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	c := &recorder{}

	err := Multi{a, b, c}.Publish(context.Background(), Event{Type: BookingConfirmed})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Len(t, c.got, 1)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
