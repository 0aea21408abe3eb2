package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// conn часть *nats.Conn, которая нужна публикатору
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NatsPublisher struct {
	conn   conn
	prefix string
	logger *zap.Logger
}

// NewNatsPublisher подключается к NATS. Тема события: prefix + "." + тип.
func NewNatsPublisher(url, prefix string, logger *zap.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("tutor-scheduler"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return newNatsPublisher(nc, prefix, logger), nil
}

func newNatsPublisher(c conn, prefix string, logger *zap.Logger) *NatsPublisher {
	return &NatsPublisher{conn: c, prefix: prefix, logger: logger}
}

func (p *NatsPublisher) Subject(t Type) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

func (p *NatsPublisher) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := p.Subject(ev.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to nats: %w", err)
	}

	p.logger.Debug("Event published",
		zap.String("subject", subject),
		zap.String("booking_id", ev.BookingID.String()))

	return nil
}

// Close дожидается отправки буфера и закрывает соединение
func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}
