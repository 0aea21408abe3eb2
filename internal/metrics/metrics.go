// Package metrics счётчики Prometheus для операций расписания и бронирований.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Metrics struct {
	bookings *prometheus.CounterVec
	slots    *prometheus.CounterVec
	jobs     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		bookings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tutor_booking_operations_total",
				Help: "Booking operations by action and result code",
			},
			[]string{"action", "result"},
		),
		slots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tutor_slot_operations_total",
				Help: "Time slot operations by action and result code",
			},
			[]string{"action", "result"},
		),
		jobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tutor_scheduler_jobs_total",
				Help: "Background job runs by job and result",
			},
			[]string{"job", "result"},
		),
	}
}

// result "ok", машинный код ошибки или INTERNAL_ERROR
func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := apperr.CodeOf(err); code != "" {
		return code
	}
	return apperr.CodeInternal
}

func (m *Metrics) ObserveBooking(action string, err error) {
	m.bookings.WithLabelValues(action, result(err)).Inc()
}

func (m *Metrics) ObserveSlot(action string, err error) {
	m.slots.WithLabelValues(action, result(err)).Inc()
}

func (m *Metrics) ObserveJob(job string, err error) {
	m.jobs.WithLabelValues(job, result(err)).Inc()
}

// Serve отдаёт /metrics до отмены контекста
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics server started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
