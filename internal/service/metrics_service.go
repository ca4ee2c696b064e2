package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the registration engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	enrollments     prometheus.Counter
	withdrawals     prometheus.Counter
	confirmations   prometheus.Counter
	slotConflicts   *prometheus.CounterVec
	rolloverSeconds prometheus.Observer
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	enrollments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registration_enrollments_total",
		Help: "Total successful course enrollments",
	})

	withdrawals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registration_withdrawals_total",
		Help: "Total course withdrawals",
	})

	confirmations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registration_confirmations_total",
		Help: "Total confirmed semester registrations",
	})

	slotConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_slot_conflicts_total",
		Help: "Rejected schedule assignments by conflicting resource",
	}, []string{"resource"})

	rolloverSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "semester_rollover_duration_seconds",
		Help:    "Duration of semester rollover transactions",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, enrollments, withdrawals, confirmations, slotConflicts, rolloverSeconds, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		enrollments:     enrollments,
		withdrawals:     withdrawals,
		confirmations:   confirmations,
		slotConflicts:   slotConflicts,
		rolloverSeconds: rolloverSeconds,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordEnrollment counts a successful enrollment.
func (m *MetricsService) RecordEnrollment() {
	if m != nil {
		m.enrollments.Inc()
	}
}

// RecordWithdrawal counts a withdrawal.
func (m *MetricsService) RecordWithdrawal() {
	if m != nil {
		m.withdrawals.Inc()
	}
}

// RecordConfirmation counts a confirmed registration.
func (m *MetricsService) RecordConfirmation() {
	if m != nil {
		m.confirmations.Inc()
	}
}

// RecordSlotConflict counts a rejected schedule assignment. Resource is
// "room" or "faculty".
func (m *MetricsService) RecordSlotConflict(resource string) {
	if m != nil {
		m.slotConflicts.WithLabelValues(resource).Inc()
	}
}

// ObserveRollover records how long a semester rollover took.
func (m *MetricsService) ObserveRollover(duration time.Duration) {
	if m != nil {
		m.rolloverSeconds.Observe(duration.Seconds())
	}
}
