package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	placementTotal  *prometheus.CounterVec
	storeWrites     *prometheus.CounterVec
	conflictGauge   prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
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

	placementTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_placements_total",
		Help: "Placement attempts by outcome",
	}, []string{"outcome"})

	storeWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_store_writes_total",
		Help: "Snapshot store writes by result",
	}, []string{"result"})

	conflictGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_conflicts",
		Help: "Teacher double bookings found in the last conflict scan",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, placementTotal, storeWrites, conflictGauge, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		placementTotal:  placementTotal,
		storeWrites:     storeWrites,
		conflictGauge:   conflictGauge,
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

// RecordPlacement counts a placement attempt by outcome label.
func (m *MetricsService) RecordPlacement(outcome string) {
	if m == nil {
		return
	}
	m.placementTotal.WithLabelValues(outcome).Inc()
}

// RecordStoreWrite counts a snapshot store write.
func (m *MetricsService) RecordStoreWrite(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.storeWrites.WithLabelValues(result).Inc()
}

// SetConflictCount updates the double booking gauge.
func (m *MetricsService) SetConflictCount(n int) {
	if m == nil {
		return
	}
	m.conflictGauge.Set(float64(n))
}
