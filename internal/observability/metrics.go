package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	mutations    *CounterVec
	mutationTime *HistogramVec
	fieldErrors  *CounterVec
	events       *CounterVec
	jobRuns      *CounterVec
	jobLatency   *HistogramVec
	dbStats      *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, or nil when metrics are disabled.
// All Metrics methods accept a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
	})
	return instance
}

// New returns an unregistered Metrics; tests use it directly.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("crm_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"crm_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("crm_api_inflight_requests", "In-flight API requests."),
		mutations:   NewCounterVec("crm_mutations_total", "Mutation outcomes by operation.", []string{"operation", "outcome"}),
		mutationTime: NewHistogramVec(
			"crm_mutation_duration_seconds",
			"Mutation latency in seconds by operation.",
			[]string{"operation"},
			nil,
		),
		fieldErrors: NewCounterVec("crm_field_errors_total", "Field errors returned by mutations, by operation/code.", []string{"operation", "code"}),
		events:      NewCounterVec("crm_events_published_total", "Domain events published to or logged from the event bus, by type/status.", []string{"type", "status"}),
		jobRuns:     NewCounterVec("crm_job_runs_total", "Background job runs by job/status.", []string{"job", "status"}),
		jobLatency: NewHistogramVec(
			"crm_job_duration_seconds",
			"Background job duration in seconds.",
			[]string{"job"},
			[]float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		),
		dbStats: NewGaugeVec("crm_db_pool", "database/sql pool statistics.", []string{"stat"}),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.mutations, m.mutationTime, m.fieldErrors,
		m.events, m.jobRuns, m.jobLatency, m.dbStats,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveMutation records one mutation call. outcome is "committed",
// "rejected" or "partial".
func (m *Metrics) ObserveMutation(operation, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.mutations.Inc(operation, outcome)
	m.mutationTime.Observe(dur.Seconds(), operation)
}

func (m *Metrics) IncFieldError(operation, code string) {
	if m == nil {
		return
	}
	m.fieldErrors.Inc(operation, code)
}

func (m *Metrics) FieldErrorCount(operation, code string) float64 {
	if m == nil {
		return 0
	}
	return m.fieldErrors.Value(operation, code)
}

func (m *Metrics) IncEvent(eventType, status string) {
	if m == nil {
		return
	}
	m.events.Inc(eventType, status)
}

func (m *Metrics) ObserveJob(job, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.Inc(job, status)
	m.jobLatency.Observe(dur.Seconds(), job)
}

// StartDBCollector samples connection pool stats every interval.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}
