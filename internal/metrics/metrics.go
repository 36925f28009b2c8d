package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for cepo
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Admission
	AdmissionRejectionsTotal prometheus.Counter
	ClientsActive            prometheus.Gauge

	// Feed Metrics
	FeedFetchTotal    *prometheus.CounterVec
	FeedFetchDuration *prometheus.HistogramVec
	FeedCacheHits     prometheus.Counter

	// Storage Metrics
	StoreWritesTotal   *prometheus.CounterVec
	StoreSkippedFiles  prometheus.Counter
	ArchiveWritesTotal *prometheus.CounterVec

	// Business Metrics
	MergedFlightsTotal *prometheus.CounterVec
	EditsTotal         *prometheus.CounterVec
	JournalSize        prometheus.Gauge
	SyncJobDuration    *prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cepo_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cepo_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cepo_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		AdmissionRejectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cepo_admission_rejections_total",
				Help: "Requests refused because the client reached its concurrent request ceiling",
			},
		),
		ClientsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cepo_clients_active",
				Help: "Client addresses with at least one request in progress",
			},
		),

		// Feed Metrics
		FeedFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cepo_feed_fetch_total",
				Help: "OGN logbook fetches by airfield and outcome",
			},
			[]string{"airfield", "outcome"},
		),
		FeedFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cepo_feed_fetch_duration_seconds",
				Help:    "OGN logbook fetch latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"airfield"},
		),
		FeedCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cepo_feed_cache_hits_total",
				Help: "OGN logbook fetches served from the response cache",
			},
		),

		// Storage Metrics
		StoreWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cepo_store_writes_total",
				Help: "Day store file writes by kind (flight, crew) and outcome (written, unchanged, failed)",
			},
			[]string{"kind", "outcome"},
		),
		StoreSkippedFiles: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cepo_store_skipped_files_total",
				Help: "Flight files dropped on load because they could not be read or parsed",
			},
		),
		ArchiveWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cepo_archive_writes_total",
				Help: "Day archive writes by outcome",
			},
			[]string{"outcome"},
		),

		// Business Metrics
		MergedFlightsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cepo_merged_flights_total",
				Help: "Feed flights reconciled by airfield and outcome (enriched, corrected, appended)",
			},
			[]string{"airfield", "outcome"},
		),
		EditsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cepo_edits_total",
				Help: "Field edits by outcome (applied, ignored)",
			},
			[]string{"outcome"},
		),
		JournalSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cepo_updates_journal_size",
				Help: "Entries currently retained in the recent updates journal",
			},
		),
		SyncJobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cepo_sync_job_duration_seconds",
				Help:    "OGN sync job execution time in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"airfield"},
		),
	}
}

// The helpers below accept a nil receiver so components can run without metrics.

func (m *MetricsRegistry) ObserveFeedFetch(airfield, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FeedFetchTotal.WithLabelValues(airfield, outcome).Inc()
	m.FeedFetchDuration.WithLabelValues(airfield).Observe(d.Seconds())
}

func (m *MetricsRegistry) IncFeedCacheHit() {
	if m == nil {
		return
	}
	m.FeedCacheHits.Inc()
}

func (m *MetricsRegistry) AddStoreWrites(kind, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.StoreWritesTotal.WithLabelValues(kind, outcome).Add(float64(n))
}

func (m *MetricsRegistry) AddSkippedFiles(n int) {
	if m == nil || n == 0 {
		return
	}
	m.StoreSkippedFiles.Add(float64(n))
}

func (m *MetricsRegistry) IncArchiveWrite(outcome string) {
	if m == nil {
		return
	}
	m.ArchiveWritesTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsRegistry) AddMerged(airfield, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.MergedFlightsTotal.WithLabelValues(airfield, outcome).Add(float64(n))
}

func (m *MetricsRegistry) IncEdit(outcome string) {
	if m == nil {
		return
	}
	m.EditsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsRegistry) SetJournalSize(n int) {
	if m == nil {
		return
	}
	m.JournalSize.Set(float64(n))
}

func (m *MetricsRegistry) SetClientsActive(n int) {
	if m == nil {
		return
	}
	m.ClientsActive.Set(float64(n))
}

func (m *MetricsRegistry) IncAdmissionRejection() {
	if m == nil {
		return
	}
	m.AdmissionRejectionsTotal.Inc()
}

func (m *MetricsRegistry) ObserveSyncJob(airfield string, d time.Duration) {
	if m == nil {
		return
	}
	m.SyncJobDuration.WithLabelValues(airfield).Observe(d.Seconds())
}
