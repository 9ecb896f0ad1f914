package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ballpark_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the batch.
type Metrics struct {
	PairsProcessed *prometheus.CounterVec // labels: outcome={exported,empty}
	RowsExported   prometheus.Counter
	RunRunning     prometheus.Gauge
	PairDuration   prometheus.Histogram

	// Station resolution metrics.
	StationResolutions *prometheus.CounterVec // labels: source={override,nearest,none}
	CandidatesTried    prometheus.Histogram

	// Meteostat API metrics.
	APIRequests *prometheus.CounterVec   // labels: endpoint={nearby,meta,daily}, outcome={success,error,empty}
	APIDuration *prometheus.HistogramVec // labels: endpoint
	CacheLookup *prometheus.CounterVec   // labels: kind={nearby,meta}, result={hit,miss}

	SinkWrites *prometheus.CounterVec // labels: sink={csv,sqlite,kafka}, outcome={success,error}
}

// NewMetrics creates and registers all batch metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.PairsProcessed,
		m.RowsExported,
		m.RunRunning,
		m.PairDuration,
		m.StationResolutions,
		m.CandidatesTried,
		m.APIRequests,
		m.APIDuration,
		m.CacheLookup,
		m.SinkWrites,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PairsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_processed_total",
			Help:      "(year, stadium) pairs processed by outcome.",
		}, []string{"outcome"}),
		RowsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_exported_total",
			Help:      "Shaped daily rows in the exported table.",
		}),
		RunRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_running",
			Help:      "1 while a batch run is active, 0 otherwise.",
		}),
		PairDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pair_duration_seconds",
			Help:      "Duration of resolving, fetching and shaping one (year, stadium) pair.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_resolutions_total",
			Help:      "Station resolutions by source.",
		}, []string{"source"}),
		CandidatesTried: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "station_candidates_tried",
			Help:      "Nearby stations fetched before one returned data.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meteostat_requests_total",
			Help:      "Meteostat API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "meteostat_request_duration_seconds",
			Help:      "Meteostat API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		CacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_cache_total",
			Help:      "Station directory cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Table writes by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}
}
