package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

type Manager struct {
	// counters
	CounterRequests                *prometheus.CounterVec
	CounterHandleRequestPanic      prometheus.Counter
	CounterRateLimitedRequests     prometheus.Counter
	CounterMeasurementsIngested    prometheus.Counter
	CounterSeriesReconstructed     *prometheus.CounterVec
	CounterSeriesCache             *prometheus.CounterVec
	CounterInvalidReferenceScaling prometheus.Counter

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistogramRequestDuration        *prometheus.HistogramVec
	HistogramReconstructionDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("nutrition", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("nutrition", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterMeasurementsIngested := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "measurements_ingested",
		Help:      "The total number of stored measurements",
	})
	counterSeriesReconstructed := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "series_reconstructed",
		Help:      "The total number of reconstructed daily series",
	}, []string{"mode"})
	counterSeriesCache := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "series_cache_lookups",
		Help:      "Series cache lookups by result",
	}, []string{"result"})
	counterInvalidReferenceScaling := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "invalid_reference_scaling",
		Help:      "Scaling requests answered unscaled because the reference quantity was zero",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})
	histogramReconstructionDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "series_reconstruction_duration_seconds",
		Help:      "Time spent reconstructing a daily series, source read excluded",
		Buckets:   []float64{.00001, .0001, .0005, .001, .005, .01, .05, .1},
	}, []string{"mode"})

	return &Manager{
		CounterRequests:                 counterRequests,
		CounterHandleRequestPanic:       counterHandleRequestPanic,
		CounterRateLimitedRequests:      counterRateLimitedRequests,
		CounterMeasurementsIngested:     counterMeasurementsIngested,
		CounterSeriesReconstructed:      counterSeriesReconstructed,
		CounterSeriesCache:              counterSeriesCache,
		CounterInvalidReferenceScaling:  counterInvalidReferenceScaling,
		GaugeRequests:                   gaugeRequests,
		GaugeLifeSignal:                 gaugeLifeSignal,
		HistogramRequestDuration:        histogramRequestDuration,
		HistogramReconstructionDuration: histogramReconstructionDuration,
	}
}
