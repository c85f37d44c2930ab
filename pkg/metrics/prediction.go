package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the prediction HTTP handler
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "price_prediction_latency_seconds",
		Help:    "Latency of the price prediction handler",
		Buckets: prometheus.DefBuckets,
	})

	// Prediction requests by outcome: ok, client_error, unavailable
	PredictionRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_prediction_requests_total",
		Help: "Total number of price prediction requests by outcome",
	}, []string{"outcome"})

	// Predictions whose log row could not be written
	PredictionPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_prediction_persist_failures_total",
		Help: "Total number of predictions returned without being recorded",
	})

	// Number of commodities with a fitted model in the loaded artifact
	ModelsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "price_prediction_models_loaded",
		Help: "Number of commodity models held in memory",
	})
)

func Init() {
	prometheus.MustRegister(
		PredictionLatency,
		PredictionRequests,
		PredictionPersistFailures,
		ModelsLoaded,
	)
}
