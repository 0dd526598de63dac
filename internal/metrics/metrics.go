package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sokinpui/maano.go/model"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maano",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "maano",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "maano",
			Subsystem: "api",
			Name:      "provider_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model", "provider", "outcome"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maano",
			Subsystem: "api",
			Name:      "provider_errors_total",
			Help:      "Total provider call failures",
		},
		[]string{"model", "provider"},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maano",
			Subsystem: "api",
			Name:      "tokens_total",
			Help:      "Tokens reported by providers",
		},
		[]string{"model", "provider", "direction"},
	)

	HistoryDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maano",
			Subsystem: "api",
			Name:      "history_dropped_total",
			Help:      "Conversation records dropped because the saver was busy",
		},
	)
)

// RecordRequest records one finished HTTP request.
func RecordRequest(method, endpoint, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(seconds)
}

// Observer feeds engine call statistics into the provider metrics.
type Observer struct{}

func (Observer) ObserveCall(s model.CallStats) {
	provider := string(s.Provider)
	outcome := "success"
	if s.Err != nil {
		outcome = "error"
		ProviderErrorsTotal.WithLabelValues(s.ModelID, provider).Inc()
	}
	ProviderDuration.WithLabelValues(s.ModelID, provider, outcome).Observe(s.Duration.Seconds())
	if s.Tokens.Input > 0 {
		TokensTotal.WithLabelValues(s.ModelID, provider, "input").Add(float64(s.Tokens.Input))
	}
	if s.Tokens.Output > 0 {
		TokensTotal.WithLabelValues(s.ModelID, provider, "output").Add(float64(s.Tokens.Output))
	}
}
