package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_gateway_calls_total",
		Help: "Gateway calls by operation and outcome",
	}, []string{"operation", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_gateway_call_duration_seconds",
		Help:    "Latency of gateway calls including local validation",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})
)

func outcome(kind ErrorKind) string {
	if kind == "" {
		return "success"
	}
	return string(kind)
}
