package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    APILatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "edgefinder",
            Subsystem: "api",
            Name:      "latency_seconds",
            Help:      "Latency of sentiment endpoints",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"endpoint"},
    )

    APIErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "edgefinder",
            Subsystem: "api",
            Name:      "errors_total",
            Help:      "Errors by sentiment endpoint",
        },
        []string{"endpoint", "code"},
    )

    RateLimited = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "edgefinder",
            Subsystem: "api",
            Name:      "rate_limited_total",
            Help:      "Requests rejected by the per-client rate limiter",
        },
    )

    LiveConnections = prometheus.NewGauge(
        prometheus.GaugeOpts{
            Namespace: "edgefinder",
            Subsystem: "ws",
            Name:      "connections",
            Help:      "Open live sentiment websocket connections",
        },
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(APILatency, APIErrors, RateLimited, LiveConnections)
    })
}
