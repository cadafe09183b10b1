// Package metrics — метрики Prometheus сервиса скоринга.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — коллекторы сервиса.
type Metrics struct {
	Requests         *prometheus.CounterVec
	Latency          *prometheus.HistogramVec
	ScoreCacheHits   prometheus.Counter
	ScoreCacheMisses prometheus.Counter
	StoreErrors      *prometheus.CounterVec
	InterestAttempts prometheus.Counter
	InterestFailures prometheus.Counter
	AuthFailures     prometheus.Counter
}

// New создаёт метрики и регистрирует их в reg. В тестах удобно
// передавать свежий prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_requests_total",
			Help: "Processed method requests, labeled by method and response code",
		}, []string{"method", "code"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoring_request_duration_seconds",
			Help:    "Method request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		ScoreCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_score_cache_hits_total",
			Help: "Score lookups served from cache",
		}),
		ScoreCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_score_cache_misses_total",
			Help: "Score lookups that required computation",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_store_errors_total",
			Help: "Store call failures, labeled by operation",
		}, []string{"op"}),
		InterestAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_interest_attempts_total",
			Help: "Interest lookup attempts against the store",
		}),
		InterestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_interest_failures_total",
			Help: "Interest requests that failed after all attempts",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_auth_failures_total",
			Help: "Requests rejected by token check",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.Latency,
		m.ScoreCacheHits,
		m.ScoreCacheMisses,
		m.StoreErrors,
		m.InterestAttempts,
		m.InterestFailures,
		m.AuthFailures,
	)
	return m
}

// ObserveRequest учитывает завершённый запрос.
func (m *Metrics) ObserveRequest(method string, code int, seconds float64) {
	if method == "" {
		method = "unknown"
	}
	m.Requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.Latency.WithLabelValues(method).Observe(seconds)
}

// RegisterPool публикует размер пула соединений хранилища.
func RegisterPool(reg prometheus.Registerer, stats func() (total, idle uint32)) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "scoring_store_pool_total_conns",
			Help: "Number of total connections in the store pool",
		}, func() float64 {
			total, _ := stats()
			return float64(total)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "scoring_store_pool_idle_conns",
			Help: "Number of idle connections in the store pool",
		}, func() float64 {
			_, idle := stats()
			return float64(idle)
		}),
	)
}
