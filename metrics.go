package i18nbackend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "i18nbackend"

// Metrics holds the Prometheus collectors updated by a Backend.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CacheLookups *prometheus.CounterVec
	Reads        *prometheus.CounterVec
	MissingKeys  *prometheus.CounterVec
	ReadDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Namespace cache lookups by result.",
		}, []string{"result"}),
		Reads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reads_total",
			Help:      "Completed namespace reads by the source that answered them.",
		}, []string{"source"}),
		MissingKeys: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "missing_keys_total",
			Help:      "Missing-key records by delivery result.",
		}, []string{"result"}),
		ReadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "read_duration_seconds",
			Help:      "Time taken to complete a namespace read.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) read(source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Reads.WithLabelValues(source).Inc()
	m.ReadDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) missingKeys(result string, n int) {
	if m == nil {
		return
	}
	m.MissingKeys.WithLabelValues(result).Add(float64(n))
}
