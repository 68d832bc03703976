package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// исходы запроса каталога с точки зрения кэша
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeBypass  = "bypass"
	OutcomeError   = "error"   // хранилище недоступно при чтении
	OutcomeCorrupt = "corrupt" // значение в кэше не декодируется
)

// Catalog — счётчики пути чтения каталога
type Catalog struct {
	CacheRequests    *prometheus.CounterVec
	CacheWriteErrors prometheus.Counter
	EngineDuration   prometheus.Histogram
}

// NewCatalog создаёт метрики и регистрирует их в reg
// в тестах передаётся свежий prometheus.NewRegistry()
func NewCatalog(reg prometheus.Registerer) *Catalog {
	m := &Catalog{
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tsb",
			Subsystem: "catalog",
			Name:      "cache_requests_total",
			Help:      "Catalog reads by cache outcome.",
		}, []string{"outcome"}),
		CacheWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tsb",
			Subsystem: "catalog",
			Name:      "cache_write_errors_total",
			Help:      "Failed best-effort cache writes.",
		}),
		EngineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tsb",
			Subsystem: "catalog",
			Name:      "query_duration_seconds",
			Help:      "Duration of the catalog join query.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.CacheRequests, m.CacheWriteErrors, m.EngineDuration)
	return m
}
