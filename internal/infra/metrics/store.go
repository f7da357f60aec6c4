package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns, cacheRequestsTotal) }

var (
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_connections",
			Help: "Connections of the store pool by state.",
		},
		[]string{"driver", "state"}, // state: 'total', 'idle', 'in_use'
	)

	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups in front of the store.",
		},
		[]string{"cache", "result"}, // cache="owner", result: 'hit', 'miss', 'error'
	)
)

func SetDBPoolStats(driver string, total, idle, inUse int) {
	d := norm(driver)
	dbPoolConns.WithLabelValues(d, "total").Set(float64(total))
	dbPoolConns.WithLabelValues(d, "idle").Set(float64(idle))
	dbPoolConns.WithLabelValues(d, "in_use").Set(float64(inUse))
}

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}
