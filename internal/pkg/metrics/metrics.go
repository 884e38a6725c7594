package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "routeye"

func counter(subsystem, name, help string) prometheus.Counter {
	return promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help})
}

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

func gauge(subsystem, name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help})
}

// Editing sessions.
var (
	RouteComputations = counterVec("editor", "route_computations_total",
		"Route computations by outcome", "outcome")
	RouteComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "editor",
		Name:      "route_compute_duration_seconds",
		Help:      "Duration of routing provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
	StaleResponsesDropped = counter("editor", "stale_responses_dropped_total",
		"Route computation results discarded because a newer request was issued")
	MatcherSelections = counterVec("editor", "matcher_selections_total",
		"Alternatives chosen by the saved-path matcher, by whether index 0 won", "default")
	ActiveSessions = gauge("editor", "active_sessions", "Editing sessions currently open")
	RoutesSaved    = counterVec("editor", "routes_saved_total", "Route saves by outcome", "outcome")
)

// Geozone catalog.
var (
	CatalogRefreshes = counterVec("catalog", "refreshes_total",
		"Geozone catalog refreshes by outcome", "outcome")
	CatalogSize         = gauge("catalog", "geozones", "Geozones in the current catalog snapshot")
	UnresolvedGeofences = counter("catalog", "unresolved_references_total",
		"Geofence references that could not be resolved and were rendered as plain markers")
)

// Transport and storage.
var (
	ActiveWebSockets = gauge("ws", "active_connections", "Open event relay and editor sockets")
	EditorDesyncs    = counter("ws", "editor_desyncs_total",
		"Editor sessions closed because a map command could not be queued")
	CacheHits        = counterVec("cache", "hits_total", "Cache hits by operation", "operation")
	CacheMisses      = counterVec("cache", "misses_total", "Cache misses by operation", "operation")

	dbPoolConns = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "pool_conns",
		Help:      "Database pool connections by state",
	}, []string{"state"})
)

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies pool stats into the pool gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	dbPoolConns.WithLabelValues("acquired").Set(float64(s.AcquiredConns()))
	dbPoolConns.WithLabelValues("idle").Set(float64(s.IdleConns()))
	dbPoolConns.WithLabelValues("total").Set(float64(s.TotalConns()))
}
