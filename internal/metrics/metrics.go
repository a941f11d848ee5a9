// Package metrics holds the service's Prometheus collectors. The
// counters are package-level so any layer can increment them without
// threading a registry through; they are served on /metrics by the
// router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodesIssued counts tickets successfully written by the code
	// generator.
	CodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoplottery_codes_issued_total",
		Help: "Ticket codes successfully issued.",
	})

	// CodeCollisions counts sampled suffixes rejected because the key
	// was already claimed. A rising rate means a shop is approaching
	// its suffix space.
	CodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoplottery_code_collisions_total",
		Help: "Generated codes rejected due to an existing key.",
	})

	// PrizesCreated counts prize record pairs written.
	PrizesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoplottery_prizes_created_total",
		Help: "Prize record pairs created.",
	})

	// CacheHits counts session cache reads served from memory.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoplottery_session_cache_hits_total",
		Help: "Session cache reads answered without a store scan.",
	})

	// CacheMisses counts session cache reads that fell through to the
	// store.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoplottery_session_cache_misses_total",
		Help: "Session cache reads that required a store scan.",
	})
)
