// Package metrics holds the Prometheus instrumentation the ipintel facade
// attaches to a Manager: lookup/evidence counters and latency, reload
// counters, all created through promauto the way internal/obs does it in
// the vector-database example this pack also carries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is every counter/histogram a Manager records. A nil *Metrics is
// valid everywhere it's used (each recording method is a no-op on a nil
// receiver), so instrumentation stays optional without every call site
// needing its own enabled check.
type Metrics struct {
	Lookups         prometheus.Counter
	LookupErrors    prometheus.Counter
	LookupLatency   prometheus.Histogram
	EvidenceLookups prometheus.Counter
	Reloads         prometheus.Counter
	ReloadErrors    prometheus.Counter
}

// New creates and registers a fresh set of metrics against the default
// registry.
func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipintel_lookups_total",
			Help: "Total FromIP/FromIPString lookups performed.",
		}),
		LookupErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipintel_lookup_errors_total",
			Help: "Total lookups that returned an error.",
		}),
		LookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "ipintel_lookup_latency_seconds",
			Help: "Latency of a single address resolution.",
		}),
		EvidenceLookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipintel_evidence_lookups_total",
			Help: "Total FromEvidence lookups performed.",
		}),
		Reloads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipintel_reloads_total",
			Help: "Total successful data set reloads.",
		}),
		ReloadErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipintel_reload_errors_total",
			Help: "Total data set reloads that failed.",
		}),
	}
}

func (m *Metrics) lookup(err error, seconds float64) {
	if m == nil {
		return
	}
	m.Lookups.Inc()
	m.LookupLatency.Observe(seconds)
	if err != nil {
		m.LookupErrors.Inc()
	}
}

// RecordLookup records one FromIP/FromIPString call's outcome and latency.
func (m *Metrics) RecordLookup(err error, seconds float64) { m.lookup(err, seconds) }

// RecordEvidenceLookup records one FromEvidence call's outcome and
// latency, counting it as both an evidence lookup and a lookup.
func (m *Metrics) RecordEvidenceLookup(err error, seconds float64) {
	if m == nil {
		return
	}
	m.EvidenceLookups.Inc()
	m.lookup(err, seconds)
}

// RecordReload records one reload's outcome.
func (m *Metrics) RecordReload(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ReloadErrors.Inc()
		return
	}
	m.Reloads.Inc()
}
