package ipintel

import (
	"time"

	"github.com/51Degrees/ip-intelligence-go/internal/metrics"
	"github.com/51Degrees/ip-intelligence-go/internal/resource"
	lookup "github.com/51Degrees/ip-intelligence-go/internal/results"

	"github.com/51Degrees/ip-intelligence-go/internal/dataset"
)

// Re-exported so callers only need to import this package for the public
// surface spec.md §6 describes (spec.md: "Results::new(&Manager), from_ip,
// from_ip_string, from_evidence, has_values, no_value_reason, get_values,
// write_values_string, network_id_chunk").
type (
	Evidence        = lookup.Evidence
	Prefix          = lookup.Prefix
	NoValueReason   = lookup.NoValueReason
	ValueWeight     = lookup.ValueWeight
	ResultIpi       = lookup.ResultIpi
	NetworkIDCursor = lookup.NetworkIDCursor
)

const (
	PrefixHeader = lookup.PrefixHeader
	PrefixQuery  = lookup.PrefixQuery
	PrefixServer = lookup.PrefixServer
	PrefixCookie = lookup.PrefixCookie
)

const (
	ReasonHasValues       = lookup.ReasonHasValues
	ReasonInvalidProperty = lookup.ReasonInvalidProperty
	ReasonNoResults       = lookup.ReasonNoResults
	ReasonNullProfile     = lookup.ReasonNullProfile
	ReasonUnknown         = lookup.ReasonUnknown
)

// Results is one thread's lookup handle. It holds a borrow on the active
// data set generation for as long as the caller keeps it, so each Results
// must not outlive a Release call and must not be shared across goroutines
// (spec.md §5: "each thread owns one results object ... value items borrow
// from the data set's strings collection; the results object holds these
// borrows until the next get_values or drop").
type Results struct {
	*lookup.Results
	handle  *resource.Handle[*dataset.Dataset]
	metrics *metrics.Metrics
}

// NewResults borrows the Manager's active data set generation and returns
// a Results ready for FromIP/FromIPString/FromEvidence.
func NewResults(m *Manager) *Results {
	h := m.borrow()
	return &Results{Results: lookup.New(h.Resource()), handle: h, metrics: m.metrics}
}

// Release returns the borrowed generation to the Manager. A Results must
// not be used again after Release.
func (r *Results) Release() { r.handle.Release() }

// FromIP shadows the embedded Results.FromIP to record lookup metrics
// around it.
func (r *Results) FromIP(raw []byte) error {
	start := time.Now()
	err := r.Results.FromIP(raw)
	r.metrics.RecordLookup(err, time.Since(start).Seconds())
	return err
}

// FromIPString shadows the embedded Results.FromIPString to record lookup
// metrics around it.
func (r *Results) FromIPString(s string) error {
	start := time.Now()
	err := r.Results.FromIPString(s)
	r.metrics.RecordLookup(err, time.Since(start).Seconds())
	return err
}

// FromEvidence shadows the embedded Results.FromEvidence to record
// evidence-lookup metrics around it.
func (r *Results) FromEvidence(evidence []lookup.Evidence) error {
	start := time.Now()
	err := r.Results.FromEvidence(evidence)
	r.metrics.RecordEvidenceLookup(err, time.Since(start).Seconds())
	return err
}
