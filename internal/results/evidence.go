package results

import (
	"github.com/51Degrees/ip-intelligence-go/internal/headers"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// Prefix is a bit flag naming where one piece of evidence came from
// (spec.md §4.7: "Prefixes are bit flags (header, query, server, cookie)").
type Prefix uint32

const (
	PrefixHeader Prefix = 1 << iota
	PrefixQuery
	PrefixServer
	PrefixCookie
)

// Evidence is one {prefix, key, value} tuple a caller supplies (spec.md
// §4.7).
type Evidence struct {
	Prefix Prefix
	Key    string
	Value  string
}

// FromEvidence resolves an address from evidence and evaluates it as FromIP
// does (spec.md §4.7: "iterates unique headers in registration order; for
// each header it scans query-prefixed evidence first, then server-prefixed,
// passing the first match's value to the IP parser"). Pseudo-headers are
// assembled from their segments' resolved values before parsing.
func (r *Results) FromEvidence(evidence []Evidence) error {
	byKey := make(map[string][]Evidence, len(evidence))
	for _, e := range evidence {
		byKey[e.Key] = append(byKey[e.Key], e)
	}

	table := r.ds.Headers
	for i := 0; i < table.Len(); i++ {
		value, ok := resolveHeaderValue(table, i, byKey)
		if !ok {
			continue
		}
		return r.FromIPString(value)
	}
	return ipierr.New(ipierr.IncorrectIpAddressFormat, "no evidence matched a registered header")
}

// resolveHeaderValue resolves header idx's value: for a pseudo-header, the
// 0x1F-joined assembly of its segments' own resolved values; otherwise the
// first query-prefixed, then server-prefixed, evidence entry keyed by its
// name.
func resolveHeaderValue(table *headers.Table, idx int, byKey map[string][]Evidence) (string, bool) {
	h := table.At(idx)
	if h.IsPseudo {
		return table.AssemblePseudo(idx, func(segmentIdx int) (string, bool) {
			return resolveHeaderValue(table, segmentIdx, byKey)
		})
	}
	return firstMatch(byKey[h.Name], PrefixQuery, PrefixServer)
}

// firstMatch scans entries for the first one whose Prefix matches prefixes
// in priority order, trying each prefix across the whole slice before
// moving to the next (spec.md §4.7's "query first, then server").
func firstMatch(entries []Evidence, prefixes ...Prefix) (string, bool) {
	for _, p := range prefixes {
		for _, e := range entries {
			if e.Prefix == p {
				return e.Value, true
			}
		}
	}
	return "", false
}
