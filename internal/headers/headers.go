// Package headers builds the unique HTTP header table spec.md §4.8
// describes: every header name referenced anywhere in the data set,
// deduplicated, with pseudo-headers (names joined by 0x1F) expanded into
// their segment headers and linked both ways.
package headers

import "strings"

// PseudoSeparator splits a pseudo-header's name into its component header
// names (spec.md §4.8, §4.7).
const PseudoSeparator = 0x1F

// Header is one entry in the table. Segments and Parents are indices into
// the same Table, not pointers — the REDESIGN FLAGS note on cyclic
// parent/child back-pointers calls this out explicitly ("model as indices
// into a single headers vector, not owning pointers").
type Header struct {
	Name     string
	IsPseudo bool
	Segments []int // only set when IsPseudo
	Parents  []int // indices of pseudo headers this header is a segment of
}

// Table is the built, immutable-after-construction header set.
type Table struct {
	headers       []Header
	index         map[string]int
	upperPrefixed bool
}

// New scans names (typically every header name a component's key/value
// list or evidence source refers to) and builds the unique table,
// expanding any pseudo-header it encounters into its segments. Order of
// first appearance is preserved for non-pseudo headers and for segments
// discovered while expanding a pseudo-header.
func New(names []string, usesUpperPrefixedHeaders bool) *Table {
	t := &Table{index: make(map[string]int, len(names)), upperPrefixed: usesUpperPrefixedHeaders}
	for _, name := range names {
		t.add(name)
	}
	return t
}

func (t *Table) add(name string) int {
	if idx, ok := t.index[name]; ok {
		return idx
	}
	if strings.ContainsRune(name, PseudoSeparator) {
		segments := strings.Split(name, string(rune(PseudoSeparator)))
		segmentIdx := make([]int, len(segments))
		for i, s := range segments {
			segmentIdx[i] = t.add(s) // each segment also appears as a standalone header
		}
		idx := len(t.headers)
		t.headers = append(t.headers, Header{Name: name, IsPseudo: true, Segments: segmentIdx})
		t.index[name] = idx
		for _, si := range segmentIdx {
			t.headers[si].Parents = append(t.headers[si].Parents, idx)
		}
		return idx
	}
	idx := len(t.headers)
	t.headers = append(t.headers, Header{Name: name})
	t.index[name] = idx
	return idx
}

// Len returns the number of unique headers (pseudo-headers included).
func (t *Table) Len() int { return len(t.headers) }

// At returns the header at index i.
func (t *Table) At(i int) Header { return t.headers[i] }

// All returns every header in registration order.
func (t *Table) All() []Header { return t.headers }

// Find resolves name to its table index, honouring the HTTP_-prefix alias
// when the table was built with usesUpperPrefixedHeaders (spec.md §4.8,
// §6's uses_upper_prefixed_headers option).
func (t *Table) Find(name string) (int, bool) {
	if idx, ok := t.index[name]; ok {
		return idx, true
	}
	if t.upperPrefixed && strings.HasPrefix(name, "HTTP_") {
		if idx, ok := t.index[strings.TrimPrefix(name, "HTTP_")]; ok {
			return idx, true
		}
	}
	return 0, false
}

// AssemblePseudo builds the value of the pseudo-header at idx by joining
// its segments' values with PseudoSeparator (spec.md §4.7: "the bridge
// assembles its segments from individual header values joined by 0x1F").
// valueOf looks up a segment's current value by its table index; false
// means no value is available for that segment, and assembly fails.
func (t *Table) AssemblePseudo(idx int, valueOf func(segmentIdx int) (string, bool)) (string, bool) {
	h := t.headers[idx]
	if !h.IsPseudo {
		return "", false
	}
	parts := make([]string, 0, len(h.Segments))
	for _, si := range h.Segments {
		v, ok := valueOf(si)
		if !ok {
			return "", false
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, string(rune(PseudoSeparator))), true
}
