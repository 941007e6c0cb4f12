// Package graph implements the component graph evaluator of spec.md §4.5:
// a bit-packed, clustered, span-compressed trie mapping an IP address to a
// profile offset or profile-group offset for one component. This is the
// hardest subsystem named in the specification; the exact behaviour of the
// selection primitives at interior nodes is underspecified by the prose
// description (spec.md §9's Open Questions say as much), so the choices
// made here are recorded in DESIGN.md rather than left to guesswork.
package graph

import (
	"github.com/51Degrees/ip-intelligence-go/internal/wire"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// Graph is one bootstrapped (component, ipVersion) trie: the decoded
// cluster/span tables plus the raw bit-packed node array and its
// descriptor (spec.md §3/§4.5).
type Graph struct {
	Info      wire.ComponentGraphInfo
	Clusters  []wire.Cluster
	Spans     []wire.Span
	SpanBytes []byte
	NodeBits  []byte
	NodeCount uint32
}

// Result is the outcome of evaluating a Graph against an IP key.
type Result struct {
	Offset  uint32
	IsGroup bool
}

// compareKind classifies how an IP window falls relative to a span's
// [low, high] bounds (spec.md §4.5).
type compareKind int

const (
	lessThanLow compareKind = iota
	equalLow
	inBetween
	equalHigh
	greaterThanHigh
)

// readRecord extracts (spanIndexInCluster, lowFlag, value) for node index i.
func (g *Graph) readRecord(i uint32) (spanIndex uint64, lowFlag bool, value uint64, err error) {
	if uint64(i) >= uint64(g.NodeCount) {
		return 0, false, 0, ipierr.New(ipierr.CorruptData, "node index out of range")
	}
	d := g.Info.Node
	bitOffset := int(i) * int(d.RecordSizeInBits)
	raw := extractBitsMSB(g.NodeBits, bitOffset, int(d.RecordSizeInBits))
	spanIndex, lowFlag, value = d.Extract(raw)
	return
}

func (g *Graph) isLeaf(value uint64) bool { return value >= uint64(g.NodeCount) }

// resolve maps a leaf's raw value to a profile offset or profile-group
// offset (spec.md §4.5 "Result mapping").
func (g *Graph) resolve(value uint64) (Result, error) {
	v := value - uint64(g.NodeCount)
	if v < uint64(g.Info.ProfileCount) {
		return Result{Offset: g.Info.FirstProfileIndex + uint32(v), IsGroup: false}, nil
	}
	v -= uint64(g.Info.ProfileCount)
	if v < uint64(g.Info.ProfileGroupCount) {
		return Result{Offset: g.Info.FirstProfileGroupIndex + uint32(v), IsGroup: true}, nil
	}
	return Result{}, ipierr.New(ipierr.CorruptData, "leaf value does not map to a profile or profile group")
}
