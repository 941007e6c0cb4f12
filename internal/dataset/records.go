package dataset

import (
	"github.com/51Degrees/ip-intelligence-go/internal/filepool"
	"github.com/51Degrees/ip-intelligence-go/internal/graph"
	"github.com/51Degrees/ip-intelligence-go/internal/wire"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// stringsReader drives the two-phase variable-width read of the Strings
// collection: an int16 size prefix followed by that many bytes (spec.md §3,
// §6). This lives here rather than in internal/wire because store.RecordReader
// is an internal/store type and wire must not import store.
type stringsReader struct{}

func (stringsReader) HeaderSize() int { return 2 }

func (stringsReader) FullSize(header []byte) (int, error) {
	if len(header) < 2 {
		return 0, ipierr.New(ipierr.CorruptData, "strings entry header truncated")
	}
	size, err := wire.NewCursor(header).ReadInt16()
	if err != nil {
		return 0, err
	}
	if size < 1 {
		return 0, ipierr.New(ipierr.CorruptData, "strings entry size must be >= 1")
	}
	return 2 + int(size), nil
}

// readRegion materialises the bytes a CollectionHeader describes, either as
// a window onto mem (the all-in-memory path) or via a pooled read (the
// file-backed path). Used for the small, eagerly-decoded tables (Components,
// Graphs, PropertyTypes) and the per-graph tail regions, none of which go
// through the general store.Collection machinery (see DESIGN.md).
func readRegion(mem []byte, pool *filepool.Pool, h wire.CollectionHeader) ([]byte, error) {
	start, end := uint64(h.StartPosition), uint64(h.StartPosition)+uint64(h.Length)
	if mem != nil {
		if end > uint64(len(mem)) {
			return nil, ipierr.New(ipierr.CollectionOffsetOutOfRange, "region extends past mapped data")
		}
		return mem[start:end], nil
	}
	buf := make([]byte, h.Length)
	if len(buf) == 0 {
		return buf, nil
	}
	handle, idx, err := pool.Get()
	if err != nil {
		return nil, err
	}
	defer pool.Release(idx)
	if _, err := handle.ReadAt(buf, int64(h.StartPosition)); err != nil {
		return nil, ipierr.Wrap(ipierr.CollectionFileReadFail, "reading dataset region", err)
	}
	return buf, nil
}

// decodeComponents sequentially decodes every Component record out of a
// fully materialised Components region (13 + 8*keyValueCount bytes each).
func decodeComponents(region []byte, count uint32) ([]wire.Component, error) {
	c := wire.NewCursor(region)
	out := make([]wire.Component, count)
	for i := range out {
		comp, err := wire.ReadComponent(c)
		if err != nil {
			return nil, err
		}
		out[i] = comp
	}
	return out, nil
}

// decodeGraphInfos sequentially decodes the fixed-size ComponentGraphInfo
// array (spec.md §6: "one per component x IP version").
func decodeGraphInfos(region []byte, count uint32) ([]wire.ComponentGraphInfo, error) {
	c := wire.NewCursor(region)
	out := make([]wire.ComponentGraphInfo, count)
	for i := range out {
		g, err := wire.ReadComponentGraphInfo(c)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// decodePropertyTypes sequentially decodes the PropertyTypes table, already
// sorted ascending by NameOffset on disk (spec.md §3), ready for
// wire.FindPropertyType's binary search.
func decodePropertyTypes(region []byte, count uint32) ([]wire.PropertyTypeRecord, error) {
	c := wire.NewCursor(region)
	out := make([]wire.PropertyTypeRecord, count)
	for i := range out {
		pt, err := wire.ReadPropertyTypeRecord(c)
		if err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}

// decodeSpans sequentially decodes a graph's Spans region. Spans have no
// per-record length prefix of their own (their shape is a function of
// lengthLow+lengthHigh, decoded inline by wire.ReadSpan), so they are read
// one after another from a single cursor rather than through a
// store.Collection.
func decodeSpans(region []byte, count uint32) ([]wire.Span, error) {
	c := wire.NewCursor(region)
	out := make([]wire.Span, count)
	for i := range out {
		s, err := wire.ReadSpan(c)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// decodeClusters sequentially decodes a graph's fixed-width Clusters region.
func decodeClusters(region []byte, count uint32) ([]wire.Cluster, error) {
	c := wire.NewCursor(region)
	out := make([]wire.Cluster, count)
	for i := range out {
		cl, err := wire.ReadCluster(c)
		if err != nil {
			return nil, err
		}
		out[i] = cl
	}
	return out, nil
}

// buildGraph materialises one component graph's tail regions (spanBytes,
// spans, clusters, nodes) and assembles a *graph.Graph ready for
// graph.Evaluate.
func buildGraph(mem []byte, pool *filepool.Pool, info wire.ComponentGraphInfo) (*graph.Graph, error) {
	spanBytes, err := readRegion(mem, pool, info.SpanBytes)
	if err != nil {
		return nil, err
	}
	spanRegion, err := readRegion(mem, pool, info.Spans)
	if err != nil {
		return nil, err
	}
	spans, err := decodeSpans(spanRegion, info.Spans.Count)
	if err != nil {
		return nil, err
	}
	clusterRegion, err := readRegion(mem, pool, info.Clusters)
	if err != nil {
		return nil, err
	}
	clusters, err := decodeClusters(clusterRegion, info.Clusters.Count)
	if err != nil {
		return nil, err
	}
	nodeBits, err := readRegion(mem, pool, info.Nodes)
	if err != nil {
		return nil, err
	}
	return &graph.Graph{
		Info:      info,
		Clusters:  clusters,
		Spans:     spans,
		SpanBytes: spanBytes,
		NodeBits:  nodeBits,
		NodeCount: info.Nodes.Count,
	}, nil
}
