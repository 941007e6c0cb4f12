package wire

// clusterSpanTableSize is the fixed width of a cluster's local-to-global
// span-index lookup table (spec.md §3: "256 entries spanIndexes[0..255]").
const clusterSpanTableSize = 256

// Cluster covers an inclusive node-index range and maps a node's local
// cluster position to a global span index (spec.md §4.5).
type Cluster struct {
	StartIndex  uint32
	EndIndex    uint32
	SpanIndexes [clusterSpanTableSize]uint32
}

const clusterRecordSize = 4 + 4 + clusterSpanTableSize*4

// ReadCluster decodes one Cluster record, validating StartIndex <= EndIndex
// (spec.md §3 invariant).
func ReadCluster(c *Cursor) (Cluster, error) {
	start, err := c.ReadUint32()
	if err != nil {
		return Cluster{}, err
	}
	end, err := c.ReadUint32()
	if err != nil {
		return Cluster{}, err
	}
	if start > end {
		return Cluster{}, newCorrupt("cluster startIndex exceeds endIndex")
	}
	var cl Cluster
	cl.StartIndex = start
	cl.EndIndex = end
	for i := range cl.SpanIndexes {
		v, verr := c.ReadUint32()
		if verr != nil {
			return Cluster{}, verr
		}
		cl.SpanIndexes[i] = v
	}
	return cl, nil
}

// FindCluster binary-searches clusters (ordered ascending by StartIndex,
// spec.md §4.5) for the cluster covering node index i.
func FindCluster(clusters []Cluster, i uint32) (Cluster, bool) {
	lo, hi := 0, len(clusters)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		c := clusters[mid]
		switch {
		case i < c.StartIndex:
			hi = mid - 1
		case i > c.EndIndex:
			lo = mid + 1
		default:
			return c, true
		}
	}
	return Cluster{}, false
}
