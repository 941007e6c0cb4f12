package graph

import (
	"github.com/51Degrees/ip-intelligence-go/internal/wire"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// cursor carries the evaluator's mutable traversal state (spec.md §4.5).
type cursor struct {
	g   *Graph
	ip  []byte // the full IP key, MSB-first
	ipBits int

	bitIndex          int
	nodeIndex         uint32
	previousHighIndex uint32

	cluster    clusterView
	clusterSet bool

	spanLow, spanHigh [16]byte
	lengthLow, lengthHigh uint8
	spanSet               bool

	compareResult compareKind

	leaf      bool
	leafValue uint64
}

type clusterView struct {
	startIndex  uint32
	endIndex    uint32
	spanIndexes [256]uint32
}

func (c *cursor) setCluster() error {
	if c.clusterSet && c.nodeIndex >= c.cluster.startIndex && c.nodeIndex <= c.cluster.endIndex {
		return nil
	}
	cl, ok := wire.FindCluster(c.g.Clusters, c.nodeIndex)
	if !ok {
		return ipierr.New(ipierr.CorruptData, "no cluster covers node index")
	}
	c.cluster = clusterView{startIndex: cl.StartIndex, endIndex: cl.EndIndex, spanIndexes: cl.SpanIndexes}
	c.clusterSet = true
	return nil
}

func (c *cursor) setSpan() error {
	spanIdxInCluster, _, _, err := c.g.readRecord(c.nodeIndex)
	if err != nil {
		return err
	}
	if spanIdxInCluster >= uint64(len(c.cluster.spanIndexes)) {
		return ipierr.New(ipierr.CorruptData, "span index in cluster out of range")
	}
	globalSpanIdx := c.cluster.spanIndexes[spanIdxInCluster]
	if globalSpanIdx >= uint32(len(c.g.Spans)) {
		return ipierr.New(ipierr.CorruptData, "global span index out of range")
	}
	span := c.g.Spans[globalSpanIdx]
	low, high, merr := span.Materialise(c.g.SpanBytes)
	if merr != nil {
		return merr
	}
	c.spanLow, c.spanHigh = low, high
	c.lengthLow, c.lengthHigh = span.LengthLow, span.LengthHigh
	c.spanSet = true
	return nil
}

// compareIPToSpan sets c.compareResult and, on EQUAL_HIGH, records
// previousHighIndex (spec.md §4.5).
func (c *cursor) compareIPToSpan() {
	m := int(c.lengthLow)
	if int(c.lengthHigh) > m {
		m = int(c.lengthHigh)
	}
	window := make([]byte, 16)
	for i := 0; i < m; i++ {
		pos := c.bitIndex + i
		byteIdx := pos / 8
		bitIdx := 7 - (pos % 8)
		var bit byte
		if byteIdx < len(c.ip) {
			bit = (c.ip[byteIdx] >> uint(bitIdx)) & 1
		}
		if bit != 0 {
			window[i/8] |= 1 << uint(7-(i%8))
		}
	}

	lowCmp := bitsEqual(window, c.spanLow[:], int(c.lengthLow))
	highCmp := bitsEqual(window, c.spanHigh[:], int(c.lengthHigh))

	switch {
	case lowCmp < 0:
		c.compareResult = lessThanLow
	case lowCmp == 0:
		c.compareResult = equalLow
	case highCmp > 0:
		c.compareResult = greaterThanHigh
	case highCmp == 0:
		c.compareResult = equalHigh
		c.previousHighIndex = c.nodeIndex
	default:
		c.compareResult = inBetween
	}
}

// selectLow implements spec.md §4.5's selectLow primitive.
func (c *cursor) selectLow() error {
	_, lowFlag, value, err := c.g.readRecord(c.nodeIndex)
	if err != nil {
		return err
	}
	if lowFlag {
		if c.g.isLeaf(value) {
			c.leaf, c.leafValue = true, value
			return nil
		}
		c.nodeIndex = uint32(value)
		c.clusterSet, c.spanSet = false, false
		return nil
	}
	c.nodeIndex++
	c.clusterSet, c.spanSet = false, false
	return nil
}

// selectHigh implements spec.md §4.5's selectHigh primitive.
func (c *cursor) selectHigh() error {
	_, lowFlag, _, err := c.g.readRecord(c.nodeIndex)
	if err != nil {
		return err
	}
	if lowFlag {
		c.nodeIndex++
		c.clusterSet, c.spanSet = false, false
	}
	_, _, value, err := c.g.readRecord(c.nodeIndex)
	if err != nil {
		return err
	}
	if c.g.isLeaf(value) {
		c.leaf, c.leafValue = true, value
		return nil
	}
	c.nodeIndex = uint32(value)
	c.clusterSet, c.spanSet = false, false
	return nil
}

func (c *cursor) selectCompleteHigh() error {
	for !c.leaf {
		if err := c.setCluster(); err != nil {
			return err
		}
		if err := c.selectHigh(); err != nil {
			return err
		}
	}
	return nil
}

func (c *cursor) selectCompleteLow() error {
	c.nodeIndex = c.previousHighIndex
	c.clusterSet, c.spanSet = false, false
	if err := c.setCluster(); err != nil {
		return err
	}
	if err := c.selectLow(); err != nil {
		return err
	}
	return c.selectCompleteHigh()
}

func (c *cursor) selectCompleteLowHigh() error {
	if err := c.setCluster(); err != nil {
		return err
	}
	if err := c.selectLow(); err != nil {
		return err
	}
	return c.selectCompleteHigh()
}
