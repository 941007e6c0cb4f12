package graph

import "github.com/51Degrees/ip-intelligence-go/pkg/ipierr"

// maxLeafSteps bounds traversal so a corrupt graph cannot loop forever
// (spec.md §8: "finite steps bounded by 8*len(x) leaf descents").
const maxLeafSteps = 8 * 16 // 8 * max IPv6 byte length

// Evaluate walks graph g with ip (4 bytes for IPv4, 16 for IPv6) following
// the main loop of spec.md §4.5, returning the profile or profile-group
// offset the trie resolves to.
func Evaluate(g *Graph, ip []byte) (Result, error) {
	ipBits := len(ip) * 8
	c := &cursor{g: g, ip: ip, ipBits: ipBits, nodeIndex: g.Info.GraphEntryIndex}

	for steps := 0; ; steps++ {
		if steps > maxLeafSteps {
			return Result{}, ipierr.New(ipierr.CorruptData, "graph evaluation exceeded step bound")
		}

		if err := c.setCluster(); err != nil {
			return Result{}, err
		}
		if err := c.setSpan(); err != nil {
			return Result{}, err
		}
		c.compareIPToSpan()

		var err error
		switch c.compareResult {
		case lessThanLow:
			err = c.selectCompleteLow()
			if err == nil {
				return finish(g, c)
			}
		case equalLow:
			c.bitIndex += int(c.lengthLow)
			err = c.selectLow()
			if err == nil && c.leaf {
				return finish(g, c)
			}
		case inBetween:
			err = c.selectCompleteLowHigh()
			if err == nil {
				return finish(g, c)
			}
		case equalHigh:
			c.bitIndex += int(c.lengthHigh)
			err = c.selectHigh()
			if err == nil && c.leaf {
				return finish(g, c)
			}
		case greaterThanHigh:
			err = c.selectCompleteHigh()
			if err == nil {
				return finish(g, c)
			}
		default:
			return Result{}, ipierr.New(ipierr.CorruptData, "graph evaluator produced an unclassifiable comparison")
		}
		if err != nil {
			return Result{}, err
		}

		if c.bitIndex >= c.ipBits {
			// IP bits exhausted before reaching a leaf: the current node's
			// record is read and resolved only if its value is a leaf; a
			// non-leaf value here is reported as CorruptData.
			_, _, value, rerr := g.readRecord(c.nodeIndex)
			if rerr != nil {
				return Result{}, rerr
			}
			if !g.isLeaf(value) {
				return Result{}, ipierr.New(ipierr.CorruptData, "ip bits exhausted at a non-leaf node")
			}
			return g.resolve(value)
		}
	}
}

func finish(g *Graph, c *cursor) (Result, error) {
	if !c.leaf {
		return Result{}, ipierr.New(ipierr.CorruptData, "graph evaluator terminated without reaching a leaf")
	}
	return g.resolve(c.leafValue)
}
