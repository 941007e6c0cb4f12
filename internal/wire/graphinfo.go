package wire

// NodeDescriptor packs the three (mask, shift) tuples used to extract
// spanIndexInCluster, lowFlag, and value from each recordSizeInBits-wide
// node record (spec.md §3, §4.5). RecordSizeInBits must be <= 64; the
// decode routine that applies these fields must stay endian-agnostic at
// the bit level (spec.md §9).
type NodeDescriptor struct {
	RecordSizeInBits uint8
	SpanIndexMask    uint64
	SpanIndexShift   uint8
	LowFlagMask      uint64
	LowFlagShift     uint8
	ValueMask        uint64
	ValueShift       uint8
}

const maxRecordSizeInBits = 64

// ComponentGraphInfo selects and describes one (component, ipVersion)
// graph (spec.md §3/§6): one info record per component x IP version.
type ComponentGraphInfo struct {
	IPVersion             uint8
	ComponentID           uint32
	GraphEntryIndex       uint32
	FirstProfileIndex     uint32
	ProfileCount          uint32
	FirstProfileGroupIndex uint32
	ProfileGroupCount     uint32

	SpanBytes CollectionHeader
	Spans     CollectionHeader
	Clusters  CollectionHeader
	Nodes     CollectionHeader

	Node NodeDescriptor
}

const nodeDescriptorSize = 1 + (8+1)*3 // recordSizeInBits + 3 x (mask u64, shift u8)
const graphInfoFixedSize = 1 + 4*6 + collectionHeaderSize*4 + nodeDescriptorSize

// ReadComponentGraphInfo decodes one ComponentGraphInfo record.
func ReadComponentGraphInfo(c *Cursor) (ComponentGraphInfo, error) {
	var g ComponentGraphInfo

	ipVer, err := c.ReadByte()
	if err != nil {
		return ComponentGraphInfo{}, err
	}
	if ipVer != 4 && ipVer != 6 {
		return ComponentGraphInfo{}, newCorrupt("componentGraphInfo ipVersion must be 4 or 6")
	}
	g.IPVersion = ipVer

	fields := []*uint32{
		&g.ComponentID, &g.GraphEntryIndex, &g.FirstProfileIndex,
		&g.ProfileCount, &g.FirstProfileGroupIndex, &g.ProfileGroupCount,
	}
	for _, f := range fields {
		v, rerr := c.ReadUint32()
		if rerr != nil {
			return ComponentGraphInfo{}, rerr
		}
		*f = v
	}

	for _, h := range []*CollectionHeader{&g.SpanBytes, &g.Spans, &g.Clusters, &g.Nodes} {
		ch, cerr := parseCollectionHeader(c)
		if cerr != nil {
			return ComponentGraphInfo{}, cerr
		}
		*h = ch
	}

	desc, err := readNodeDescriptor(c)
	if err != nil {
		return ComponentGraphInfo{}, err
	}
	g.Node = desc

	return g, nil
}

func readNodeDescriptor(c *Cursor) (NodeDescriptor, error) {
	var d NodeDescriptor
	size, err := c.ReadByte()
	if err != nil {
		return NodeDescriptor{}, err
	}
	if size == 0 || size > maxRecordSizeInBits {
		return NodeDescriptor{}, newCorrupt("node record size must be in (0, 64]")
	}
	d.RecordSizeInBits = size

	pairs := []struct {
		mask  *uint64
		shift *uint8
	}{
		{&d.SpanIndexMask, &d.SpanIndexShift},
		{&d.LowFlagMask, &d.LowFlagShift},
		{&d.ValueMask, &d.ValueShift},
	}
	for _, p := range pairs {
		mask, merr := c.ReadUint64()
		if merr != nil {
			return NodeDescriptor{}, merr
		}
		shift, serr := c.ReadByte()
		if serr != nil {
			return NodeDescriptor{}, serr
		}
		*p.mask = mask
		*p.shift = shift
	}
	return d, nil
}

// Extract pulls (spanIndex, lowFlag, value) out of a raw record value using
// the descriptor's masks and shifts. The caller is responsible for having
// extracted raw as a big-endian-ordered bitfield (spec.md §9).
func (d NodeDescriptor) Extract(raw uint64) (spanIndex uint64, lowFlag bool, value uint64) {
	spanIndex = (raw & d.SpanIndexMask) >> d.SpanIndexShift
	lowFlag = (raw&d.LowFlagMask)>>d.LowFlagShift != 0
	value = (raw & d.ValueMask) >> d.ValueShift
	return
}
