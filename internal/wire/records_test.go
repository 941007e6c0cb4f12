package wire

import (
	"encoding/binary"
	"testing"
)

func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }

func TestReadStringsEntry(t *testing.T) {
	b := make([]byte, 2+5)
	binary.LittleEndian.PutUint16(b, 5)
	copy(b[2:], "hello")
	c := NewCursor(b)
	e, err := ReadStringsEntry(c)
	if err != nil {
		t.Fatalf("ReadStringsEntry: %v", err)
	}
	if string(e.Bytes) != "hello" {
		t.Fatalf("got %q", e.Bytes)
	}
}

func TestReadStringsEntry_RejectsZeroSize(t *testing.T) {
	b := make([]byte, 2)
	if _, err := ReadStringsEntry(NewCursor(b)); err == nil {
		t.Fatalf("expected error for zero size")
	}
}

func TestReadComponent(t *testing.T) {
	b := make([]byte, 1+4+4+4+2*8)
	b[0] = 7
	putU32(b, 1, 100)
	putU32(b, 5, 200)
	putU32(b, 9, 2)
	putU32(b, 13, 11)
	putU32(b, 17, 22)
	putU32(b, 21, 33)
	putU32(b, 25, 44)

	c, err := ReadComponent(NewCursor(b))
	if err != nil {
		t.Fatalf("ReadComponent: %v", err)
	}
	if c.ID != 7 || c.NameOffset != 100 || c.DefaultProfileOffset != 200 {
		t.Fatalf("unexpected component: %+v", c)
	}
	if len(c.KeyValues) != 2 || c.KeyValues[0].HeaderID != 11 || c.KeyValues[1].GraphIdx != 44 {
		t.Fatalf("unexpected key values: %+v", c.KeyValues)
	}
}

func TestReadComponent_RejectsZeroKeyValues(t *testing.T) {
	b := make([]byte, 1+4+4+4)
	if _, err := ReadComponent(NewCursor(b)); err == nil {
		t.Fatalf("expected error for zero key/value pairs")
	}
}

func buildPropertyBuf(first, last uint32) []byte {
	b := make([]byte, propertyRecordSize)
	off := 0
	putU32(b, off, 1) // componentIndex
	off += 4
	putU32(b, off, 2) // displayOrder
	off += 4
	b[off] = byte(FlagMandatory | FlagShow)
	off++
	b[off] = 3 // valueType
	off++
	putU32(b, off, 0) // defaultValueIndex
	off += 4
	putU32(b, off, 10) // nameOffset
	off += 4
	putU32(b, off, 11) // descriptionOffset
	off += 4
	putU32(b, off, 12) // categoryOffset
	off += 4
	putU32(b, off, 13) // urlOffset
	off += 4
	putU32(b, off, first)
	off += 4
	putU32(b, off, last)
	off += 4
	putU32(b, off, 0) // mapCount
	off += 4
	putU32(b, off, 0) // firstMapIndex
	return b
}

func TestReadProperty(t *testing.T) {
	b := buildPropertyBuf(5, 9)
	p, err := ReadProperty(NewCursor(b))
	if err != nil {
		t.Fatalf("ReadProperty: %v", err)
	}
	if !p.Flags.Has(FlagMandatory) || !p.Flags.Has(FlagShow) || p.Flags.Has(FlagIsList) {
		t.Fatalf("unexpected flags: %v", p.Flags)
	}
	if p.FirstValueIndex != 5 || p.LastValueIndex != 9 {
		t.Fatalf("unexpected value index range: %+v", p)
	}
}

func TestReadProperty_RejectsInvertedRange(t *testing.T) {
	b := buildPropertyBuf(9, 5)
	if _, err := ReadProperty(NewCursor(b)); err == nil {
		t.Fatalf("expected error for firstValueIndex > lastValueIndex")
	}
}

func TestFindPropertyType(t *testing.T) {
	records := []PropertyTypeRecord{
		{NameOffset: 10, StoredValueType: 1},
		{NameOffset: 20, StoredValueType: 2},
		{NameOffset: 30, StoredValueType: 3},
	}
	if r, ok := FindPropertyType(records, 20); !ok || r.StoredValueType != 2 {
		t.Fatalf("expected to find nameOffset 20, got %+v ok=%v", r, ok)
	}
	if _, ok := FindPropertyType(records, 25); ok {
		t.Fatalf("expected miss for absent offset")
	}
}

func TestReadProfile_AscendingOrderEnforced(t *testing.T) {
	b := make([]byte, profileHeaderSize+4*3)
	putU32(b, 0, 1)
	putU32(b, 4, 555)
	putU32(b, 8, 3)
	putU32(b, 12, 10)
	putU32(b, 16, 20)
	putU32(b, 20, 30)

	p, err := ReadProfile(NewCursor(b))
	if err != nil {
		t.Fatalf("ReadProfile: %v", err)
	}
	if p.ProfileID != 555 || len(p.ValueIndexes) != 3 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestReadProfile_RejectsNonAscending(t *testing.T) {
	b := make([]byte, profileHeaderSize+4*2)
	putU32(b, 0, 1)
	putU32(b, 4, 555)
	putU32(b, 8, 2)
	putU32(b, 12, 20)
	putU32(b, 16, 20) // not strictly greater
	if _, err := ReadProfile(NewCursor(b)); err == nil {
		t.Fatalf("expected error for non-ascending value indexes")
	}
}

func TestReadProfileGroup_StopsAtFullWeight(t *testing.T) {
	b := make([]byte, profileGroupEntrySize*2)
	putU32(b, 0, 100)
	putU16(b, 4, 0x8000)
	putU32(b, 6, 200)
	putU16(b, 10, 0x7FFF)

	entries, err := ReadProfileGroup(NewCursor(b))
	if err != nil {
		t.Fatalf("ReadProfileGroup: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	var sum uint32
	for _, e := range entries {
		sum += uint32(e.RawWeighting)
	}
	if sum != FullWeight {
		t.Fatalf("expected sum 0xFFFF, got %x", sum)
	}
}

func TestReadProfileGroup_RejectsOvershoot(t *testing.T) {
	b := make([]byte, profileGroupEntrySize*2)
	putU32(b, 0, 100)
	putU16(b, 4, 0xFFFE)
	putU32(b, 6, 200)
	putU16(b, 10, 0x0002) // sum would be 0x10000
	if _, err := ReadProfileGroup(NewCursor(b)); err == nil {
		t.Fatalf("expected error for weight overshoot")
	}
}

func TestCluster_FindCluster(t *testing.T) {
	clusters := []Cluster{
		{StartIndex: 0, EndIndex: 9},
		{StartIndex: 10, EndIndex: 19},
		{StartIndex: 20, EndIndex: 29},
	}
	if c, ok := FindCluster(clusters, 15); !ok || c.StartIndex != 10 {
		t.Fatalf("expected cluster starting at 10, got %+v ok=%v", c, ok)
	}
	if _, ok := FindCluster(clusters, 30); ok {
		t.Fatalf("expected miss for out-of-range index")
	}
}

func TestReadCluster_RejectsInvertedRange(t *testing.T) {
	b := make([]byte, clusterRecordSize)
	putU32(b, 0, 20)
	putU32(b, 4, 10)
	if _, err := ReadCluster(NewCursor(b)); err == nil {
		t.Fatalf("expected error for startIndex > endIndex")
	}
}

func TestReadSpan_Inline(t *testing.T) {
	b := make([]byte, 2+4)
	b[0] = 8  // lengthLow
	b[1] = 16 // lengthHigh
	copy(b[2:], []byte{0x01, 0x02, 0x03, 0x04})
	s, err := ReadSpan(NewCursor(b))
	if err != nil {
		t.Fatalf("ReadSpan: %v", err)
	}
	if !s.Inline {
		t.Fatalf("expected inline span for lengthLow+lengthHigh <= 32")
	}
}

func TestReadSpan_OutOfLine(t *testing.T) {
	b := make([]byte, 2+4)
	b[0] = 20
	b[1] = 40
	putU32(b, 2, 1234)
	s, err := ReadSpan(NewCursor(b))
	if err != nil {
		t.Fatalf("ReadSpan: %v", err)
	}
	if s.Inline || s.SpanBytesOffset != 1234 {
		t.Fatalf("expected out-of-line span with offset 1234, got %+v", s)
	}
}

func TestSpan_MaterialiseOutOfLineWiderThan64Bits(t *testing.T) {
	// lengthLow=70, lengthHigh=90 sums to 160 bits (20 bytes) of packed
	// source, well past the 64-bit accumulator a uint64-based implementation
	// would overflow on for a long non-branching IPv6 prefix pair.
	s := Span{LengthLow: 70, LengthHigh: 90}
	src := make([]byte, 20)
	for i := range src {
		src[i] = 0xFF
	}

	low, high, err := s.Materialise(src)
	if err != nil {
		t.Fatalf("Materialise: %v", err)
	}

	for i := 0; i < 8; i++ {
		if low[i] != 0xFF {
			t.Fatalf("low byte %d: expected 0xFF, got %#x", i, low[i])
		}
	}
	if low[8] != 0xFC { // top 6 of the remaining 70-64=6 bits
		t.Fatalf("low byte 8: expected 0xFC, got %#x", low[8])
	}
	for i := 0; i < 11; i++ {
		if high[i] != 0xFF {
			t.Fatalf("high byte %d: expected 0xFF, got %#x", i, high[i])
		}
	}
	if high[11] != 0xC0 { // top 2 of the remaining 90-88=2 bits
		t.Fatalf("high byte 11: expected 0xC0, got %#x", high[11])
	}
}

func TestSpan_MaterialiseRejectsFieldWiderThan128Bits(t *testing.T) {
	s := Span{LengthLow: 200, LengthHigh: 1}
	if _, _, err := s.Materialise(make([]byte, 32)); err == nil {
		t.Fatalf("expected error for a span field wider than the 16-byte buffer")
	}
}

func TestReadSpan_RejectsLowNotLessThanHigh(t *testing.T) {
	b := make([]byte, 2+4)
	b[0] = 16
	b[1] = 16
	if _, err := ReadSpan(NewCursor(b)); err == nil {
		t.Fatalf("expected error when lengthLow is not less than lengthHigh")
	}
}

func TestNodeDescriptor_Extract(t *testing.T) {
	d := NodeDescriptor{
		RecordSizeInBits: 32,
		SpanIndexMask:    0xFF000000,
		SpanIndexShift:   24,
		LowFlagMask:      0x00800000,
		LowFlagShift:     23,
		ValueMask:        0x007FFFFF,
		ValueShift:       0,
	}
	raw := uint64(0x05_81_1234) // spanIndex=5, lowFlag bit set, value=0x011234
	spanIdx, low, val := d.Extract(raw)
	if spanIdx != 5 {
		t.Fatalf("expected spanIndex 5, got %d", spanIdx)
	}
	if !low {
		t.Fatalf("expected lowFlag set")
	}
	if val != 0x011234 {
		t.Fatalf("expected value 0x011234, got %#x", val)
	}
}
