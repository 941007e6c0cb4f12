// Package wire decodes the little-endian, 1-byte-packed binary layout of a
// 51Degrees-style IP intelligence data file: the dataset header, every
// fixed- and variable-width sub-collection record, and the per-graph tail
// (span bytes, spans, clusters, bit-packed nodes).
//
// Every decode function here is a pure view over a byte slice: it never
// allocates the backing buffer and never retains it past the call, leaving
// ownership (and the borrow/release discipline of spec.md §4.1) to the
// collection layer in internal/store.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// Cursor is a bounded, advance-with-check reader over a contiguous byte
// span. It is the "byte reader / memory reader" leaf component (spec.md
// §2.1): every other decoder in this package is built from one.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps b starting at offset 0.
func NewCursor(b []byte) *Cursor { return &Cursor{data: b} }

// NewCursorAt wraps b starting at the given offset.
func NewCursorAt(b []byte, off int) *Cursor { return &Cursor{data: b, pos: off} }

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Seek repositions the cursor to an absolute offset, bounds-checked.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return ipierr.New(ipierr.CollectionOffsetOutOfRange, "seek target outside buffer")
	}
	c.pos = off
	return nil
}

// Advance moves the cursor forward n bytes, failing if that would run past
// the end of the buffer ("advance-with-check").
func (c *Cursor) Advance(n int) error {
	end, ok := addOverflowSafe(c.pos, n)
	if !ok || end > len(c.data) {
		return ipierr.New(ipierr.CollectionOffsetOutOfRange, "advance past end of buffer")
	}
	c.pos = end
	return nil
}

// Take returns the next n bytes without copying and advances past them.
func (c *Cursor) Take(n int) ([]byte, error) {
	s, ok := boundedSlice(c.data, c.pos, n)
	if !ok {
		return nil, ipierr.New(ipierr.CollectionOffsetOutOfRange, "read past end of buffer")
	}
	c.pos += n
	return s, nil
}

// Peek returns the next n bytes without advancing the cursor.
func (c *Cursor) Peek(n int) ([]byte, error) {
	s, ok := boundedSlice(c.data, c.pos, n)
	if !ok {
		return nil, ipierr.New(ipierr.CollectionOffsetOutOfRange, "peek past end of buffer")
	}
	return s, nil
}

// addOverflowSafe adds a and b, reporting ok = false when the result would
// overflow int — Advance's bounds check must not wrap around on a malformed
// huge length field.
func addOverflowSafe(a, b int) (sum int, ok bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// boundedSlice returns b[off:off+n] if it fits within len(b).
func boundedSlice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := addOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadInt16() (int16, error) {
	v, err := c.ReadUint16()
	return int16(v), err
}

func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

func (c *Cursor) ReadUint64() (uint64, error) {
	b, err := c.Take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) ReadFloat32() (float32, error) {
	v, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	return float32FromBits(v), nil
}
