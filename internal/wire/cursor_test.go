package wire

import (
	"encoding/binary"
	"testing"
)

func buildBuf() []byte {
	b := make([]byte, 32)
	b[0] = 0xAB
	binary.LittleEndian.PutUint16(b[1:], 0x1234)
	binary.LittleEndian.PutUint32(b[3:], 0xDEADBEEF)
	binary.LittleEndian.PutUint64(b[7:], 0x0102030405060708)
	return b
}

func TestCursor_ReadPrimitives(t *testing.T) {
	c := NewCursor(buildBuf())

	bv, err := c.ReadByte()
	if err != nil || bv != 0xAB {
		t.Fatalf("ReadByte = %x, %v", bv, err)
	}
	u16, err := c.ReadUint16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadUint16 = %x, %v", u16, err)
	}
	u32, err := c.ReadUint32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadUint32 = %x, %v", u32, err)
	}
	u64, err := c.ReadUint64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadUint64 = %x, %v", u64, err)
	}
}

func TestCursor_AdvancePastEndFails(t *testing.T) {
	c := NewCursor(make([]byte, 4))
	if err := c.Advance(5); err == nil {
		t.Fatalf("expected error advancing past end")
	}
	if err := c.Advance(4); err != nil {
		t.Fatalf("unexpected error advancing to exact end: %v", err)
	}
	if err := c.Advance(1); err == nil {
		t.Fatalf("expected error advancing once already at end")
	}
}

func TestCursor_TakeDoesNotAllocate(t *testing.T) {
	backing := buildBuf()
	c := NewCursor(backing)
	s, err := c.Take(4)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if &s[0] != &backing[0] {
		t.Fatalf("expected Take to return a slice aliasing the backing array")
	}
}

func TestCursor_SeekBounds(t *testing.T) {
	c := NewCursor(make([]byte, 10))
	if err := c.Seek(10); err != nil {
		t.Fatalf("seek to exact length should succeed: %v", err)
	}
	if err := c.Seek(11); err == nil {
		t.Fatalf("expected error seeking past length")
	}
	if err := c.Seek(-1); err == nil {
		t.Fatalf("expected error seeking negative")
	}
}

func TestCursor_PeekDoesNotAdvance(t *testing.T) {
	c := NewCursor(buildBuf())
	if _, err := c.Peek(4); err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if c.Pos() != 0 {
		t.Fatalf("Peek must not move cursor, pos=%d", c.Pos())
	}
}

func TestCursor_ReadFloat32(t *testing.T) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, 0x3F800000) // 1.0f
	c := NewCursor(b)
	f, err := c.ReadFloat32()
	if err != nil || f != 1.0 {
		t.Fatalf("ReadFloat32 = %v, %v", f, err)
	}
}
