package store

import (
	"bytes"
	"testing"
)

func TestMemoryCollection_Fixed(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	c := NewMemoryFixed(data, 3, 2)
	if c.Count() != 3 || c.ElementSize() != 2 || c.Size() != 6 {
		t.Fatalf("unexpected metadata")
	}
	item, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(item.Bytes, []byte{3, 4}) {
		t.Fatalf("got %v", item.Bytes)
	}
	item.Release() // no-op, must not panic
}

func TestMemoryCollection_Fixed_RejectsOutOfRange(t *testing.T) {
	c := NewMemoryFixed([]byte{1, 2, 3, 4}, 2, 2)
	if _, err := c.Get(5); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

// lenPrefixReader treats the first byte of a record as its total length.
type lenPrefixReader struct{}

func (lenPrefixReader) HeaderSize() int { return 1 }
func (lenPrefixReader) FullSize(header []byte) (int, error) {
	return int(header[0]), nil
}

func TestMemoryCollection_Variable(t *testing.T) {
	// record 0: length 3 -> [3, 'a', 'b']; record 1 starts at offset 3.
	data := []byte{3, 'a', 'b', 4, 'c', 'd', 'e'}
	c := NewMemoryVariable(data, 2, lenPrefixReader{})
	first, err := c.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if !bytes.Equal(first.Bytes, []byte{3, 'a', 'b'}) {
		t.Fatalf("got %v", first.Bytes)
	}
	second, err := c.Get(3)
	if err != nil {
		t.Fatalf("Get(3): %v", err)
	}
	if !bytes.Equal(second.Bytes, []byte{4, 'c', 'd', 'e'}) {
		t.Fatalf("got %v", second.Bytes)
	}
}

func TestMemoryCollection_Variable_RejectsTruncatedRecord(t *testing.T) {
	data := []byte{10, 'a', 'b'} // claims length 10 but only 3 bytes exist
	c := NewMemoryVariable(data, 1, lenPrefixReader{})
	if _, err := c.Get(0); err == nil {
		t.Fatalf("expected an out-of-range error for a truncated record")
	}
}
