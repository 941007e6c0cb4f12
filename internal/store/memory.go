package store

// MemoryCollection serves items out of bytes already resident in memory
// (spec.md §4.1: "the whole file was loaded into RAM" / the mmap-backed
// case). Release is always a no-op: memory collections never copy out,
// they hand back a window onto data they either own or merely borrow
// (e.g. an mmap mapping owned by the dataset, not the collection).
type MemoryCollection struct {
	data        []byte
	count       uint32
	elementSize uint32 // 0 for variable-width
	reader      RecordReader
}

// NewMemoryFixed builds a fixed-width in-memory collection over data,
// where data holds exactly count*elementSize bytes.
func NewMemoryFixed(data []byte, count, elementSize uint32) *MemoryCollection {
	return &MemoryCollection{data: data, count: count, elementSize: elementSize}
}

// NewMemoryVariable builds a variable-width in-memory collection. reader
// drives the two-phase size computation even though both phases read from
// the same in-memory slice.
func NewMemoryVariable(data []byte, count uint32, reader RecordReader) *MemoryCollection {
	return &MemoryCollection{data: data, count: count, reader: reader}
}

func (m *MemoryCollection) Count() uint32       { return m.count }
func (m *MemoryCollection) ElementSize() uint32 { return m.elementSize }
func (m *MemoryCollection) Size() uint32        { return uint32(len(m.data)) }
func (m *MemoryCollection) Close() error        { return nil }

// Get returns the item at index (fixed-width) or byte offset
// (variable-width).
func (m *MemoryCollection) Get(indexOrOffset uint32) (Item, error) {
	if m.elementSize > 0 {
		return m.getFixed(indexOrOffset)
	}
	return m.getVariable(indexOrOffset)
}

func (m *MemoryCollection) getFixed(index uint32) (Item, error) {
	if index >= m.count {
		return Item{}, errIndexRange(index)
	}
	start := index * m.elementSize
	end := start + m.elementSize
	if end > uint32(len(m.data)) {
		return Item{}, errOffsetRange(start)
	}
	return Item{Bytes: m.data[start:end]}, nil
}

func (m *MemoryCollection) getVariable(offset uint32) (Item, error) {
	if uint64(offset) >= uint64(len(m.data)) {
		return Item{}, errOffsetRange(offset)
	}
	hdrSize := uint64(m.reader.HeaderSize())
	hdrEnd := uint64(offset) + hdrSize
	if hdrEnd > uint64(len(m.data)) {
		hdrEnd = uint64(len(m.data)) // clamp: let FullSize decide if the short header is enough
	}
	header := m.data[offset:hdrEnd]
	full, err := m.reader.FullSize(header)
	if err != nil {
		return Item{}, err
	}
	end := uint64(offset) + uint64(full)
	if end > uint64(len(m.data)) {
		return Item{}, errOffsetRange(offset)
	}
	return Item{Bytes: m.data[offset : uint32(offset)+uint32(full)]}, nil
}
