package wire

// StringsEntry is one variable-width record of the Strings collection
// (spec.md §3): an int16 size followed by that many bytes. The stored bytes
// may hold a NUL-terminated string, an int32, a float32, an int16, an
// IPv4/IPv6 byte array, or WKB — the caller must already know which, via
// the requesting property's stored-value type (spec.md §9, "variable-width
// value decoding").
type StringsEntry struct {
	Bytes []byte
}

// ReadStringsEntry decodes one entry at the cursor's current position.
func ReadStringsEntry(c *Cursor) (StringsEntry, error) {
	size, err := c.ReadInt16()
	if err != nil {
		return StringsEntry{}, err
	}
	if size < 1 {
		return StringsEntry{}, sizeError()
	}
	b, err := c.Take(int(size))
	if err != nil {
		return StringsEntry{}, err
	}
	return StringsEntry{Bytes: b}, nil
}

func sizeError() error {
	return newCorrupt("strings entry size must be >= 1")
}
