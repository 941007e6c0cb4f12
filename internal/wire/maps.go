package wire

// MapEntry is one fixed-width (4 byte) record of the Maps collection: a
// single value index (spec.md §6 "Maps: fixed-width"). A property with a
// fixed, enumerable value set publishes MapCount consecutive MapEntry
// records starting at FirstMapIndex, one per possible value, supporting the
// property_value_index accelerator (spec.md §6) as a direct index lookup
// instead of a scan over a profile's value indexes.
type MapEntry struct {
	ValueIndex uint32
}

const mapEntryRecordSize = 4

// ReadMapEntry decodes one MapEntry record.
func ReadMapEntry(c *Cursor) (MapEntry, error) {
	v, err := c.ReadUint32()
	if err != nil {
		return MapEntry{}, err
	}
	return MapEntry{ValueIndex: v}, nil
}
