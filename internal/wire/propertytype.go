package wire

import "sort"

// PropertyTypeRecord is a fixed-width record of the PropertyTypes
// collection: nameOffset:u32, storedValueType:u8 (spec.md §6). Records are
// ordered ascending by NameOffset to support binary search.
type PropertyTypeRecord struct {
	NameOffset      uint32
	StoredValueType uint8
}

const propertyTypeRecordSize = 5

// ReadPropertyTypeRecord decodes one PropertyTypeRecord.
func ReadPropertyTypeRecord(c *Cursor) (PropertyTypeRecord, error) {
	nameOff, err := c.ReadUint32()
	if err != nil {
		return PropertyTypeRecord{}, err
	}
	svt, err := c.ReadByte()
	if err != nil {
		return PropertyTypeRecord{}, err
	}
	return PropertyTypeRecord{NameOffset: nameOff, StoredValueType: svt}, nil
}

// FindPropertyType binary-searches records (already sorted ascending by
// NameOffset, per spec.md §3) for nameOffset. Returns false if absent.
func FindPropertyType(records []PropertyTypeRecord, nameOffset uint32) (PropertyTypeRecord, bool) {
	i := sort.Search(len(records), func(i int) bool {
		return records[i].NameOffset >= nameOffset
	})
	if i < len(records) && records[i].NameOffset == nameOffset {
		return records[i], true
	}
	return PropertyTypeRecord{}, false
}
