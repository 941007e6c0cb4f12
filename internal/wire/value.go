package wire

// Value is a fixed-width (14 byte) record of the Values collection
// (spec.md §6): propertyIndex, nameOffset, descriptionOffset, urlOffset.
type Value struct {
	PropertyIndex     uint32
	NameOffset        uint32
	DescriptionOffset uint32
	URLOffset         uint16
}

const valueRecordSize = 4 + 4 + 4 + 2

// ReadValue decodes one Value record.
func ReadValue(c *Cursor) (Value, error) {
	var v Value
	var err error
	if v.PropertyIndex, err = c.ReadUint32(); err != nil {
		return Value{}, err
	}
	if v.NameOffset, err = c.ReadUint32(); err != nil {
		return Value{}, err
	}
	if v.DescriptionOffset, err = c.ReadUint32(); err != nil {
		return Value{}, err
	}
	if v.URLOffset, err = c.ReadUint16(); err != nil {
		return Value{}, err
	}
	return v, nil
}
