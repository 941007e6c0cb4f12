package wire

// PropertyFlag bits pack the Property.Flags byte (spec.md §3: mandatory,
// isList, showValues, isObsolete, show).
type PropertyFlag uint8

const (
	FlagMandatory PropertyFlag = 1 << iota
	FlagIsList
	FlagShowValues
	FlagIsObsolete
	FlagShow
)

// Has reports whether all bits of want are set in f.
func (f PropertyFlag) Has(want PropertyFlag) bool { return f&want == want }

// Property is a fixed-width record (46 bytes, spec.md §6) of the
// Properties collection.
type Property struct {
	ComponentIndex   uint32
	DisplayOrder     uint32
	Flags            PropertyFlag
	ValueType        uint8
	DefaultValueIndex uint32
	NameOffset       uint32
	DescriptionOffset uint32
	CategoryOffset   uint32
	URLOffset        uint32
	FirstValueIndex  uint32
	LastValueIndex   uint32
	MapCount         uint32
	FirstMapIndex    uint32
}

const propertyRecordSize = 4 + 4 + 1 + 1 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4

// ReadProperty decodes one Property record. FirstValueIndex must not exceed
// LastValueIndex (spec.md §3 invariant).
func ReadProperty(c *Cursor) (Property, error) {
	var p Property
	var err error
	if p.ComponentIndex, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.DisplayOrder, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	flagByte, err := c.ReadByte()
	if err != nil {
		return Property{}, err
	}
	p.Flags = PropertyFlag(flagByte)
	valType, err := c.ReadByte()
	if err != nil {
		return Property{}, err
	}
	p.ValueType = valType
	if p.DefaultValueIndex, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.NameOffset, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.DescriptionOffset, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.CategoryOffset, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.URLOffset, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.FirstValueIndex, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.LastValueIndex, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.MapCount, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.FirstMapIndex, err = c.ReadUint32(); err != nil {
		return Property{}, err
	}
	if p.FirstValueIndex > p.LastValueIndex {
		return Property{}, newCorrupt("property firstValueIndex exceeds lastValueIndex")
	}
	return p, nil
}
