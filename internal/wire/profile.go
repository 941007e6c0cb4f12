package wire

// Profile is a variable-width record (12-byte header + 4*valueCount,
// spec.md §6) of the Profiles collection: componentIndex, profileId,
// valueCount, then valueCount value indexes in strictly ascending order.
type Profile struct {
	ComponentIndex uint32
	ProfileID      uint32
	ValueIndexes   []uint32
}

const profileHeaderSize = 12

// ReadProfile decodes one Profile record, validating the strictly-ascending
// ordering invariant of spec.md §3.
func ReadProfile(c *Cursor) (Profile, error) {
	compIdx, err := c.ReadUint32()
	if err != nil {
		return Profile{}, err
	}
	profileID, err := c.ReadUint32()
	if err != nil {
		return Profile{}, err
	}
	valueCount, err := c.ReadUint32()
	if err != nil {
		return Profile{}, err
	}

	indexes := make([]uint32, valueCount)
	var prev uint32
	for i := range indexes {
		v, ierr := c.ReadUint32()
		if ierr != nil {
			return Profile{}, ierr
		}
		if i > 0 && v <= prev {
			return Profile{}, newCorrupt("profile value indexes must be strictly ascending")
		}
		indexes[i] = v
		prev = v
	}

	return Profile{
		ComponentIndex: compIdx,
		ProfileID:      profileID,
		ValueIndexes:   indexes,
	}, nil
}
