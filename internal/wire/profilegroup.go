package wire

// ProfileGroupEntry pairs a profile offset with its raw weighting within a
// group (spec.md §3).
type ProfileGroupEntry struct {
	ProfileOffset uint32
	RawWeighting  uint16
}

// FullWeight is the exact sum every profile group's weights must reach
// (spec.md §3, §8: 0xFFFE and 0x10000 are both corrupt).
const FullWeight = 0xFFFF

const profileGroupEntrySize = 4 + 2

// ReadProfileGroup decodes (offset, weight) pairs starting at the cursor
// until the running weight sum reaches FullWeight exactly. A sum that
// overshoots FullWeight mid-read is corrupt data (spec.md §8 boundary
// behaviour).
func ReadProfileGroup(c *Cursor) ([]ProfileGroupEntry, error) {
	var entries []ProfileGroupEntry
	var sum uint32
	for sum < FullWeight {
		off, err := c.ReadUint32()
		if err != nil {
			return nil, err
		}
		weight, err := c.ReadUint16()
		if err != nil {
			return nil, err
		}
		sum += uint32(weight)
		if sum > FullWeight {
			return nil, newCorrupt("profile group weights overshoot 0xFFFF")
		}
		entries = append(entries, ProfileGroupEntry{ProfileOffset: off, RawWeighting: weight})
	}
	return entries, nil
}
