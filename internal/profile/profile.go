// Package profile materialises profiles and weighted profile groups out of
// the profiles/profile-offsets/profile-groups collections (spec.md §4.6's
// profile-resolution half, folded together with the results API there but
// split out here as its own reusable piece).
package profile

import (
	"github.com/51Degrees/ip-intelligence-go/internal/store"
	"github.com/51Degrees/ip-intelligence-go/internal/wire"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// ProfileRecordReader drives the two-phase variable-width read of the
// Profiles collection (spec.md §6: "12 bytes header + 4*valueCount").
type ProfileRecordReader struct{}

func (ProfileRecordReader) HeaderSize() int { return 12 }

func (ProfileRecordReader) FullSize(header []byte) (int, error) {
	if len(header) < 12 {
		return 0, ipierr.New(ipierr.CorruptData, "profile header truncated")
	}
	valueCount := wire.NewCursorAt(header, 8)
	n, err := valueCount.ReadUint32()
	if err != nil {
		return 0, err
	}
	return 12 + int(n)*4, nil
}

// groupProbeWindow bounds how many leading bytes of a profile-groups
// region are read to locate where the running weight reaches 0xFFFF. Real
// groups are small (a handful of weighted profiles); this is generous
// enough for that while keeping the two-phase read's header bounded,
// rather than open-ended (a documented, not-silent simplification — see
// DESIGN.md).
const groupProbeWindow = 2048

// GroupRecordReader drives the two-phase variable-width read of the
// ProfileGroups collection, whose true length is determined by where the
// weight sum reaches wire.FullWeight rather than by an explicit length
// prefix.
type GroupRecordReader struct{}

func (GroupRecordReader) HeaderSize() int { return groupProbeWindow }

func (GroupRecordReader) FullSize(header []byte) (int, error) {
	c := wire.NewCursorAt(header, 0)
	var sum uint32
	for sum < wire.FullWeight {
		if c.Remaining() < 6 {
			return 0, ipierr.New(ipierr.CorruptData, "profile group did not reach full weight within the probe window")
		}
		if _, err := c.ReadUint32(); err != nil {
			return 0, err
		}
		w, err := c.ReadUint16()
		if err != nil {
			return 0, err
		}
		sum += uint32(w)
		if sum > wire.FullWeight {
			return 0, ipierr.New(ipierr.CorruptData, "profile group weights overshoot 0xFFFF")
		}
	}
	return c.Pos(), nil
}

// Resolve materialises the profile at byte offset off in profiles.
func Resolve(profiles store.Collection, off uint32) (wire.Profile, error) {
	item, err := profiles.Get(off)
	if err != nil {
		return wire.Profile{}, err
	}
	defer item.Release()
	return wire.ReadProfile(wire.NewCursor(item.Bytes))
}

// ResolveGroup materialises every (offset, weight) entry of the profile
// group at byte offset off in groups.
func ResolveGroup(groups store.Collection, off uint32) ([]wire.ProfileGroupEntry, error) {
	item, err := groups.Get(off)
	if err != nil {
		return nil, err
	}
	defer item.Release()
	return wire.ReadProfileGroup(wire.NewCursor(item.Bytes))
}

// WeightedProfile pairs a materialised profile with its group weighting
// (wire.FullWeight when resolved directly from a single-profile result).
type WeightedProfile struct {
	Profile      wire.Profile
	RawWeighting uint16
}

// ResolveResult materialises every profile a graph result refers to: one
// profile at full weight for a direct profile result, or every member of
// a profile group at its own weight (spec.md §4.6 step 2).
func ResolveResult(profiles, groups store.Collection, offset uint32, isGroup bool) ([]WeightedProfile, error) {
	if !isGroup {
		p, err := Resolve(profiles, offset)
		if err != nil {
			return nil, err
		}
		return []WeightedProfile{{Profile: p, RawWeighting: wire.FullWeight}}, nil
	}

	entries, err := ResolveGroup(groups, offset)
	if err != nil {
		return nil, err
	}
	out := make([]WeightedProfile, 0, len(entries))
	for _, e := range entries {
		p, perr := Resolve(profiles, e.ProfileOffset)
		if perr != nil {
			return nil, perr
		}
		out = append(out, WeightedProfile{Profile: p, RawWeighting: e.RawWeighting})
	}
	return out, nil
}

// ValueIndexesForProperty returns the subset of a profile's value indexes
// that fall within [firstValueIndex, lastValueIndex] — the range a
// property's values occupy in the Values collection (spec.md §3's
// Property record fields FirstValueIndex/LastValueIndex).
func ValueIndexesForProperty(p wire.Profile, firstValueIndex, lastValueIndex uint32) []uint32 {
	var out []uint32
	for _, v := range p.ValueIndexes {
		if v >= firstValueIndex && v <= lastValueIndex {
			out = append(out, v)
		}
	}
	return out
}
