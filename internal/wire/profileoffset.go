package wire

// ProfileOffset is one entry of the ProfileOffsets collection. It has two
// on-disk shapes, selected per-graph by ComponentGraphInfo (spec.md §3/§6):
// a (profileId, offset) pair sorted ascending by id, or a bare offset. When
// HasID is false, ID is meaningless and only Offset is valid.
type ProfileOffset struct {
	HasID  bool
	ID     uint32
	Offset uint32
}

const (
	profileOffsetKeyedSize = 8 // profileId:u32, offset:u32
	profileOffsetBareSize  = 4 // offset:u32
)

// ReadKeyedProfileOffset decodes the (profileId, offset) shape.
func ReadKeyedProfileOffset(c *Cursor) (ProfileOffset, error) {
	id, err := c.ReadUint32()
	if err != nil {
		return ProfileOffset{}, err
	}
	off, err := c.ReadUint32()
	if err != nil {
		return ProfileOffset{}, err
	}
	return ProfileOffset{HasID: true, ID: id, Offset: off}, nil
}

// ReadBareProfileOffset decodes the bare-offset shape.
func ReadBareProfileOffset(c *Cursor) (ProfileOffset, error) {
	off, err := c.ReadUint32()
	if err != nil {
		return ProfileOffset{}, err
	}
	return ProfileOffset{Offset: off}, nil
}
