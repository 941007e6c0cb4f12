package wire

import (
	"bytes"

	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// SupportedMajor and SupportedMinor are the only (major, minor) pair this
// core will load (spec.md §3, version gate). A data file built by any other
// major.minor is rejected with IncorrectVersion before a single sub-collection
// is touched.
const (
	SupportedMajor = uint16(4)
	SupportedMinor = uint16(4)
)

var fileSignature = []byte("IPI\x00")

// Version is the four-part version stamp carried by DataSetHeader.
type Version struct {
	Major uint16
	Minor uint16
	Build uint16
	Rev   uint16
}

// DataSetHeader is the fixed-size record at byte 0 of the file (spec.md §6).
//
//	Offset  Size  Field
//	0x00    4     signature "IPI\0"
//	0x04    8     Version{major,minor,build,rev} (uint16 x4)
//	0x0C    16    dataset tag
//	0x1C    16    export tag
//	0x2C    8     published date (unix seconds, int64)
//	0x34    8     next-update date (unix seconds, int64)
//	0x3C    4     copyright string offset
//	0x40    4     name string offset
//	0x44    4     format string offset
//	0x48    ...   one CollectionHeader per sub-collection, in file order
type DataSetHeader struct {
	Version      Version
	DatasetTag   [16]byte
	ExportTag    [16]byte
	Published    int64
	NextUpdate   int64
	CopyrightOff uint32
	NameOff      uint32
	FormatOff    uint32
	Collections  []CollectionHeader
}

// CollectionHeader describes one sub-collection's placement in the file
// (spec.md §3: startPosition absolute, length in bytes, count in items).
type CollectionHeader struct {
	StartPosition uint32
	Length        uint32
	Count         uint32
}

// ElementSize returns length/count when the collection is fixed-width, or 0
// when Length isn't an exact multiple of Count (the variable-width case).
func (h CollectionHeader) ElementSize() uint32 {
	if h.Count == 0 || h.Length%h.Count != 0 {
		return 0
	}
	return h.Length / h.Count
}

const (
	headerSignatureSize = 4
	versionSize         = 8
	datasetTagSize      = 16
	exportTagSize       = 16
	dateSize            = 8
	headerFixedSize     = headerSignatureSize + versionSize + datasetTagSize +
		exportTagSize + dateSize*2 + 4*3
	collectionHeaderSize = 12 // startPosition, length, count: 3 x uint32
	// collectionCount is the number of sub-collections enumerated after the
	// fixed header, in on-disk order. Keep in lockstep with CollectionIndex.
	collectionCount = 11
)

// CollectionIndex names the fixed slots of DataSetHeader.Collections, in the
// order spec.md §6 lays the file out.
type CollectionIndex int

const (
	ColStrings CollectionIndex = iota
	ColComponents
	ColMaps
	ColProperties
	ColValues
	ColProfiles
	ColGraphs
	ColProfileGroups
	ColPropertyTypes
	ColProfileOffsets
	ColGraphTail
)

// ParseDataSetHeader validates the signature and decodes the fixed header
// plus its trailing CollectionHeader table.
func ParseDataSetHeader(b []byte) (DataSetHeader, error) {
	if len(b) < headerFixedSize+collectionHeaderSize*collectionCount {
		return DataSetHeader{}, ipierr.New(ipierr.CorruptData, "file too small for dataset header")
	}
	if !bytes.Equal(b[:headerSignatureSize], fileSignature) {
		return DataSetHeader{}, ipierr.New(ipierr.CorruptData, "bad dataset signature")
	}

	c := NewCursor(b)
	if err := mustAdvance(c, headerSignatureSize); err != nil {
		return DataSetHeader{}, err
	}

	var h DataSetHeader
	var err error
	if h.Version.Major, err = c.ReadUint16(); err != nil {
		return DataSetHeader{}, err
	}
	if h.Version.Minor, err = c.ReadUint16(); err != nil {
		return DataSetHeader{}, err
	}
	if h.Version.Build, err = c.ReadUint16(); err != nil {
		return DataSetHeader{}, err
	}
	if h.Version.Rev, err = c.ReadUint16(); err != nil {
		return DataSetHeader{}, err
	}

	if tag, terr := c.Take(datasetTagSize); terr != nil {
		return DataSetHeader{}, terr
	} else {
		copy(h.DatasetTag[:], tag)
	}
	if tag, terr := c.Take(exportTagSize); terr != nil {
		return DataSetHeader{}, terr
	} else {
		copy(h.ExportTag[:], tag)
	}

	pub, err := c.ReadUint64()
	if err != nil {
		return DataSetHeader{}, err
	}
	h.Published = int64(pub)

	next, err := c.ReadUint64()
	if err != nil {
		return DataSetHeader{}, err
	}
	h.NextUpdate = int64(next)

	if h.CopyrightOff, err = c.ReadUint32(); err != nil {
		return DataSetHeader{}, err
	}
	if h.NameOff, err = c.ReadUint32(); err != nil {
		return DataSetHeader{}, err
	}
	if h.FormatOff, err = c.ReadUint32(); err != nil {
		return DataSetHeader{}, err
	}

	h.Collections = make([]CollectionHeader, collectionCount)
	for i := range h.Collections {
		ch, cerr := parseCollectionHeader(c)
		if cerr != nil {
			return DataSetHeader{}, cerr
		}
		h.Collections[i] = ch
	}

	if h.Version.Major != SupportedMajor || h.Version.Minor != SupportedMinor {
		return DataSetHeader{}, ipierr.New(ipierr.IncorrectVersion, "unsupported dataset major.minor")
	}

	return h, nil
}

func parseCollectionHeader(c *Cursor) (CollectionHeader, error) {
	start, err := c.ReadUint32()
	if err != nil {
		return CollectionHeader{}, err
	}
	length, err := c.ReadUint32()
	if err != nil {
		return CollectionHeader{}, err
	}
	count, err := c.ReadUint32()
	if err != nil {
		return CollectionHeader{}, err
	}
	return CollectionHeader{StartPosition: start, Length: length, Count: count}, nil
}

func mustAdvance(c *Cursor, n int) error { return c.Advance(n) }
