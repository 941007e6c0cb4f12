// Package store implements the polymorphic, read-only collection
// abstraction spec.md §4.1 describes: a fixed- or variable-width record
// store with in-memory, file-streamed, LRU-cached, and partial-prefix
// variants, every item returned as a borrow that must be released.
package store

import (
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// Item is a borrowed record. Bytes is valid only until Release is called.
// Following the REDESIGN FLAGS note on the generic collection
// back-pointer, Release is a closure captured at construction rather than
// a dispatch through a stored collection pointer — there is no type-erased
// "collection" field to get wrong.
type Item struct {
	Bytes   []byte
	release func()
}

// Release returns the item's backing storage (a cache pin, a pooled file
// buffer, or nothing for in-memory/mmap-backed items) to its owner. Safe
// to call on a zero Item and safe to call twice.
func (it *Item) Release() {
	if it == nil || it.release == nil {
		return
	}
	it.release()
	it.release = nil
}

// Collection is the common surface every variant implements.
type Collection interface {
	// Get returns the item at index (fixed-width collections) or byte
	// offset (variable-width collections) relative to the collection's
	// own region, not the file.
	Get(indexOrOffset uint32) (Item, error)
	Count() uint32
	// ElementSize is 0 for variable-width collections.
	ElementSize() uint32
	Size() uint32
	Close() error
}

// RecordReader drives the two-phase variable-width read spec.md §4.1
// describes: read a fixed header, then derive the full record size from
// it.
type RecordReader interface {
	// HeaderSize is the number of bytes that must be read before FullSize
	// can be computed.
	HeaderSize() int
	// FullSize returns the total record length (header included) given
	// the header bytes just read.
	FullSize(header []byte) (int, error)
}

// Config mirrors spec.md §4.1's CollectionConfig{loaded, capacity,
// concurrency}.
type Config struct {
	// Loaded is the number of leading items to preload into memory. A
	// negative value means "load everything" (the whole-file-in-RAM
	// case).
	Loaded int
	// Capacity, when > 0 and Loaded does not already cover every item,
	// selects a cache collection of this many entries.
	Capacity int
	// Concurrency sizes the cache's shard count; values below 1 count as 1.
	Concurrency int
}

const loadedAll = -1

func errIndexRange(i uint32) error {
	return ipierr.New(ipierr.CollectionIndexOutOfRange, "collection index out of range")
}

func errOffsetRange(o uint32) error {
	return ipierr.New(ipierr.CollectionOffsetOutOfRange, "collection offset out of range")
}
