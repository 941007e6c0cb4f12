package store

import (
	"github.com/51Degrees/ip-intelligence-go/internal/filepool"
	"github.com/51Degrees/ip-intelligence-go/internal/wire"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// Source addresses where a collection's bytes come from: either already
// resident in memory (Mem set — the mmap'd or fully-read case) or behind
// a pooled file handle at a byte offset within the file (Pool/Base).
type Source struct {
	Mem  []byte
	Pool *filepool.Pool
	Base int64
}

// New builds the collection variant spec.md §4.1's selection rules call
// for, given header's placement/sizing and cfg's preload/cache knobs.
// reader is required (and only used) for variable-width collections.
func New(header wire.CollectionHeader, cfg Config, src Source, reader RecordReader) (Collection, error) {
	elementSize := header.ElementSize()
	variable := elementSize == 0
	count := header.Count
	size := header.Length

	if src.Mem != nil {
		if variable {
			return NewMemoryVariable(src.Mem, count, reader), nil
		}
		return NewMemoryFixed(src.Mem, count, elementSize), nil
	}
	if src.Pool == nil {
		return nil, ipierr.New(ipierr.InvalidCollectionConfig, "collection source has neither in-memory bytes nor a file pool")
	}

	var file Collection
	if variable {
		file = NewFileVariable(src.Pool, src.Base, count, size, reader)
	} else {
		file = NewFileFixed(src.Pool, src.Base, count, elementSize)
	}

	switch {
	case cfg.Loaded == loadedAll || (cfg.Loaded > 0 && uint32(cfg.Loaded) >= count):
		buf := make([]byte, size)
		if err := readFull(src.Pool, src.Base, buf); err != nil {
			return nil, err
		}
		if variable {
			return NewMemoryVariable(buf, count, reader), nil
		}
		return NewMemoryFixed(buf, count, elementSize), nil

	case cfg.Loaded > 0:
		tail := file
		if cfg.Capacity > 0 {
			concurrency := max(cfg.Concurrency, 1)
			cached, err := NewCached(file, cfg.Capacity, concurrency)
			if err != nil {
				return nil, err
			}
			tail = cached
		}
		if variable {
			prefix, err := preloadVariablePrefix(file, uint32(cfg.Loaded), reader)
			if err != nil {
				return nil, err
			}
			return NewPartialVariable(prefix, reader, count, size, tail), nil
		}
		prefix := make([]byte, uint32(cfg.Loaded)*elementSize)
		if err := readFull(src.Pool, src.Base, prefix); err != nil {
			return nil, err
		}
		return NewPartialFixed(prefix, uint32(cfg.Loaded), elementSize, count, tail), nil

	case cfg.Capacity > 0:
		concurrency := cfg.Concurrency
		if concurrency < 1 {
			concurrency = 1
		}
		return NewCached(file, cfg.Capacity, concurrency)

	default:
		return file, nil
	}
}

func readFull(pool *filepool.Pool, base int64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	handle, idx, err := pool.Get()
	if err != nil {
		return err
	}
	defer pool.Release(idx)
	if _, err := handle.ReadAt(buf, base); err != nil {
		return ipierr.Wrap(ipierr.CollectionFileReadFail, "preloading collection bytes", err)
	}
	return nil
}

// preloadVariablePrefix reads the first n items of a variable-width file
// collection sequentially, returning their concatenated raw bytes. The
// resulting buffer is itself a valid MemoryVariable source because offsets
// into it line up with offsets into the original collection region.
func preloadVariablePrefix(file Collection, n uint32, reader RecordReader) ([]byte, error) {
	var buf []byte
	offset := uint32(0)
	total := file.Count()
	for i := uint32(0); i < n && i < total; i++ {
		item, err := file.Get(offset)
		if err != nil {
			return nil, err
		}
		buf = append(buf, item.Bytes...)
		offset += uint32(len(item.Bytes))
		item.Release()
	}
	return buf, nil
}
