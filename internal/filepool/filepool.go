// Package filepool implements the fixed-size stack of read-only file
// handles spec.md §4.3 describes: a lock-free tagged-head stack sized to
// avoid the ABA problem on the 32-bit {index, tag} head word, with index 0
// reserved as a sentinel "pool exhausted" entry.
package filepool

import (
	"os"
	"sync/atomic"

	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// head packs {index: uint16, tag: uint16} into a single uint32 so Get/Release
// can CAS it atomically — Go has no native double-width CAS, but a 32-bit
// stack head fits in one word, so no fallback is needed here (contrast with
// internal/resource, which does need one).
type head uint32

func makeHead(index, tag uint16) head { return head(uint32(tag)<<16 | uint32(index)) }
func (h head) index() uint16          { return uint16(h) }
func (h head) tag() uint16            { return uint16(h >> 16) }

// entry is one slot of the pool: an open handle and a next-free link.
type entry struct {
	file *os.File
	next uint16
}

// Pool is a fixed-capacity, lock-free stack of open read-only file handles
// onto a single path. Get pops a handle; Release pushes it back. No entry
// is ever opened or closed outside of New/Close — Get/Release only move
// indexes between the free stack and the caller.
type Pool struct {
	path    string
	entries []entry // entries[0] is the sentinel; real handles start at 1
	head    atomic.Uint32
}

// New opens n read-only handles onto path and links them into the free
// stack. n must be >= 1.
func New(path string, n int) (*Pool, error) {
	if n < 1 {
		return nil, ipierr.New(ipierr.InvalidConfig, "filepool size must be >= 1")
	}
	p := &Pool{
		path:    path,
		entries: make([]entry, n+1),
	}
	for i := 1; i <= n; i++ {
		f, err := os.Open(path)
		if err != nil {
			p.closeOpened(i - 1)
			return nil, ipierr.Wrap(ipierr.FileFailure, "opening pooled file handle", err)
		}
		p.entries[i].file = f
		if i < n {
			p.entries[i].next = uint16(i + 1)
		} else {
			p.entries[i].next = 0
		}
	}
	p.head.Store(uint32(makeHead(1, 0)))
	return p, nil
}

func (p *Pool) closeOpened(n int) {
	for i := 1; i <= n; i++ {
		if p.entries[i].file != nil {
			p.entries[i].file.Close()
		}
	}
}

// Get pops a handle off the free stack. Returns InsufficientHandles if the
// pool is exhausted (index 0, the sentinel, reached the top).
func (p *Pool) Get() (*os.File, uint16, error) {
	for {
		old := head(p.head.Load())
		idx := old.index()
		if idx == 0 {
			return nil, 0, ipierr.New(ipierr.InsufficientHandles, "file handle pool exhausted")
		}
		next := makeHead(p.entries[idx].next, old.tag()+1)
		if p.head.CompareAndSwap(uint32(old), uint32(next)) {
			return p.entries[idx].file, idx, nil
		}
	}
}

// Release pushes handle index idx (as returned by Get) back onto the free
// stack.
func (p *Pool) Release(idx uint16) {
	for {
		old := head(p.head.Load())
		p.entries[idx].next = old.index()
		next := makeHead(idx, old.tag()+1)
		if p.head.CompareAndSwap(uint32(old), uint32(next)) {
			return
		}
	}
}

// Close closes every underlying handle. Callers must ensure no Get/Release
// is in flight.
func (p *Pool) Close() error {
	var firstErr error
	for i := 1; i < len(p.entries); i++ {
		if err := p.entries[i].file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the filesystem path this pool's handles are open onto.
func (p *Pool) Path() string { return p.path }
