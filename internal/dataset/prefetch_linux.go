//go:build linux

package dataset

import "golang.org/x/sys/unix"

// prefaultMapped hints the kernel to start paging in a freshly mmap'd data
// set ahead of first access (spec.md §6's all_in_memory option: "load entire
// file into RAM"). Best-effort — a failure here just means the pages fault
// in lazily on first touch instead, so the error is discarded.
func prefaultMapped(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}
