//go:build !linux

package dataset

// prefaultMapped is a no-op on platforms without MADV_WILLNEED; pages fault
// in lazily on first touch instead.
func prefaultMapped(data []byte) {}
