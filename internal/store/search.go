package store

import "github.com/51Degrees/ip-intelligence-go/pkg/ipierr"

// Comparator compares the item at index against a target encoded in
// state, returning <0, 0, or >0 the way sort.Search's callback does but
// with the item borrow passed through so callers can decode fields
// without a second Get.
type Comparator func(item Item, index uint32, state any) int

// BinarySearch performs a binary search over a fixed-width sorted
// collection using cmp, releasing each probed item before moving on
// (spec.md §4.1: "it releases the probed item on each iteration"). It
// returns the index of an item for which cmp returns 0, or
// CollectionIndexOutOfRange if none is found.
func BinarySearch(c Collection, state any, cmp Comparator) (uint32, error) {
	lo, hi := uint32(0), c.Count()
	for lo < hi {
		mid := lo + (hi-lo)/2
		item, err := c.Get(mid)
		if err != nil {
			return 0, err
		}
		result := cmp(item, mid, state)
		item.Release()
		switch {
		case result == 0:
			return mid, nil
		case result < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, ipierr.New(ipierr.CollectionIndexOutOfRange, "binary search found no matching item")
}
