package store

// PartialCollection holds a leading prefix of a collection's records in
// memory and chains to a secondary collection (a cache or a raw file
// collection) for anything beyond that prefix (spec.md §4.1: "a partial
// collection that contains the first N items in memory and chains to a
// secondary collection for the tail").
type PartialCollection struct {
	prefix      *MemoryCollection
	prefixBound uint32 // fixed-width: item count covered by prefix; variable-width: byte length covered
	variable    bool
	secondary   Collection
	elementSize uint32
	count       uint32
	size        uint32
}

// NewPartialFixed preloads the first loadedCount fixed-width records
// (prefixData must hold exactly loadedCount*elementSize bytes) and
// delegates indices >= loadedCount to secondary.
func NewPartialFixed(prefixData []byte, loadedCount, elementSize, totalCount uint32, secondary Collection) *PartialCollection {
	return &PartialCollection{
		prefix:      NewMemoryFixed(prefixData, loadedCount, elementSize),
		prefixBound: loadedCount,
		secondary:   secondary,
		elementSize: elementSize,
		count:       totalCount,
		size:        totalCount * elementSize,
	}
}

// NewPartialVariable preloads the first len(prefixData) bytes of a
// variable-width collection and delegates offsets at or past that
// boundary to secondary.
func NewPartialVariable(prefixData []byte, reader RecordReader, totalCount, totalSize uint32, secondary Collection) *PartialCollection {
	return &PartialCollection{
		prefix:      NewMemoryVariable(prefixData, totalCount, reader),
		prefixBound: uint32(len(prefixData)),
		variable:    true,
		secondary:   secondary,
		count:       totalCount,
		size:        totalSize,
	}
}

func (p *PartialCollection) Count() uint32       { return p.count }
func (p *PartialCollection) ElementSize() uint32 { return p.elementSize }
func (p *PartialCollection) Size() uint32        { return p.size }
func (p *PartialCollection) Close() error        { return p.secondary.Close() }

func (p *PartialCollection) Get(indexOrOffset uint32) (Item, error) {
	if p.variable {
		if indexOrOffset < p.prefixBound {
			return p.prefix.Get(indexOrOffset)
		}
		return p.secondary.Get(indexOrOffset)
	}
	if indexOrOffset < p.prefixBound {
		return p.prefix.Get(indexOrOffset)
	}
	return p.secondary.Get(indexOrOffset)
}
