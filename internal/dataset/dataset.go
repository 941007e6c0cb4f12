// Package dataset implements data-set bootstrap (spec.md §2 item 7, §6):
// parsing the file header, constructing every sub-collection behind
// internal/store, resolving the caller's required properties, building the
// unique-headers table, and wiring per-component graphs so a lookup can walk
// straight from an IP key to a weighted profile list.
package dataset

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"go.uber.org/zap"

	"github.com/51Degrees/ip-intelligence-go/internal/filepool"
	"github.com/51Degrees/ip-intelligence-go/internal/graph"
	"github.com/51Degrees/ip-intelligence-go/internal/headers"
	"github.com/51Degrees/ip-intelligence-go/internal/profile"
	"github.com/51Degrees/ip-intelligence-go/internal/store"
	strval "github.com/51Degrees/ip-intelligence-go/internal/strings"
	"github.com/51Degrees/ip-intelligence-go/internal/wire"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// Config carries every per-collection and global knob spec.md §6's
// Configuration options table names. Components, Graphs, PropertyTypes and
// the per-graph tail regions are always decoded eagerly regardless of their
// would-be Loaded/Capacity settings (see DESIGN.md) — they have no
// collection config entries here.
type Config struct {
	AllInMemory              bool
	UsesUpperPrefixedHeaders bool
	PropertyValueIndex       bool
	FileHandles              int // filepool size when not AllInMemory

	Strings        store.Config
	Maps           store.Config
	Properties     store.Config
	Values         store.Config
	Profiles       store.Config
	ProfileGroups  store.Config
	ProfileOffsets store.Config

	Logger *zap.SugaredLogger
}

func (c *Config) logger() *zap.SugaredLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop().Sugar()
}

// RequiredProperty is one resolved entry of the caller's required-properties
// list (spec.md §6: "Manager::open_file(path, config, required_props)").
type RequiredProperty struct {
	Name     string
	Index    uint32 // index into the Properties collection
	Property wire.Property
	Type     wire.PropertyTypeRecord
}

// Dataset is the fully bootstrapped, immutable data set of spec.md §2's
// "Lifecycles" paragraph: built once, ref-counted externally by
// internal/resource, freed on last release.
type Dataset struct {
	Header wire.DataSetHeader

	strings        store.Collection
	maps           store.Collection
	properties     store.Collection
	values         store.Collection
	profiles       store.Collection
	profileGroups  store.Collection
	profileOffsets store.Collection

	components    []wire.Component
	componentByID map[byte]int
	graphInfos    []wire.ComponentGraphInfo
	propertyTypes []wire.PropertyTypeRecord

	graphs map[graphKey]*graph.Graph

	Headers *headers.Table

	Required []RequiredProperty

	propertyValueIndex bool

	mem    mmap.MMap
	file   *os.File
	pool   *filepool.Pool
	closed bool
}

type graphKey struct {
	componentID byte
	ipVersion   uint8
}

// OpenFile bootstraps a Dataset from a file on disk.
func OpenFile(path string, cfg Config, requiredProps []string) (*Dataset, error) {
	log := cfg.logger()
	f, err := os.Open(path)
	if err != nil {
		return nil, ipierr.Wrap(ipierr.FileNotFound, "opening dataset file", err)
	}

	if cfg.AllInMemory {
		mapped, merr := mmap.Map(f, mmap.RDONLY, 0)
		if merr != nil {
			f.Close()
			return nil, ipierr.Wrap(ipierr.FileFailure, "memory-mapping dataset file", merr)
		}
		prefaultMapped([]byte(mapped))
		log.Infow("dataset mapped into memory", "path", path, "bytes", len(mapped))
		ds, berr := build([]byte(mapped), nil, cfg, requiredProps)
		if berr != nil {
			mapped.Unmap()
			f.Close()
			return nil, berr
		}
		ds.mem = mapped
		ds.file = f
		return ds, nil
	}

	handles := cfg.FileHandles
	if handles < 1 {
		handles = 1
	}
	pool, perr := filepool.New(path, handles)
	if perr != nil {
		f.Close()
		return nil, perr
	}

	header, herr := readHeaderFromPool(pool)
	if herr != nil {
		pool.Close()
		f.Close()
		return nil, herr
	}

	log.Infow("dataset opened file-backed", "path", path, "handles", handles)
	ds, berr := buildFromHeader(header, nil, pool, cfg, requiredProps)
	if berr != nil {
		pool.Close()
		f.Close()
		return nil, berr
	}
	ds.file = f
	ds.pool = pool
	return ds, nil
}

// OpenMemory bootstraps a Dataset from an already-resident byte slice (the
// caller retains ownership; spec.md §6's free_data option governs whether a
// future Manager wrapper takes that ownership instead).
func OpenMemory(data []byte, cfg Config, requiredProps []string) (*Dataset, error) {
	cfg.logger().Infow("dataset opened from memory", "bytes", len(data))
	return build(data, nil, cfg, requiredProps)
}

func readHeaderFromPool(pool *filepool.Pool) (wire.DataSetHeader, error) {
	handle, idx, err := pool.Get()
	if err != nil {
		return wire.DataSetHeader{}, err
	}
	defer pool.Release(idx)

	// The collection-header table's length depends only on the fixed
	// constant count of sub-collections, so a generous fixed-size probe
	// buffer is always sufficient (mirrors internal/profile's probe-window
	// approach for a self-describing prefix region).
	const probe = 4096
	buf := make([]byte, probe)
	n, rerr := handle.ReadAt(buf, 0)
	if rerr != nil && n == 0 {
		return wire.DataSetHeader{}, ipierr.Wrap(ipierr.CollectionFileReadFail, "reading dataset header", rerr)
	}
	return wire.ParseDataSetHeader(buf[:n])
}

func build(mem []byte, pool *filepool.Pool, cfg Config, requiredProps []string) (*Dataset, error) {
	header, err := wire.ParseDataSetHeader(mem)
	if err != nil {
		return nil, err
	}
	return buildFromHeader(header, mem, pool, cfg, requiredProps)
}

// buildFromHeader constructs every sub-collection and derived table given an
// already-parsed header and one of (mem, pool) as the byte source.
func buildFromHeader(header wire.DataSetHeader, mem []byte, pool *filepool.Pool, cfg Config, requiredProps []string) (*Dataset, error) {
	ds := &Dataset{
		Header:             header,
		propertyValueIndex: cfg.PropertyValueIndex,
	}

	region := func(idx wire.CollectionIndex) wire.CollectionHeader { return header.Collections[idx] }

	col := func(idx wire.CollectionIndex, cfgC store.Config, reader store.RecordReader) (store.Collection, error) {
		h := region(idx)
		src := store.Source{Pool: pool, Base: int64(h.StartPosition)}
		if mem != nil {
			end := h.StartPosition + h.Length
			if end > uint32(len(mem)) {
				return nil, ipierr.New(ipierr.CollectionOffsetOutOfRange, "sub-collection extends past mapped data")
			}
			src = store.Source{Mem: mem[h.StartPosition:end]}
		}
		return store.New(h, cfgC, src, reader)
	}

	var err error

	if ds.strings, err = col(wire.ColStrings, cfg.Strings, stringsReader{}); err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.maps, err = col(wire.ColMaps, cfg.Maps, nil); err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.properties, err = col(wire.ColProperties, cfg.Properties, nil); err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.values, err = col(wire.ColValues, cfg.Values, nil); err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.profiles, err = col(wire.ColProfiles, cfg.Profiles, profile.ProfileRecordReader{}); err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.profileGroups, err = col(wire.ColProfileGroups, cfg.ProfileGroups, profile.GroupRecordReader{}); err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.profileOffsets, err = col(wire.ColProfileOffsets, cfg.ProfileOffsets, nil); err != nil {
		ds.closeCollections()
		return nil, err
	}

	componentsRegion, err := readRegion(mem, pool, region(wire.ColComponents))
	if err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.components, err = decodeComponents(componentsRegion, region(wire.ColComponents).Count); err != nil {
		ds.closeCollections()
		return nil, err
	}
	ds.componentByID = make(map[byte]int, len(ds.components))
	for i, c := range ds.components {
		ds.componentByID[c.ID] = i
	}

	graphsRegion, err := readRegion(mem, pool, region(wire.ColGraphs))
	if err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.graphInfos, err = decodeGraphInfos(graphsRegion, region(wire.ColGraphs).Count); err != nil {
		ds.closeCollections()
		return nil, err
	}

	ptRegion, err := readRegion(mem, pool, region(wire.ColPropertyTypes))
	if err != nil {
		ds.closeCollections()
		return nil, err
	}
	if ds.propertyTypes, err = decodePropertyTypes(ptRegion, region(wire.ColPropertyTypes).Count); err != nil {
		ds.closeCollections()
		return nil, err
	}

	ds.graphs = make(map[graphKey]*graph.Graph, len(ds.graphInfos))
	for _, info := range ds.graphInfos {
		g, gerr := buildGraph(mem, pool, info)
		if gerr != nil {
			ds.closeCollections()
			return nil, gerr
		}
		ds.graphs[graphKey{componentID: componentIDFor(ds.components, info.ComponentID), ipVersion: info.IPVersion}] = g
	}

	if err := ds.buildHeaderTable(cfg.UsesUpperPrefixedHeaders); err != nil {
		ds.closeCollections()
		return nil, err
	}

	if ds.Required, err = ds.resolveRequiredProperties(requiredProps); err != nil {
		ds.closeCollections()
		return nil, err
	}

	return ds, nil
}

// componentIDFor resolves ComponentGraphInfo.ComponentID (spec.md's field
// name suggests a Component.ID byte value, not a slice index) back to the
// Component.ID it names; falls back to the raw value if it doesn't match any
// decoded component (defensive: the graph key still has to be something).
func componentIDFor(components []wire.Component, componentID uint32) byte {
	for _, c := range components {
		if uint32(c.ID) == componentID {
			return c.ID
		}
	}
	return byte(componentID)
}

func (ds *Dataset) closeCollections() {
	for _, c := range []store.Collection{ds.strings, ds.maps, ds.properties, ds.values, ds.profiles, ds.profileGroups, ds.profileOffsets} {
		if c != nil {
			c.Close()
		}
	}
}

// Close releases every sub-collection and, for a file-backed or mapped data
// set, the underlying OS resources. Safe to call once; spec.md §4.4 leaves
// repeated release/free discipline to the resource manager layer above this.
func (ds *Dataset) Close() error {
	if ds.closed {
		return nil
	}
	ds.closed = true
	ds.closeCollections()
	var firstErr error
	if ds.pool != nil {
		if err := ds.pool.Close(); err != nil {
			firstErr = err
		}
	}
	if ds.mem != nil {
		if err := ds.mem.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if ds.file != nil {
		if err := ds.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// stringAt decodes the text Strings entry at byte offset off.
func (ds *Dataset) stringAt(off uint32) (string, error) {
	item, err := ds.strings.Get(off)
	if err != nil {
		return "", err
	}
	defer item.Release()
	entry, err := wire.ReadStringsEntry(wire.NewCursor(item.Bytes))
	if err != nil {
		return "", err
	}
	return strval.Decode(strval.TypeString, entry.Bytes, nil)
}

// property reads and decodes the Property record at index i.
func (ds *Dataset) property(i uint32) (wire.Property, error) {
	item, err := ds.properties.Get(i)
	if err != nil {
		return wire.Property{}, err
	}
	defer item.Release()
	return wire.ReadProperty(wire.NewCursor(item.Bytes))
}

// resolveRequiredProperties scans the Properties collection once, matching
// each caller-requested name against its decoded NameOffset string (spec.md
// §2 item 7: "resolves required properties").
func (ds *Dataset) resolveRequiredProperties(names []string) ([]RequiredProperty, error) {
	if len(names) == 0 {
		return nil, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	out := make([]RequiredProperty, 0, len(names))
	count := ds.properties.Count()
	for i := uint32(0); i < count && len(out) < len(names); i++ {
		p, err := ds.property(i)
		if err != nil {
			return nil, err
		}
		name, err := ds.stringAt(p.NameOffset)
		if err != nil {
			return nil, err
		}
		if !wanted[name] {
			continue
		}
		pt, ok := wire.FindPropertyType(ds.propertyTypes, p.NameOffset)
		if !ok {
			return nil, ipierr.New(ipierr.CorruptData, "property has no matching PropertyTypes entry")
		}
		out = append(out, RequiredProperty{Name: name, Index: i, Property: p, Type: pt})
		delete(wanted, name)
	}
	if len(wanted) > 0 {
		return nil, ipierr.New(ipierr.RequiredPropertyNotPresent, "one or more required properties not found in data set")
	}
	return out, nil
}

// buildHeaderTable scans every component's key/value list, resolving each
// header-id as a Strings offset into its name, and builds the unique header
// table (spec.md §4.8).
func (ds *Dataset) buildHeaderTable(upperPrefixed bool) error {
	var names []string
	for _, c := range ds.components {
		for _, kv := range c.KeyValues {
			name, err := ds.stringAt(kv.HeaderID)
			if err != nil {
				return err
			}
			names = append(names, name)
		}
	}
	ds.Headers = headers.New(names, upperPrefixed)
	return nil
}

// GraphFor returns the bootstrapped graph for (componentID, ipVersion), or
// false if the data set carries no such graph.
func (ds *Dataset) GraphFor(componentID byte, ipVersion uint8) (*graph.Graph, bool) {
	g, ok := ds.graphs[graphKey{componentID: componentID, ipVersion: ipVersion}]
	return g, ok
}

// Components returns every decoded Component record, in file order.
func (ds *Dataset) Components() []wire.Component { return ds.components }

// ComponentName decodes a Component's display name.
func (ds *Dataset) ComponentName(c wire.Component) (string, error) { return ds.stringAt(c.NameOffset) }

// ResolveGraphResult turns a graph.Result into its weighted profile list.
// The file layout carries exactly one ProfileOffsets indirection collection
// (spec.md §6), so both FirstProfileIndex and FirstProfileGroupIndex ranges
// are positions within it: a graph's "offset" is always an index into
// ProfileOffsets first, whose decoded Offset field then addresses the
// target collection directly — Profiles for a direct-profile result,
// ProfileGroups for a group result (spec.md §6: "either a profile offset
// (into the profile-offsets collection) or a profile-group offset (into the
// profile-groups collection)"). See DESIGN.md for this and for why the
// ProfileOffsets entry is addressed positionally rather than by
// binary-searching its optional id field.
func (ds *Dataset) ResolveGraphResult(res graph.Result) ([]profile.WeightedProfile, error) {
	off, err := ds.profileByteOffset(res.Offset)
	if err != nil {
		return nil, err
	}
	if res.IsGroup {
		return profile.ResolveResult(ds.profiles, ds.profileGroups, off, true)
	}
	return profile.ResolveResult(ds.profiles, nil, off, false)
}

// profileByteOffset resolves a positional ProfileOffsets index to the byte
// offset of its target record (spec.md §6).
func (ds *Dataset) profileByteOffset(index uint32) (uint32, error) {
	item, err := ds.profileOffsets.Get(index)
	if err != nil {
		return 0, err
	}
	defer item.Release()
	c := wire.NewCursor(item.Bytes)
	if ds.profileOffsets.ElementSize() == 8 {
		po, perr := wire.ReadKeyedProfileOffset(c)
		if perr != nil {
			return 0, perr
		}
		return po.Offset, nil
	}
	po, perr := wire.ReadBareProfileOffset(c)
	if perr != nil {
		return 0, perr
	}
	return po.Offset, nil
}

// MapEntry reads the j-th value-index map entry of a property with a fixed
// enumerable value set (spec.md §6's property_value_index accelerator):
// Maps[p.FirstMapIndex+j] for j in [0, p.MapCount).
func (ds *Dataset) MapEntry(p wire.Property, j uint32) (wire.MapEntry, error) {
	if j >= p.MapCount {
		return wire.MapEntry{}, ipierr.New(ipierr.CollectionIndexOutOfRange, "map entry index exceeds property's MapCount")
	}
	item, err := ds.maps.Get(p.FirstMapIndex + j)
	if err != nil {
		return wire.MapEntry{}, err
	}
	defer item.Release()
	return wire.ReadMapEntry(wire.NewCursor(item.Bytes))
}

// Value reads and decodes the Value record at index i.
func (ds *Dataset) Value(i uint32) (wire.Value, error) {
	item, err := ds.values.Get(i)
	if err != nil {
		return wire.Value{}, err
	}
	defer item.Release()
	return wire.ReadValue(wire.NewCursor(item.Bytes))
}

// ValueText decodes value index i's text, given the stored type its owning
// property declares (spec.md §4.6).
func (ds *Dataset) ValueText(i uint32, storedType strval.StoredType, geom strval.GeometryFormatter) (string, error) {
	v, err := ds.Value(i)
	if err != nil {
		return "", err
	}
	raw, err := ds.valueRaw(v)
	if err != nil {
		return "", err
	}
	return strval.Decode(storedType, raw, geom)
}

// valueRaw resolves a Value record's name offset to its raw Strings bytes —
// the stored representation spec.md §9 describes values living in.
func (ds *Dataset) valueRaw(v wire.Value) ([]byte, error) {
	item, err := ds.strings.Get(v.NameOffset)
	if err != nil {
		return nil, err
	}
	defer item.Release()
	entry, err := wire.ReadStringsEntry(wire.NewCursor(item.Bytes))
	if err != nil {
		return nil, err
	}
	raw := make([]byte, len(entry.Bytes))
	copy(raw, entry.Bytes)
	return raw, nil
}

// PropertyValueIndexEnabled reports whether the property_value_index
// accelerator was requested at bootstrap.
func (ds *Dataset) PropertyValueIndexEnabled() bool { return ds.propertyValueIndex }
