// Package ipintel is the public facade of spec.md §6's language-agnostic
// API surface: Manager for opening and hot-reloading a data set, and
// Results for running lookups against it, both built on the internal
// bootstrap/evaluation/resolution packages.
package ipintel

import (
	"go.uber.org/zap"

	"github.com/51Degrees/ip-intelligence-go/internal/dataset"
	"github.com/51Degrees/ip-intelligence-go/internal/store"
)

// Config carries every option spec.md §6's Configuration options table
// names. The zero value opens a file-backed data set with no preloading
// or caching (the "raw file collection" case of spec.md §4.1).
type Config struct {
	// AllInMemory loads the entire file into RAM; every collection
	// becomes an in-memory slice and Loaded/Capacity are ignored.
	AllInMemory bool

	// UseTempFile copies the source file to a temp path before opening it,
	// so the original is not held open for the data set's lifetime.
	UseTempFile bool
	// ReuseTempFile looks in the chosen temp directory for an existing copy
	// (named from the source path, matched by size and leading bytes)
	// before making a new one.
	ReuseTempFile bool
	// TempDirs lists candidate directories for the temp copy, in priority
	// order. The first entry that exists as a directory is used; with none,
	// the OS temp directory is used.
	TempDirs []string

	// FreeData documents that OpenMemory takes ownership of the supplied
	// buffer: the caller must not read or mutate it after the call
	// returns. Go's garbage collector reclaims it once the data set and
	// every borrow of it are gone, so no explicit free call is needed —
	// see DESIGN.md's Open Question decision on this option.
	FreeData bool

	UsesUpperPrefixedHeaders bool
	PropertyValueIndex       bool
	FileHandles              int

	// MetricsEnabled registers Prometheus counters/histograms for every
	// Manager built from this Config (lookups, evidence lookups, reloads,
	// and their latencies/error counts).
	MetricsEnabled bool

	Strings        store.Config
	Maps           store.Config
	Properties     store.Config
	Values         store.Config
	Profiles       store.Config
	ProfileGroups  store.Config
	ProfileOffsets store.Config

	Logger *zap.SugaredLogger
}

func (c Config) datasetConfig() dataset.Config {
	return dataset.Config{
		AllInMemory:              c.AllInMemory,
		UsesUpperPrefixedHeaders: c.UsesUpperPrefixedHeaders,
		PropertyValueIndex:       c.PropertyValueIndex,
		FileHandles:              c.FileHandles,
		Strings:                  c.Strings,
		Maps:                     c.Maps,
		Properties:               c.Properties,
		Values:                   c.Values,
		Profiles:                 c.Profiles,
		ProfileGroups:            c.ProfileGroups,
		ProfileOffsets:           c.ProfileOffsets,
		Logger:                   c.Logger,
	}
}

// loadEverything mirrors internal/store.Config's own "negative Loaded
// means load everything" sentinel (store.Config doc comment); duplicated
// here rather than exported since it's a public-facing magic value this
// package's presets need to write into every sub-collection's Config.
const loadEverything = -1

func fullyLoaded() store.Config { return store.Config{Loaded: loadEverything} }

// InMemoryConfig is the "in_memory" preset: everything in RAM, no cache
// (spec.md §6).
func InMemoryConfig() Config {
	return Config{AllInMemory: true}
}

// HighPerformanceConfig is the "high_performance" preset: every
// collection fully preloaded, same resident-memory result as
// InMemoryConfig but reached per-collection rather than by mapping the
// whole file (spec.md §6: "as above, all collections retained").
func HighPerformanceConfig() Config {
	full := fullyLoaded()
	return Config{
		FileHandles:    1,
		Strings:        full,
		Maps:           full,
		Properties:     full,
		Values:         full,
		Profiles:       full,
		ProfileGroups:  full,
		ProfileOffsets: full,
	}
}

// LowMemoryConfig is the "low_memory" preset: no preloading, no cache,
// one file read per request (spec.md §6).
func LowMemoryConfig() Config {
	return Config{FileHandles: 4}
}

// BalancedConfig is the "balanced" preset: small preloads plus modest
// caches on every collection (spec.md §6).
func BalancedConfig() Config {
	modest := store.Config{Loaded: 64, Capacity: 4096, Concurrency: 4}
	return Config{
		FileHandles:    8,
		Strings:        modest,
		Maps:           modest,
		Properties:     modest,
		Values:         modest,
		Profiles:       modest,
		ProfileGroups:  modest,
		ProfileOffsets: modest,
	}
}

// BalancedTempConfig is the "balanced_temp" preset: BalancedConfig plus
// copying the source through a temp file before opening it (spec.md §6).
func BalancedTempConfig() Config {
	cfg := BalancedConfig()
	cfg.UseTempFile = true
	return cfg
}
