// Package compute implements the five ranked reports (D1, D2, L, S, T),
// each composing internal/routestream, internal/hashmap,
// internal/avltree, internal/partition and internal/arena into a
// three-phase ingest/rank/extract pipeline. Hash functions, load
// factors, partition counts and sizes, threshold pruning and print
// formats all follow the corresponding computation_*_ex.c ancestor.
package compute

import (
	"fmt"
	"os"

	"github.com/csvquery/routestat/internal/arena"
	"github.com/csvquery/routestat/internal/hashmap"
	"github.com/csvquery/routestat/internal/partition"
	"github.com/csvquery/routestat/internal/profiler"
)

// arenaBlockBytes and partitionBlockBytes size every arena and
// partitioner this package creates. A single shared size keeps the
// five computations' memory behaviour comparable; it is not a tuning
// knob callers need to see.
const (
	arenaBlockBytes     = 64 * 1024
	partitionBlockBytes = 256 * 1024
)

type partitionerT[T any] = partition.Partitioner[T]

// newPartitioner builds a Partitioner and, if o requests spilling,
// enables it against a fresh temp directory. Callers must defer
// Close() on the result to clean that directory up.
func newPartitioner[T any](numBuckets uint32, o runOptions) (*partitionerT[T], error) {
	p := partition.New[T](numBuckets, partitionBlockBytes)
	if o.spillBudget > 0 {
		dir, err := os.MkdirTemp("", "routestat-spill-*")
		if err != nil {
			return nil, fmt.Errorf("compute: creating spill dir: %w", err)
		}
		if err := p.EnableSpill(o.spillBudget, dir); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// driverRecord is the interned, arena-owned identity of a driver. Map
// entries store a *driverRecord rather than embedding the record
// inline, so a hash map grow (which copies entries, including the
// pointer, into a new backing array) never invalidates a pointer held
// elsewhere in the computation — unlike the C ancestor, whose map
// entries embed the record directly and so are only safe from grow
// invalidation because the driver map's initial capacity is sized
// generously enough to never grow mid-phase. This is a deliberate
// generalisation recorded in DESIGN.md, not an oversight.
type driverRecord struct {
	Name       []byte
	RouteCount int
	TotalDist  float32
}

type driverMapEntry struct {
	occupied bool
	rec      *driverRecord
}

func driverMapHash(key string) uint32 { return hashmap.HashString(key) }
func driverMapEqual(e driverMapEntry, key string) bool {
	return e.occupied && string(e.rec.Name) == key
}
func driverMapOccupied(e driverMapEntry) bool     { return e.occupied }
func driverMapMark(e *driverMapEntry, key string) { e.occupied = true }
func driverMapKey(e driverMapEntry) string        { return string(e.rec.Name) }

// newDriverMap builds the driver-name -> driverRecord map shared by D1
// and D2, grounded on both computations' identical DriverEntry/
// MeasuredString map layout: capacity 4096, load factor 0.75.
func newDriverMap() *hashmap.Map[string, driverMapEntry] {
	return hashmap.New[string, driverMapEntry](4096, 0.75,
		driverMapHash, driverMapEqual, driverMapOccupied, driverMapMark, driverMapKey)
}

// internDriver looks up name in m, inserting and arena-copying it on
// first sight. The returned *driverRecord is stable for the lifetime of
// the run: m may grow and relocate its entry array, but that only
// copies the pointer, never the pointee.
func internDriver(m *hashmap.Map[string, driverMapEntry], namesArena, recordsArena *arena.Arena, name []byte) *driverRecord {
	if e := m.Lookup(string(name)); e != nil {
		return e.rec
	}
	owned := namesArena.Alloc(len(name))
	copy(owned, name)
	rec := arena.Alloc[driverRecord](recordsArena)
	rec.Name = owned

	e := m.Insert(string(owned))
	e.rec = rec
	return rec
}

// span starts a named profiler span, tolerating a nil profiler (the
// common case: profiling is opt-in).
func span(p *profiler.Profiler, name string) func() {
	return p.Span(name)
}

type runOptions struct {
	profiler    *profiler.Profiler
	spillBudget int
}

// Option configures a computation run.
type Option func(*runOptions)

// WithProfiler attaches a span timer; nil or omitted disables profiling.
func WithProfiler(p *profiler.Profiler) Option {
	return func(o *runOptions) { o.profiler = p }
}

// WithSpill enables partition disk spilling (D1 and T, the two
// computations that use a partitioner) once the partitioner's live
// in-memory footprint, summed over all buckets, exceeds budgetBytes. Omitted or budgetBytes<=0 keeps
// everything in memory.
func WithSpill(budgetBytes int) Option {
	return func(o *runOptions) { o.spillBudget = budgetBytes }
}

func resolveOptions(opts []Option) runOptions {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
