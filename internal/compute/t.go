package compute

import (
	"bytes"
	"fmt"
	"io"

	"github.com/csvquery/routestat/internal/arena"
	"github.com/csvquery/routestat/internal/avltree"
	"github.com/csvquery/routestat/internal/hashmap"
	"github.com/csvquery/routestat/internal/profiler"
	"github.com/csvquery/routestat/internal/routestream"
)

// T reports, per town, how many distinct routes pass through it and how
// many routes start there — the top 10 by pass-through count, ties
// broken by town name ascending. Grounded on
// original_source/progc/src/computations/computation_t_ex.c: towns are
// interned the same way D1/D2 intern drivers, and distinctness of
// "which routes pass through town X" is bounded per-partition exactly
// like D1's per-route driver list, except each step visits two towns
// (town A and town B) instead of one driver.

const (
	tBuckets = 128
	tTopK    = 10
)

type townRecord struct {
	Name      []byte
	Passed    uint32
	FirstTown uint32
}

type townMapEntry struct {
	occupied bool
	rec      *townRecord
}

func townMapHash(key string) uint32 { return hashmap.HashString(key) }
func townMapEqual(e townMapEntry, key string) bool {
	return e.occupied && string(e.rec.Name) == key
}
func townMapOccupied(e townMapEntry) bool     { return e.occupied }
func townMapMark(e *townMapEntry, key string) { e.occupied = true }
func townMapKey(e townMapEntry) string        { return string(e.rec.Name) }

func newTownMap() *hashmap.Map[string, townMapEntry] {
	return hashmap.New[string, townMapEntry](4096, 0.75,
		townMapHash, townMapEqual, townMapOccupied, townMapMark, townMapKey)
}

func internTown(m *hashmap.Map[string, townMapEntry], namesArena, recordsArena *arena.Arena, name []byte) *townRecord {
	if e := m.Lookup(string(name)); e != nil {
		return e.rec
	}
	owned := namesArena.Alloc(len(name))
	copy(owned, name)
	rec := arena.Alloc[townRecord](recordsArena)
	rec.Name = owned

	e := m.Insert(string(owned))
	e.rec = rec
	return rec
}

// tPart is one route step's two towns, produced by phase 1 and
// shuffled into the partitioner; phase 2 dedups towns within each
// route.
type tPart struct {
	RouteID      uint32
	TownA, TownB *townRecord
}

type townListNode struct {
	town *townRecord
	next *townListNode
}

type tRouteEntry struct {
	occupied bool
	routeID  uint32
	visited  *townListNode
}

func tRouteHash(key uint32) uint32              { return hashmap.HashUint32Mod(key) }
func tRouteEqual(e tRouteEntry, key uint32) bool { return e.occupied && e.routeID == key }
func tRouteOccupied(e tRouteEntry) bool          { return e.occupied }
func tRouteMark(e *tRouteEntry, key uint32) {
	e.occupied = true
	e.routeID = key
	e.visited = nil
}
func tRouteKey(e tRouteEntry) uint32 { return e.routeID }

// RunT streams routes.csv once, computes the T ranking, and writes it
// to out as "town;routes_through;routes_started\n" lines, highest
// pass-through count first.
func RunT(stream *routestream.Stream, out io.Writer, opts ...Option) error {
	o := resolveOptions(opts)

	namesArena := arena.New(arenaBlockBytes, 1)
	recordsArena := arena.New(arenaBlockBytes, 8)
	listArena := arena.New(arenaBlockBytes, 8)
	townMap := newTownMap()
	parter, err := newPartitioner[tPart](tBuckets, o)
	if err != nil {
		return err
	}
	defer parter.Close()

	if err := tIngest(stream, o.profiler, namesArena, recordsArena, townMap, parter); err != nil {
		return err
	}
	tAggregate(o.profiler, parter, listArena)
	return tRankAndPrint(o.profiler, townMap, out)
}

func tIngest(stream *routestream.Stream, prof *profiler.Profiler, namesArena, recordsArena *arena.Arena, townMap *hashmap.Map[string, townMapEntry], parter *partitionerT[tPart]) error {
	defer span(prof, "t:ingest")()

	var step routestream.RouteStep
	fields := routestream.RouteID | routestream.StepID | routestream.TownA | routestream.TownB
	for stream.Read(&step, fields) {
		townA := internTown(townMap, namesArena, recordsArena, step.TownA)
		townB := internTown(townMap, namesArena, recordsArena, step.TownB)
		if step.StepID == 1 {
			townA.FirstTown++
		}
		parter.Add(step.RouteID, tPart{RouteID: step.RouteID, TownA: townA, TownB: townB})
	}
	return stream.Err()
}

func tAggregate(prof *profiler.Profiler, parter *partitionerT[tPart], listArena *arena.Arena) {
	defer span(prof, "t:aggregate")()

	routeMap := hashmap.New[uint32, tRouteEntry](8192, 0.25,
		tRouteHash, tRouteEqual, tRouteOccupied, tRouteMark, tRouteKey)

	visit := func(e *tRouteEntry, town *townRecord) {
		for n := e.visited; n != nil; n = n.next {
			if n.town == town {
				return
			}
		}
		town.Passed++
		node := arena.Alloc[townListNode](listArena)
		node.town = town
		node.next = e.visited
		e.visited = node
	}

	for i := 0; i < parter.NumBuckets(); i++ {
		parter.EachBucket(i, func(p *tPart) {
			e := routeMap.Lookup(p.RouteID)
			if e == nil {
				e = routeMap.Insert(p.RouteID)
			}
			visit(e, p.TownA)
			visit(e, p.TownB)
		})
		routeMap.Clear(-1)
	}
}

type tSortVal struct {
	Passed    uint32
	FirstTown uint32
	Name      []byte
}

// tSortCompare mirrors d1SortCompare's construction: ascending by
// (Passed, reversed Name), so WalkDescending yields Passed descending,
// Name ascending on ties.
func tSortCompare(tree, query tSortVal) int {
	if tree.Passed != query.Passed {
		if tree.Passed < query.Passed {
			return -1
		}
		return 1
	}
	return bytes.Compare(query.Name, tree.Name)
}

func tRankAndPrint(prof *profiler.Profiler, townMap *hashmap.Map[string, townMapEntry], out io.Writer) error {
	defer span(prof, "t:rank")()

	var sortRoot *avltree.Node[tSortVal]
	for _, e := range townMap.Entries() {
		if !e.occupied {
			continue
		}
		v := tSortVal{Passed: e.rec.Passed, FirstTown: e.rec.FirstTown, Name: e.rec.Name}
		sortRoot, _, _ = avltree.Insert(sortRoot, v, avltree.NewNode[tSortVal], tSortCompare)
	}

	var werr error
	avltree.WalkDescending(sortRoot, tTopK, func(v tSortVal) bool {
		if _, err := fmt.Fprintf(out, "%s;%d;%d\n", v.Name, v.Passed, v.FirstTown); err != nil {
			werr = err
			return false
		}
		return true
	})
	return werr
}
