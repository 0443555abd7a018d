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

const d1TopK = 10

// D1 reports, per driver, the number of distinct routes they drove at
// least one step of — the top 10 by route count, ties broken by driver
// name ascending. Grounded on
// original_source/progc/src/computations/computation_d1_ex.c.

// d1Part is one (route, driver) pairing produced by phase 1 and shuffled
// into the partitioner; phase 2 dedups drivers within each route.
type d1Part struct {
	RouteID uint32
	Driver  *driverRecord
}

type driverListNode struct {
	driver *driverRecord
	next   *driverListNode
}

type d1RouteEntry struct {
	occupied bool
	routeID  uint32
	drivers  *driverListNode
}

func d1RouteHash(key uint32) uint32 { return hashmap.HashUint32Mod(key) }
func d1RouteEqual(e d1RouteEntry, key uint32) bool {
	return e.occupied && e.routeID == key
}
func d1RouteOccupied(e d1RouteEntry) bool { return e.occupied }
func d1RouteMark(e *d1RouteEntry, key uint32) {
	e.occupied = true
	e.routeID = key
	e.drivers = nil
}
func d1RouteKey(e d1RouteEntry) uint32 { return e.routeID }

const (
	d1Buckets            = 64
	d1RouteMapCapacity   = 8192
	d1RouteMapLoadFactor = 0.25
)

// RunD1 streams routes.csv once, computes the D1 ranking, and writes it
// to out as "driver;route_count\n" lines, highest route count first.
func RunD1(stream *routestream.Stream, out io.Writer, opts ...Option) error {
	o := resolveOptions(opts)

	namesArena := arena.New(arenaBlockBytes, 1)
	recordsArena := arena.New(arenaBlockBytes, 8)
	listArena := arena.New(arenaBlockBytes, 8)
	driverMap := newDriverMap()
	parter, err := newPartitioner[d1Part](d1Buckets, o)
	if err != nil {
		return err
	}
	defer parter.Close()

	if err := d1Ingest(stream, o.profiler, namesArena, recordsArena, driverMap, parter); err != nil {
		return err
	}
	d1Aggregate(o.profiler, parter, listArena)
	return d1RankAndPrint(o.profiler, driverMap, out)
}

func d1Ingest(stream *routestream.Stream, prof *profiler.Profiler, namesArena, recordsArena *arena.Arena, driverMap *hashmap.Map[string, driverMapEntry], parter *partitionerT[d1Part]) error {
	defer span(prof, "d1:ingest")()

	var step routestream.RouteStep
	for stream.Read(&step, routestream.RouteID|routestream.DriverName) {
		driver := internDriver(driverMap, namesArena, recordsArena, step.DriverName)
		parter.Add(step.RouteID, d1Part{RouteID: step.RouteID, Driver: driver})
	}
	return stream.Err()
}

func d1Aggregate(prof *profiler.Profiler, parter *partitionerT[d1Part], listArena *arena.Arena) {
	defer span(prof, "d1:aggregate")()

	routeMap := hashmap.New[uint32, d1RouteEntry](d1RouteMapCapacity, d1RouteMapLoadFactor,
		d1RouteHash, d1RouteEqual, d1RouteOccupied, d1RouteMark, d1RouteKey)

	for i := 0; i < parter.NumBuckets(); i++ {
		parter.EachBucket(i, func(p *d1Part) {
			e := routeMap.Lookup(p.RouteID)
			if e == nil {
				e = routeMap.Insert(p.RouteID)
			}
			for n := e.drivers; n != nil; n = n.next {
				if n.driver == p.Driver {
					return
				}
			}
			p.Driver.RouteCount++
			node := arena.Alloc[driverListNode](listArena)
			node.driver = p.Driver
			node.next = e.drivers
			e.drivers = node
		})
		routeMap.Clear(-1)
	}
}

type d1SortVal struct {
	RouteCount int
	Name       []byte
}

// d1SortCompare orders the tree ascending by (RouteCount, reversed
// Name), so that WalkDescending's full reversal yields the wanted
// output order: RouteCount descending, Name ascending on ties.
func d1SortCompare(tree, query d1SortVal) int {
	if tree.RouteCount != query.RouteCount {
		return tree.RouteCount - query.RouteCount
	}
	return bytes.Compare(query.Name, tree.Name)
}

func d1RankAndPrint(prof *profiler.Profiler, driverMap *hashmap.Map[string, driverMapEntry], out io.Writer) error {
	defer span(prof, "d1:rank")()

	var sortRoot *avltree.Node[d1SortVal]
	for _, e := range driverMap.Entries() {
		if !e.occupied {
			continue
		}
		v := d1SortVal{RouteCount: e.rec.RouteCount, Name: e.rec.Name}
		sortRoot, _, _ = avltree.Insert(sortRoot, v, avltree.NewNode[d1SortVal], d1SortCompare)
	}

	var werr error
	avltree.WalkDescending(sortRoot, d1TopK, func(v d1SortVal) bool {
		if _, err := fmt.Fprintf(out, "%s;%d\n", v.Name, v.RouteCount); err != nil {
			werr = err
			return false
		}
		return true
	})
	return werr
}
