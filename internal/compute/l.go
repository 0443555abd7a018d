package compute

import (
	"fmt"
	"io"

	"github.com/csvquery/routestat/internal/avltree"
	"github.com/csvquery/routestat/internal/hashmap"
	"github.com/csvquery/routestat/internal/profiler"
	"github.com/csvquery/routestat/internal/routestream"
)

// L reports the 10 routes with the greatest total distance, printed in
// route-id ascending order (a re-sort after extraction, unlike D1/D2/T
// which print directly in ranked order). Grounded on
// original_source/progc/src/computations/computation_l_ex.c: one route
// map accumulates every step's distance in a single pass (no
// partitioner — a route's total distance has no distinctness condition
// to bound per-partition), then threshold-pruned insertion into a
// dist-ordered tree extracts the top 10, which are re-inserted into a
// second, id-ordered tree purely to print them back out in id order.

const (
	lTopK             = 10
	lRouteMapCapacity = 65536
	lRouteMapLoad     = 0.75
)

type lRouteEntry struct {
	occupied bool
	routeID  uint32
	dist     float32
}

func lRouteHash(key uint32) uint32               { return hashmap.HashUint32Mod(key) }
func lRouteEqual(e lRouteEntry, key uint32) bool { return e.occupied && e.routeID == key }
func lRouteOccupied(e lRouteEntry) bool          { return e.occupied }
func lRouteMark(e *lRouteEntry, key uint32)      { e.occupied = true; e.routeID = key; e.dist = 0 }
func lRouteKey(e lRouteEntry) uint32             { return e.routeID }

// RunL streams routes.csv once, computes the L ranking, and writes it
// to out as "route_id;total_distance\n" lines in route-id order.
func RunL(stream *routestream.Stream, out io.Writer, opts ...Option) error {
	o := resolveOptions(opts)

	routeMap := hashmap.New[uint32, lRouteEntry](lRouteMapCapacity, lRouteMapLoad,
		lRouteHash, lRouteEqual, lRouteOccupied, lRouteMark, lRouteKey)

	if err := lIngest(stream, o.profiler, routeMap); err != nil {
		return err
	}
	return lRankAndPrint(o.profiler, routeMap, out)
}

func lIngest(stream *routestream.Stream, prof *profiler.Profiler, routeMap *hashmap.Map[uint32, lRouteEntry]) error {
	defer span(prof, "l:ingest")()

	var step routestream.RouteStep
	for stream.Read(&step, routestream.RouteID|routestream.Distance) {
		e := routeMap.Lookup(step.RouteID)
		if e == nil {
			e = routeMap.Insert(step.RouteID)
		}
		e.dist += step.Distance
	}
	return stream.Err()
}

type lDistVal struct {
	Dist    float32
	RouteID uint32
}

// lDistCompare orders ascending by (Dist, RouteID) so that
// WalkDescending yields Dist descending, RouteID descending on ties at
// the selection cutoff — spec.md has no "ties ascending" override for
// L's selection BST, so the tie branch is not reversed. The separate
// lIDCompare tree below re-sorts the extracted top K ascending purely
// for printing.
func lDistCompare(tree, query lDistVal) int {
	switch {
	case tree.Dist < query.Dist:
		return -1
	case tree.Dist > query.Dist:
		return 1
	case tree.RouteID < query.RouteID:
		return -1
	case tree.RouteID > query.RouteID:
		return 1
	default:
		return 0
	}
}

// lIDCompare is a plain ascending comparator over RouteID, used for the
// second-stage tree that re-sorts the extracted top K for printing.
func lIDCompare(tree, query lDistVal) int {
	switch {
	case tree.RouteID < query.RouteID:
		return -1
	case tree.RouteID > query.RouteID:
		return 1
	default:
		return 0
	}
}

func lRankAndPrint(prof *profiler.Profiler, routeMap *hashmap.Map[uint32, lRouteEntry], out io.Writer) error {
	defer span(prof, "l:rank")()

	var distRoot *avltree.Node[lDistVal]
	count := 0
	for _, e := range routeMap.Entries() {
		if !e.occupied {
			continue
		}
		v := lDistVal{Dist: e.dist, RouteID: e.routeID}
		if count >= lTopK {
			if threshold, ok := avltree.Threshold(distRoot, lTopK); ok && lDistCompare(v, threshold) < 0 {
				continue
			}
		}
		distRoot, _, _ = avltree.Insert(distRoot, v, avltree.NewNode[lDistVal], lDistCompare)
		count++
	}

	var idRoot *avltree.Node[lDistVal]
	avltree.WalkDescending(distRoot, lTopK, func(v lDistVal) bool {
		idRoot, _, _ = avltree.Insert(idRoot, v, avltree.NewNode[lDistVal], lIDCompare)
		return true
	})

	var werr error
	avltree.WalkAscending(idRoot, func(v lDistVal) {
		if werr != nil {
			return
		}
		if _, err := fmt.Fprintf(out, "%d;%f\n", v.RouteID, v.Dist); err != nil {
			werr = err
		}
	})
	return werr
}
