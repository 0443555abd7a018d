package compute

import (
	"fmt"
	"io"

	"github.com/csvquery/routestat/internal/avltree"
	"github.com/csvquery/routestat/internal/hashmap"
	"github.com/csvquery/routestat/internal/profiler"
	"github.com/csvquery/routestat/internal/routestream"
)

// S reports the 50 routes with the widest spread between their longest
// and shortest step (max-min), each line giving rank, route id, min,
// average, max and the spread itself. Grounded on
// original_source/progc/src/computations/computation_s_ex.c: like L,
// one route map accumulates min/max/sum/count per route in a single
// pass with no partitioner, then threshold-pruned insertion into a
// spread-ordered tree extracts the top 50. Unlike the C ancestor, which
// overwrites its sum field with the average in place to save a field,
// the average is computed once as a local value at scan time and never
// written back to the map entry.

const (
	sTopK             = 50
	sRouteMapCapacity = 65536
	sRouteMapLoad     = 0.75
)

type sRouteEntry struct {
	occupied bool
	routeID  uint32
	min, max float32
	sum      float32
	nSteps   uint32
}

func sRouteHash(key uint32) uint32              { return hashmap.HashUint32Mod(key) }
func sRouteEqual(e sRouteEntry, key uint32) bool { return e.occupied && e.routeID == key }
func sRouteOccupied(e sRouteEntry) bool          { return e.occupied }
func sRouteMark(e *sRouteEntry, key uint32) {
	e.occupied = true
	e.routeID = key
	e.min, e.max, e.sum, e.nSteps = 0, 0, 0, 0
}
func sRouteKey(e sRouteEntry) uint32 { return e.routeID }

// RunS streams routes.csv once, computes the S ranking, and writes it
// to out as "rank;route_id;min;avg;max;spread\n" lines, rank 1 first.
func RunS(stream *routestream.Stream, out io.Writer, opts ...Option) error {
	o := resolveOptions(opts)

	routeMap := hashmap.New[uint32, sRouteEntry](sRouteMapCapacity, sRouteMapLoad,
		sRouteHash, sRouteEqual, sRouteOccupied, sRouteMark, sRouteKey)

	if err := sIngest(stream, o.profiler, routeMap); err != nil {
		return err
	}
	return sRankAndPrint(o.profiler, routeMap, out)
}

func sIngest(stream *routestream.Stream, prof *profiler.Profiler, routeMap *hashmap.Map[uint32, sRouteEntry]) error {
	defer span(prof, "s:ingest")()

	var step routestream.RouteStep
	for stream.Read(&step, routestream.RouteID|routestream.Distance) {
		e := routeMap.Lookup(step.RouteID)
		if e == nil {
			e = routeMap.Insert(step.RouteID)
			e.min = step.Distance
			e.max = step.Distance
		} else {
			if step.Distance < e.min {
				e.min = step.Distance
			}
			if step.Distance > e.max {
				e.max = step.Distance
			}
		}
		e.sum += step.Distance
		e.nSteps++
	}
	return stream.Err()
}

type sSortVal struct {
	Spread  float32
	RouteID uint32
	Min     float32
	Avg     float32
	Max     float32
}

// sSpreadCompare orders ascending by (Spread, RouteID) so that
// WalkDescending yields spread descending, route id descending on
// ties — spec.md has no "ties ascending" override for S, so the tie
// branch is not reversed.
func sSpreadCompare(tree, query sSortVal) int {
	switch {
	case tree.Spread < query.Spread:
		return -1
	case tree.Spread > query.Spread:
		return 1
	case tree.RouteID < query.RouteID:
		return -1
	case tree.RouteID > query.RouteID:
		return 1
	default:
		return 0
	}
}

func sRankAndPrint(prof *profiler.Profiler, routeMap *hashmap.Map[uint32, sRouteEntry], out io.Writer) error {
	defer span(prof, "s:rank")()

	var sortRoot *avltree.Node[sSortVal]
	count := 0
	for _, e := range routeMap.Entries() {
		if !e.occupied || e.nSteps == 0 {
			continue
		}
		v := sSortVal{
			Spread:  e.max - e.min,
			RouteID: e.routeID,
			Min:     e.min,
			Avg:     e.sum / float32(e.nSteps),
			Max:     e.max,
		}
		if count >= sTopK {
			if threshold, ok := avltree.Threshold(sortRoot, sTopK); ok && sSpreadCompare(v, threshold) < 0 {
				continue
			}
		}
		sortRoot, _, _ = avltree.Insert(sortRoot, v, avltree.NewNode[sSortVal], sSpreadCompare)
		count++
	}

	var werr error
	rank := 0
	avltree.WalkDescending(sortRoot, sTopK, func(v sSortVal) bool {
		rank++
		if _, err := fmt.Fprintf(out, "%d;%d;%f;%f;%f;%f\n", rank, v.RouteID, v.Min, v.Avg, v.Max, v.Spread); err != nil {
			werr = err
			return false
		}
		return true
	})
	return werr
}
