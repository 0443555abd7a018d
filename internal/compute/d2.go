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

// D2 reports, per driver, the total distance driven across every step
// they appear on — the top 10 by distance, ties broken by driver name
// descending. Unlike D1, there is nothing to deduplicate per route, so
// there is no partitioner: one driver map accumulates every row in a
// single pass. Grounded on
// original_source/progc/src/computations/computation_d2_ex.c.

const d2TopK = 10

// RunD2 streams routes.csv once, computes the D2 ranking, and writes it
// to out as "driver;total_distance\n" lines, highest distance first.
func RunD2(stream *routestream.Stream, out io.Writer, opts ...Option) error {
	o := resolveOptions(opts)

	namesArena := arena.New(arenaBlockBytes, 1)
	recordsArena := arena.New(arenaBlockBytes, 8)
	driverMap := newDriverMap()

	if err := d2Ingest(stream, o.profiler, namesArena, recordsArena, driverMap); err != nil {
		return err
	}
	return d2RankAndPrint(o.profiler, driverMap, out)
}

func d2Ingest(stream *routestream.Stream, prof *profiler.Profiler, namesArena, recordsArena *arena.Arena, driverMap *hashmap.Map[string, driverMapEntry]) error {
	defer span(prof, "d2:ingest")()

	var step routestream.RouteStep
	for stream.Read(&step, routestream.DriverName|routestream.Distance) {
		driver := internDriver(driverMap, namesArena, recordsArena, step.DriverName)
		driver.TotalDist += step.Distance
	}
	return stream.Err()
}

type d2SortVal struct {
	TotalDist float32
	Name      []byte
}

// d2SortCompare orders ascending by (TotalDist, Name) so that
// WalkDescending yields distance descending, name descending on ties —
// unlike d1SortCompare, D2 has no "ties ascending" override, so the
// tie branch is not reversed.
func d2SortCompare(tree, query d2SortVal) int {
	switch {
	case tree.TotalDist < query.TotalDist:
		return -1
	case tree.TotalDist > query.TotalDist:
		return 1
	default:
		return bytes.Compare(tree.Name, query.Name)
	}
}

func d2RankAndPrint(prof *profiler.Profiler, driverMap *hashmap.Map[string, driverMapEntry], out io.Writer) error {
	defer span(prof, "d2:rank")()

	var sortRoot *avltree.Node[d2SortVal]
	for _, e := range driverMap.Entries() {
		if !e.occupied {
			continue
		}
		v := d2SortVal{TotalDist: e.rec.TotalDist, Name: e.rec.Name}
		sortRoot, _, _ = avltree.Insert(sortRoot, v, avltree.NewNode[d2SortVal], d2SortCompare)
	}

	var werr error
	avltree.WalkDescending(sortRoot, d2TopK, func(v d2SortVal) bool {
		if _, err := fmt.Fprintf(out, "%s;%f\n", v.Name, v.TotalDist); err != nil {
			werr = err
			return false
		}
		return true
	})
	return werr
}
