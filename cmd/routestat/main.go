// Command routestat computes one of five ranked route-network reports
// (D1, D2, L, S, T) from a routes.csv file. Grounded on
// original_source/progc/src/main.c's dispatch shape: parse args,
// open the file, call exactly one computation, exit 0/1/2.
package main

import (
	"fmt"
	"os"

	"github.com/csvquery/routestat/internal/cliopts"
	"github.com/csvquery/routestat/internal/compute"
	"github.com/csvquery/routestat/internal/profiler"
	"github.com/csvquery/routestat/internal/routestream"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	opts, err := cliopts.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	prof := profiler.New(opts.Profile, stderr)
	defer prof.Span("total")()

	var stream *routestream.Stream
	if opts.Mmap {
		stream, err = routestream.OpenMmap(opts.Path)
	} else {
		stream, err = routestream.Open(opts.Path)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer stream.Close()

	computeOpts := []compute.Option{compute.WithProfiler(prof)}
	if opts.Spill {
		computeOpts = append(computeOpts, compute.WithSpill(opts.SpillBudget))
	}

	switch opts.Computation {
	case cliopts.D1:
		err = compute.RunD1(stream, stdout, computeOpts...)
	case cliopts.D2:
		err = compute.RunD2(stream, stdout, computeOpts...)
	case cliopts.L:
		err = compute.RunL(stream, stdout, computeOpts...)
	case cliopts.S:
		err = compute.RunS(stream, stdout, computeOpts...)
	case cliopts.T:
		err = compute.RunT(stream, stdout, computeOpts...)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
