// Command benchmark generates a synthetic routes.csv fixture and runs
// all five computations against it, reporting throughput.
package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/csvquery/routestat/internal/compute"
	"github.com/csvquery/routestat/internal/profiler"
	"github.com/csvquery/routestat/internal/routestream"
)

func main() {
	sizeMB := 500
	if len(os.Args) >= 2 {
		fmt.Sscanf(os.Args[1], "%d", &sizeMB)
	}

	fmt.Printf("Generating %d MB routes.csv...\n", sizeMB)
	tmpDir, _ := os.MkdirTemp("", "routestat_bench")
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "routes.csv")
	bytesWritten, rows := generateFixture(csvPath, int64(sizeMB)*1024*1024)
	fmt.Printf("Generated %d rows (%.2f MB)\n", rows, float64(bytesWritten)/1024/1024)

	for _, run := range []struct {
		name string
		fn   func(*routestream.Stream, io.Writer, ...compute.Option) error
	}{
		{"D1", compute.RunD1},
		{"D2", compute.RunD2},
		{"L", compute.RunL},
		{"S", compute.RunS},
		{"T", compute.RunT},
	} {
		stream, err := routestream.Open(csvPath)
		if err != nil {
			panic(err)
		}
		prof := profiler.New(true, os.Stderr)
		start := time.Now()
		if err := run.fn(stream, os.Stdout, compute.WithProfiler(prof)); err != nil {
			panic(err)
		}
		elapsed := time.Since(start)
		stream.Close()

		mbPerSec := float64(bytesWritten) / 1024 / 1024 / elapsed.Seconds()
		fmt.Printf("\n--------------------------------------------------\n")
		fmt.Printf("%s throughput: %.2f MB/s (%v)\n", run.name, mbPerSec, elapsed)
		fmt.Printf("--------------------------------------------------\n")
	}
}

func generateFixture(path string, limit int64) (int64, int) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 64*1024)
	w.WriteString("route_id;step_id;town_a;town_b;distance;driver_name\n")

	const numDrivers = 200
	const numTowns = 500

	rng := rand.New(rand.NewSource(123))
	var bytesWritten int64
	rows := 0
	routeID := 0
	buf := make([]byte, 0, 128)

	for bytesWritten < limit {
		routeID++
		steps := 1 + rng.Intn(8)
		driver := fmt.Sprintf("driver-%d", rng.Intn(numDrivers))
		prevTown := rng.Intn(numTowns)
		for step := 1; step <= steps; step++ {
			rows++
			town := rng.Intn(numTowns)
			buf = buf[:0]
			buf = fmt.Appendf(buf, "%d;%d;town-%d;town-%d;%d.%d;%s\n",
				routeID, step, prevTown, town, 1+rng.Intn(500), rng.Intn(10), driver)
			n, _ := w.Write(buf)
			bytesWritten += int64(n)
			prevTown = town
		}
	}
	w.Flush()
	return bytesWritten, rows
}
