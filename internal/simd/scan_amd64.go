//go:build amd64

package simd

import "github.com/klauspost/cpuid/v2"

// useAVX2 and useSSE42 are set at init time based on CPU capabilities,
// sourced from github.com/klauspost/cpuid/v2 rather than hand-rolled
// CPUID asm stubs.
var (
	useAVX2  = cpuid.CPU.Supports(cpuid.AVX2)
	useSSE42 = cpuid.CPU.Supports(cpuid.SSE42)
)

// HasAVX2 returns true if AVX2 is available on this CPU.
func HasAVX2() bool { return useAVX2 }

// HasSSE42 returns true if SSE4.2 is available on this CPU.
func HasSSE42() bool { return useSSE42 }

func useAVX2Wide() bool  { return useAVX2 }
func useSSE42Wide() bool { return useSSE42 }

// Scan scans the input buffer and populates bitmaps for quotes, commas,
// and newlines. Each bit in the output slices corresponds to one byte
// of input. Bitmaps must be pre-allocated with length >= (len(input)+63)/64.
func Scan(input []byte, quotes, commas, newlines []uint64) {
	if len(input) == 0 {
		return
	}
	if useAVX2 || useSSE42 {
		scanWord64(input, quotes, commas, newlines)
		return
	}
	scanScalarRange(input, 0, len(input), quotes, commas, newlines)
}

// ScanWithSeparator scans for quotes, a custom separator, and newlines.
func ScanWithSeparator(input []byte, sep byte, quotes, seps, newlines []uint64) {
	if len(input) == 0 {
		return
	}
	if useAVX2 || useSSE42 {
		scanWord64Sep(input, sep, quotes, seps, newlines)
		return
	}
	scanScalarSepRange(input, 0, len(input), sep, quotes, seps, newlines)
}
