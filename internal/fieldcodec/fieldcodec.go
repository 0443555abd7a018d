// Package fieldcodec parses the individual field types of a route-step
// row out of the stream reader's buffer without allocating: integers
// and floats are accumulated digit by digit, and strings are returned
// as (pointer, length) slices borrowed straight from the buffer.
package fieldcodec

import "math"

// ParseUint accumulates an unsigned integer from a digit run. An empty
// field parses to 0. No overflow check is performed: the CSV schema
// bounds inputs to values well within uint32 range.
func ParseUint(b []byte) uint32 {
	var n uint32
	for _, c := range b {
		n = n*10 + uint32(c-'0')
	}
	return n
}

// ParseFloat accumulates an unsigned fixed-point decimal with at most
// one '.'. Locale-independent: '.' is always the decimal point,
// regardless of process locale.
func ParseFloat(b []byte) float32 {
	var intPart, frac uint64
	fracLen := 0
	inFrac := false
	for _, c := range b {
		if c == '.' {
			inFrac = true
			continue
		}
		d := uint64(c - '0')
		if inFrac {
			frac = frac*10 + d
			fracLen++
		} else {
			intPart = intPart*10 + d
		}
	}
	f := float64(intPart)
	if fracLen > 0 {
		f += float64(frac) / math.Pow10(fracLen)
	}
	return float32(f)
}

// BorrowString returns buf[start:delim] as a zero-copy slice and writes
// a '\0' at delim, the spot the field's trailing delimiter occupied.
// The null write is kept for parity with the field's C ancestor (a
// convenience for C-string comparisons there); Go code should treat the
// returned slice as length-prefixed and never scan for the terminator.
// The slice is only valid until the stream reader's next Read call.
func BorrowString(buf []byte, start, delim int) []byte {
	s := buf[start:delim:delim]
	buf[delim] = 0
	return s
}
