package simd

import "math/bits"

// NumRowDelimiters is the number of delimiters a route-step row carries:
// five ';' field separators plus the terminating '\n'.
const NumRowDelimiters = 6

// FindRowDelimiters locates the five ';' and the terminal '\n' of one
// CSV row starting at buf[0], writing their offsets (relative to
// buf[0]) into pos. It dispatches to a word-batched scan when the CPU
// reports AVX2 or SSE4.2 and buf holds at least one 8-byte word, and to
// a scalar byte search otherwise. Returns ok=false if the row violates the fixed-column
// contract (a sixth ';' before the newline, or a newline before five
// ';' have been seen), a malformed row the caller must abort the run
// on rather than continue parsing.
func FindRowDelimiters(buf []byte) (pos [NumRowDelimiters]int, ok bool) {
	if (useAVX2Wide() || useSSE42Wide()) && len(buf) >= 8 {
		return findRowDelimitersWord64(buf)
	}
	return findRowDelimitersScalar(buf)
}

func findRowDelimitersScalar(buf []byte) (pos [NumRowDelimiters]int, ok bool) {
	count := 0
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case ';':
			if count >= 5 {
				return pos, false
			}
			pos[count] = i
			count++
		case '\n':
			if count != 5 {
				return pos, false
			}
			pos[5] = i
			return pos, true
		}
	}
	return pos, false
}

// findRowDelimitersWord64 mirrors delimiter_search.h's AVX path, with
// 8-byte SWAR words standing in for 256-bit vector loads: combine the
// ';' and '\n' masks for the current word, then repeatedly take the
// lowest set bit and classify it, advancing to the next word once the
// mask runs dry.
func findRowDelimitersWord64(buf []byte) (pos [NumRowDelimiters]int, ok bool) {
	n := len(buf)
	count := 0
	i := 0
	for i+8 <= n {
		word := loadWord64(buf[i:])
		mask := matchMask(word, ';') | matchMask(word, '\n')
		for mask != 0 {
			lane := bits.TrailingZeros8(mask)
			idx := i + lane
			switch buf[idx] {
			case ';':
				if count >= 5 {
					return pos, false
				}
				pos[count] = idx
				count++
			case '\n':
				if count != 5 {
					return pos, false
				}
				pos[5] = idx
				return pos, true
			}
			mask &^= 1 << uint(lane)
		}
		i += 8
	}
	for ; i < n; i++ {
		switch buf[i] {
		case ';':
			if count >= 5 {
				return pos, false
			}
			pos[count] = i
			count++
		case '\n':
			if count != 5 {
				return pos, false
			}
			pos[5] = i
			return pos, true
		}
	}
	return pos, false
}
