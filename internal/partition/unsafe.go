package partition

import "unsafe"

func sizeOf[T any](zero T) int {
	return int(unsafe.Sizeof(zero))
}

// bytesOf reinterprets a slice of T as raw bytes, for spilling plain
// fixed-layout records to disk without a marshaling pass. Any pointer
// fields in T are not a problem for Partitioner's own lifetime: a
// spilled-and-replayed value is only ever read back within the same
// process run, before the arena backing any interned pointer is freed.
func bytesOf[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	n := len(s) * sizeOf(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n)
}

// unsafeElemsOf reinterprets a raw byte buffer as a slice of T, the
// inverse of bytesOf, used when replaying spilled chunks.
func unsafeElemsOf[T any](buf []byte) []T {
	if len(buf) == 0 {
		return nil
	}
	var zero T
	n := len(buf) / sizeOf(zero)
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
}
