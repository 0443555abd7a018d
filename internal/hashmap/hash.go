package hashmap

import "github.com/cespare/xxhash/v2"

// HashUint32 is the Knuth multiplicative hash for integer keys: a
// single multiply-and-shift that keeps the product's top
// capacityExponent bits, cheap enough that an ecosystem hash function
// buys nothing over it.
func HashUint32(key uint32, capacityExponent uint32) uint32 {
	a := key * 2654435769
	return a >> (32 - capacityExponent)
}

// HashUint32Mod is HashUint32's multiply without the shift, for callers
// that don't track a capacity exponent (the route maps in
// internal/compute). The Map type masks the result by capacity-1, so
// these maps index with the product's low bits, not the top bits
// HashUint32 keeps.
func HashUint32Mod(key uint32) uint32 {
	return key * 2654435769
}

// HashBytes hashes a borrowed byte string (driver name, town name) with
// xxhash64 truncated to 32 bits. Driver and town maps hash with its
// string form, HashString, in place of the source's two slightly
// different ad hoc multiply-hash loops.
func HashBytes(b []byte) uint32 {
	return uint32(xxhash.Sum64(b))
}

// HashString is HashBytes for a string key, avoiding the []byte copy a
// []byte(s) conversion would force at every lookup. Map[string, E]
// instances (driver and town name interning) hash with this.
func HashString(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}
