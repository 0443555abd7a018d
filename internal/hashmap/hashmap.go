// Package hashmap implements a generic open-addressed hash map: linear
// probing, power-of-two capacity, and grow-by-doubling once the load
// factor threshold is reached. Entry layout, hashing, equality, and
// occupancy are all supplied by the caller so one implementation backs
// every keyed aggregate in internal/compute.
package hashmap

// Map is an open-addressed hash table over entries of type E keyed by K.
// Occupancy is tracked inside each entry (via Occupied/MarkOccupied)
// rather than a parallel bitset, matching the packed-occupancy-bit
// convention the entry layouts use.
type Map[K comparable, E any] struct {
	entries []E
	size    uint32

	loadFactor float32

	Hash         func(K) uint32
	Equal        func(E, K) bool
	Occupied     func(E) bool
	MarkOccupied func(*E, K)
	GetKey       func(E) K
}

// New creates a Map with the given initial capacity (must be a power of
// two) and load factor (must be strictly between 0 and 1).
func New[K comparable, E any](capacity uint32, loadFactor float32, hash func(K) uint32, equal func(E, K) bool, occupied func(E) bool, markOccupied func(*E, K), getKey func(E) K) *Map[K, E] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("hashmap: capacity must be a power of two")
	}
	if loadFactor <= 0 || loadFactor >= 1 {
		panic("hashmap: loadFactor must be in (0, 1)")
	}
	return &Map[K, E]{
		entries:      make([]E, capacity),
		loadFactor:   loadFactor,
		Hash:         hash,
		Equal:        equal,
		Occupied:     occupied,
		MarkOccupied: markOccupied,
		GetKey:       getKey,
	}
}

// Capacity reports the current table size, always a power of two.
func (m *Map[K, E]) Capacity() uint32 { return uint32(len(m.entries)) }

// Size reports the number of occupied entries.
func (m *Map[K, E]) Size() uint32 { return m.size }

// Entries exposes the backing array for full scans (used by the sort
// phase of every computation, which walks every occupied slot rather
// than maintaining a separate ordered index).
func (m *Map[K, E]) Entries() []E { return m.entries }

func (m *Map[K, E]) findSlot(entries []E, capacity uint32, key K) uint32 {
	i := m.Hash(key) & (capacity - 1)
	for m.Occupied(entries[i]) && !m.Equal(entries[i], key) {
		i = (i + 1) & (capacity - 1)
	}
	return i
}

// Lookup returns a pointer to the occupied entry for key, or nil if key
// is absent.
func (m *Map[K, E]) Lookup(key K) *E {
	if len(m.entries) == 0 {
		return nil
	}
	i := m.findSlot(m.entries, uint32(len(m.entries)), key)
	if m.Occupied(m.entries[i]) {
		return &m.entries[i]
	}
	return nil
}

// Insert adds key as a new entry and returns a pointer to it for the
// caller to populate. Calling Insert when key is already present is a
// contract violation and panics, mirroring the map's C ancestor.
func (m *Map[K, E]) Insert(key K) *E {
	if float32(m.size+1) >= float32(uint32(len(m.entries)))*m.loadFactor {
		m.grow()
	}
	i := m.findSlot(m.entries, uint32(len(m.entries)), key)
	if m.Occupied(m.entries[i]) {
		panic("hashmap: insert called with a key already present")
	}
	m.MarkOccupied(&m.entries[i], key)
	m.size++
	return &m.entries[i]
}

func (m *Map[K, E]) grow() {
	nextCap := uint32(len(m.entries))
	for {
		nextCap *= 2
		if float32(nextCap)*m.loadFactor > float32(m.size+1) {
			break
		}
	}
	next := make([]E, nextCap)
	for _, e := range m.entries {
		if !m.Occupied(e) {
			continue
		}
		key := m.GetKey(e)
		i := m.findSlot(next, nextCap, key)
		next[i] = e
	}
	m.entries = next
}

// Clear empties the map. newCapacity of -1 preserves the current
// capacity (just zeroing every entry); any other value reallocates to
// that capacity, which must be a power of two. This is the mechanism
// computations use to bound live memory between partitions: every row
// for a given key lands in exactly one partition, so clearing the
// per-partition map between partitions loses no information.
func (m *Map[K, E]) Clear(newCapacity int64) {
	if newCapacity == -1 {
		clear(m.entries)
		m.size = 0
		return
	}
	cap32 := uint32(newCapacity)
	if cap32 == 0 || cap32&(cap32-1) != 0 {
		panic("hashmap: newCapacity must be a power of two")
	}
	m.entries = make([]E, cap32)
	m.size = 0
}
