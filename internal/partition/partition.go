// Package partition implements an append-only per-bucket, arena-backed
// list of fixed-size records, bucketed by key & (numBuckets-1). It
// exists to improve cache locality for phase-2 per-key aggregation on
// very large keyspaces: rows are first shuffled into N buckets, then
// each bucket is aggregated (and its scratch map cleared) independently.
package partition

// block is one fixed-capacity run of elements within a bucket.
type block[T any] struct {
	next   *block[T]
	data   []T
	cursor int
}

// bucket owns a singly-linked list of blocks; head is the oldest.
type bucket[T any] struct {
	head, tail *block[T]
}

// Partitioner shards elements of type T into numBuckets append-only
// lists selected by key & (numBuckets-1).
type Partitioner[T any] struct {
	buckets      []bucket[T]
	numBuckets   uint32
	blockCap     int // elements per block
	spill        *spiller[T]
	spillBudget  int
	liveElements int
}

// New creates a Partitioner with numBuckets buckets (must be a power of
// two), each block holding enough T elements to fill approximately
// blockBytes bytes.
func New[T any](numBuckets uint32, blockBytes int) *Partitioner[T] {
	if numBuckets == 0 || numBuckets&(numBuckets-1) != 0 {
		panic("partition: numBuckets must be a power of two")
	}
	var zero T
	elemSize := sizeOf(zero)
	blockCap := blockBytes / elemSize
	if blockCap < 1 {
		blockCap = 1
	}
	return &Partitioner[T]{
		buckets:    make([]bucket[T], numBuckets),
		numBuckets: numBuckets,
		blockCap:   blockCap,
	}
}

// Add copies element into the bucket selected by key.
func (p *Partitioner[T]) Add(key uint32, element T) {
	b := &p.buckets[key&(p.numBuckets-1)]
	if b.tail == nil || b.tail.cursor >= len(b.tail.data) {
		nb := &block[T]{data: make([]T, p.blockCap)}
		if b.head == nil {
			b.head = nb
		} else {
			b.tail.next = nb
		}
		b.tail = nb
	}
	b.tail.data[b.tail.cursor] = element
	b.tail.cursor++
	p.liveElements++

	if p.spill != nil && p.liveElements*sizeOf(element) > p.spillBudget {
		p.spillFinishedBlocks()
	}
}

// EachBucket iterates every element of bucket i, in insertion order,
// calling fn with a pointer the caller may mutate in place.
func (p *Partitioner[T]) EachBucket(i int, fn func(*T)) {
	if p.spill != nil {
		p.spill.replay(i, fn)
	}
	blk := p.buckets[i].head
	for blk != nil {
		for j := 0; j < blk.cursor; j++ {
			fn(&blk.data[j])
		}
		blk = blk.next
	}
}

// NumBuckets reports the bucket count.
func (p *Partitioner[T]) NumBuckets() int { return int(p.numBuckets) }

// All iterates every bucket in order, calling fn with a pointer for
// each element. Equivalent to calling EachBucket for every bucket index
// in turn.
func (p *Partitioner[T]) All(fn func(*T)) {
	for i := range p.buckets {
		p.EachBucket(i, fn)
	}
}
