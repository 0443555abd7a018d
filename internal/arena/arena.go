// Package arena implements a bump allocator over a linked list of
// fixed-size blocks, freed all at once.
package arena

// Block is one contiguous chunk of arena-owned memory.
type Block struct {
	prev *Block
	data []byte
	pos  int
}

// Arena is a bump allocator. The zero value is not usable; call New.
type Arena struct {
	blockSize int
	alignment int
	tail      *Block
	nblocks   int
}

// New creates an Arena with the given block size and alignment (must be
// a power of two). Alignment defaults to 8 when 0 is passed.
func New(blockSize, alignment int) *Arena {
	if blockSize < 8 {
		panic("arena: blockSize must be >= 8")
	}
	if alignment == 0 {
		alignment = 8
	}
	if alignment&(alignment-1) != 0 {
		panic("arena: alignment must be a power of two")
	}
	a := &Arena{blockSize: blockSize, alignment: alignment}
	a.tail = a.newBlock(blockSize)
	return a
}

func (a *Arena) newBlock(size int) *Block {
	b := &Block{prev: a.tail, data: make([]byte, size)}
	a.nblocks++
	return b
}

func (a *Arena) alignUp(pos int) int {
	mask := a.alignment - 1
	return (pos + mask) &^ mask
}

// Alloc returns n zeroed bytes that remain valid until Free is called.
// n must not exceed the arena's configured block size.
func (a *Arena) Alloc(n int) []byte {
	if n > a.blockSize {
		panic("arena: allocation exceeds block size")
	}
	pos := a.alignUp(a.tail.pos)
	if pos+n > len(a.tail.data) {
		a.tail = a.newBlock(a.blockSize)
		pos = 0
	}
	b := a.tail.data[pos : pos+n : pos+n]
	a.tail.pos = pos + n
	return b
}

// NumBlocks reports how many blocks this arena currently owns, for tests
// and memory-budget diagnostics.
func (a *Arena) NumBlocks() int { return a.nblocks }

// Free releases every block. The arena must not be used afterward except
// via a fresh call to New.
func (a *Arena) Free() {
	b := a.tail
	for b != nil {
		prev := b.prev
		b.data = nil
		b = prev
	}
	a.tail = nil
}

// Alloc[T] allocates space for one T and returns a pointer into arena
// memory, zero-valued.
func Alloc[T any](a *Arena) *T {
	var zero T
	size := sizeOf(zero)
	buf := a.Alloc(size)
	return (*T)(ptrOf(buf))
}
