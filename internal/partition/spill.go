package partition

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

// spiller backs the optional -spill path: once a partitioner's live
// in-memory footprint crosses a configured budget, finished blocks
// (every block except each bucket's current tail) are LZ4-compressed
// to a per-bucket temp file and dropped from memory. Grounded on
// internal/indexer/sorter.go's flushChunk, which frames sorted chunks
// the same way before a k-way merge.
type spiller[T any] struct {
	dir     string
	writers []*lz4writer
}

type lz4writer struct {
	file *os.File
	buf  *bufio.Writer
	lz   *lz4.Writer
	path string
}

func newSpiller[T any](numBuckets int, dir string) (*spiller[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("partition: creating spill dir: %w", err)
	}
	return &spiller[T]{dir: dir, writers: make([]*lz4writer, numBuckets)}, nil
}

func (s *spiller[T]) writerFor(bucket int) (*lz4writer, error) {
	if s.writers[bucket] != nil {
		return s.writers[bucket], nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("bucket-%04d.lz4", bucket))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("partition: opening spill file: %w", err)
	}
	bw := bufio.NewWriterSize(f, 256*1024)
	w := &lz4writer{file: f, buf: bw, lz: lz4.NewWriter(bw), path: path}
	s.writers[bucket] = w
	return w, nil
}

// write appends one chunk of elements (a finished block's contents) to
// the bucket's spill file, length-prefixed so replay knows how many
// elements to expect.
func (s *spiller[T]) write(bucket int, elems []T) error {
	w, err := s.writerFor(bucket)
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(elems)))
	if _, err := w.lz.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("partition: spill write: %w", err)
	}
	if _, err := w.lz.Write(bytesOf(elems)); err != nil {
		return fmt.Errorf("partition: spill write: %w", err)
	}
	return nil
}

func (s *spiller[T]) closeWriters() error {
	for _, w := range s.writers {
		if w == nil {
			continue
		}
		if err := w.lz.Close(); err != nil {
			return err
		}
		if err := w.buf.Flush(); err != nil {
			return err
		}
		if err := w.file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// replay reads every spilled chunk for bucket back, in the order it was
// written, invoking fn once per element before the in-memory tail block
// (if any) is iterated by the caller.
func (s *spiller[T]) replay(bucket int, fn func(*T)) {
	w := s.writers[bucket]
	if w == nil {
		return
	}
	if err := w.lz.Close(); err == nil {
		_ = w.buf.Flush()
	}
	f, err := os.Open(w.path)
	if err != nil {
		return
	}
	defer f.Close()

	r := lz4.NewReader(bufio.NewReaderSize(f, 256*1024))
	var zero T
	elemSize := sizeOf(zero)
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return
		}
		n := int(binary.BigEndian.Uint32(lenBuf[:]))
		buf := make([]byte, n*elemSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return
		}
		elems := unsafeElemsOf[T](buf)
		for i := range elems {
			fn(&elems[i])
		}
	}
}

func (s *spiller[T]) cleanup() {
	for _, w := range s.writers {
		if w != nil {
			os.Remove(w.path)
		}
	}
	os.Remove(s.dir)
}

// spillFinishedBlocks writes every bucket's completed blocks (every
// block except the current tail, which is still being appended to) to
// its spill file and unlinks them, freeing their memory. Called from
// Add once the live footprint crosses the configured budget. Spilling
// is a best-effort memory bound, not a correctness requirement, so a
// write failure here just leaves the block in memory rather than
// aborting the run.
func (p *Partitioner[T]) spillFinishedBlocks() {
	for i := range p.buckets {
		b := &p.buckets[i]
		for b.head != nil && b.head != b.tail {
			blk := b.head
			if err := p.spill.write(i, blk.data[:blk.cursor]); err != nil {
				return
			}
			p.liveElements -= blk.cursor
			b.head = blk.next
		}
	}
}

// EnableSpill turns on disk spilling once the partitioner's live
// in-memory element count exceeds budgetBytes worth of T. Off by
// default; the default path keeps everything in memory.
func (p *Partitioner[T]) EnableSpill(budgetBytes int, tmpDir string) error {
	sp, err := newSpiller[T](int(p.numBuckets), tmpDir)
	if err != nil {
		return err
	}
	p.spill = sp
	p.spillBudget = budgetBytes
	return nil
}

// Close releases any spill files created by EnableSpill. A no-op if
// spilling was never enabled.
func (p *Partitioner[T]) Close() error {
	if p.spill == nil {
		return nil
	}
	if err := p.spill.closeWriters(); err != nil {
		return err
	}
	p.spill.cleanup()
	return nil
}
