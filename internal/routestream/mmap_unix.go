//go:build unix

package routestream

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenMmap is the -mmap ingestion mode: it maps the whole file once
// via golang.org/x/sys/unix, following MmapFile/MunmapFile's approach
// but stripped of goroutine-parallel chunking since ingestion here is
// single-threaded. The mapped bytes are copied into an owned buffer
// with the same 64-byte zero tail the buffered reader uses, so the
// rest of Stream (Read, skipHeader) is unchanged: after this one
// "refill" the stream reports eof immediately and never reads from
// disk again.
func OpenMmap(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("routestream: opening %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("routestream: stat %s: %w", path, err)
	}
	size := int(fi.Size())

	s := &Stream{buf: make([]byte, size+1+tailZero)}
	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
		if err != nil {
			return nil, fmt.Errorf("routestream: mmap %s: %w", path, err)
		}
		copy(s.buf, data)
		if err := unix.Munmap(data); err != nil {
			return nil, fmt.Errorf("routestream: munmap %s: %w", path, err)
		}
	}

	end := size
	if end > 0 && s.buf[end-1] != '\n' {
		s.buf[end] = '\n'
		end++
	}
	s.end = end
	s.eof = true

	s.skipHeader()
	return s, nil
}
