// Package routestream implements the buffered sequential reader that
// turns a route-steps CSV into one RouteStep per call, with only the
// requested fields materialised. The buffered-refill-to-line-boundary
// discipline and the header-skip idiom follow route.c's rsOpen; the
// manual fixed-buffer management style follows runFullScan's approach
// to buffered scanning, sized to a fixed 128 KiB buffer.
package routestream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/csvquery/routestat/internal/fieldcodec"
	"github.com/csvquery/routestat/internal/simd"
)

// Fields selects which columns of a row Read should materialise.
// Unread fields still have their delimiters located and validated, but
// cost nothing beyond that.
type Fields uint8

const (
	RouteID Fields = 1 << iota
	StepID
	TownA
	TownB
	Distance
	DriverName

	AllFields = RouteID | StepID | TownA | TownB | Distance | DriverName
)

// RouteStep is one parsed CSV row. String fields are borrowed from the
// stream's internal buffer and are only valid until the next Read call;
// callers that need to retain one must copy it.
type RouteStep struct {
	RouteID    uint32
	StepID     uint32
	TownA      []byte
	TownB      []byte
	Distance   float32
	DriverName []byte
}

const (
	bufferSize = 128 * 1024
	tailZero   = 64
	bufCap     = bufferSize + 1 + tailZero // +1 byte of slack for an EOF-appended '\n'
)

// ErrMalformedRow is returned via Err when a row violates the five-`;`-
// then-`\n` contract. This is a fatal schema error: the run aborts
// rather than continuing past it.
var ErrMalformedRow = errors.New("routestream: malformed row (delimiter contract violated)")

// Stream reads RouteStep rows sequentially from one CSV file.
type Stream struct {
	f   *os.File
	buf []byte
	pos int
	end int
	eof bool
	err error
}

// Open opens path, skips its header line, and returns a Stream ready
// for repeated Read calls. Failure here is always an IoError.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("routestream: opening %s: %w", path, err)
	}
	s := &Stream{f: f, buf: make([]byte, bufCap)}
	s.refill()
	if s.err != nil {
		f.Close()
		return nil, s.err
	}
	s.skipHeader()
	return s, nil
}

func (s *Stream) skipHeader() {
	j := 0
	for j < s.end && s.buf[j] != '\n' {
		j++
	}
	if j >= s.end {
		s.pos = s.end
		return
	}
	s.pos = j + 1
}

// Err reports the error, if any, that ended iteration early. A nil Err
// after Read returns false means the stream was exhausted normally.
func (s *Stream) Err() error { return s.err }

// Close releases the file. Idempotent.
func (s *Stream) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *Stream) refill() bool {
	if s.f == nil {
		return false
	}
	n, err := io.ReadFull(s.f, s.buf[:bufferSize])
	end := n
	reachedEOF := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
	if err != nil && !reachedEOF {
		s.err = fmt.Errorf("routestream: reading: %w", err)
		return false
	}

	if reachedEOF {
		if end > 0 && s.buf[end-1] != '\n' {
			s.buf[end] = '\n'
			end++
		}
		s.eof = true
	} else if end > 0 && s.buf[end-1] != '\n' {
		j := end - 1
		for j >= 0 && s.buf[j] != '\n' {
			j--
		}
		if j < 0 {
			s.err = fmt.Errorf("routestream: row exceeds %d byte buffer", bufferSize)
			return false
		}
		rollback := int64(end - (j + 1))
		if _, serr := s.f.Seek(-rollback, io.SeekCurrent); serr != nil {
			s.err = fmt.Errorf("routestream: seeking to line boundary: %w", serr)
			return false
		}
		end = j + 1
	}

	for i := end; i < end+tailZero && i < len(s.buf); i++ {
		s.buf[i] = 0
	}
	s.pos = 0
	s.end = end
	return end > 0
}

// Read yields the next row's requested fields into step, returning true
// while another row exists. On false, the stream is exhausted (check
// Err to distinguish clean EOF from a malformed row or I/O failure).
func (s *Stream) Read(step *RouteStep, fields Fields) bool {
	if s.err != nil {
		return false
	}
	if s.pos >= s.end {
		if s.eof || !s.refill() {
			return false
		}
	}
	if s.pos >= s.end {
		return false
	}

	window := s.buf[s.pos : s.end+tailZero]
	delims, ok := simd.FindRowDelimiters(window)
	if !ok {
		s.err = ErrMalformedRow
		return false
	}
	abs := func(i int) int { return s.pos + delims[i] }

	if fields&RouteID != 0 {
		step.RouteID = fieldcodec.ParseUint(s.buf[s.pos:abs(0)])
	}
	if fields&StepID != 0 {
		step.StepID = fieldcodec.ParseUint(s.buf[abs(0)+1 : abs(1)])
	}
	if fields&TownA != 0 {
		step.TownA = fieldcodec.BorrowString(s.buf, abs(1)+1, abs(2))
	}
	if fields&TownB != 0 {
		step.TownB = fieldcodec.BorrowString(s.buf, abs(2)+1, abs(3))
	}
	if fields&Distance != 0 {
		step.Distance = fieldcodec.ParseFloat(s.buf[abs(3)+1 : abs(4)])
	}
	if fields&DriverName != 0 {
		step.DriverName = fieldcodec.BorrowString(s.buf, abs(4)+1, abs(5))
	}

	s.pos = abs(5) + 1
	return true
}
