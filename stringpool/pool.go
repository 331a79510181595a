// Package stringpool holds the immutable byte chunks a piece tree's leaves
// point into. Chunks are never mutated or freed once published; a piece
// tree only ever borrows slices of them.
package stringpool

import (
	"bytes"
	"sort"

	"github.com/kisielk-labs/scribe/scerr"
)

// Kind tags which half of the pool a BufferLocation names.
type Kind int

const (
	// Stored identifies a chunk that came from a file on disk.
	Stored Kind = iota
	// Added identifies a chunk in the append-only edit buffer.
	Added
)

func (k Kind) String() string {
	if k == Stored {
		return "Stored"
	}
	return "Added"
}

// BufferLocation names an immutable chunk in a Pool.
type BufferLocation struct {
	Kind Kind
	N    int
}

// chunk is one immutable byte vector plus bookkeeping. lineFeeds is nil
// when the chunk's line-feed positions were never scanned (lazily loaded
// huge files carry their content but skip the scan).
type chunk struct {
	data      []byte
	lineFeeds []int // byte offsets of '\n' within data, sorted
	scanned   bool
}

func newChunk(data []byte, scan bool) chunk {
	c := chunk{data: data, scanned: scan}
	if scan {
		c.lineFeeds = scanLineFeeds(data)
	}
	return c
}

func scanLineFeeds(data []byte) []int {
	var offs []int
	start := 0
	for {
		i := bytes.IndexByte(data[start:], '\n')
		if i == -1 {
			break
		}
		offs = append(offs, start+i)
		start += i + 1
	}
	return offs
}

// Pool owns every chunk referenced by any piece tree built against it.
// Stored and Added chunks live in separate id spaces so BufferLocation's
// two variants never collide.
type Pool struct {
	stored []chunk
	added  []chunk
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{}
}

// Push appends a chunk and returns the location identifying it. When scan
// is false the chunk's line-feed count is left unknown, the documented
// accommodation for lazily-loaded huge files.
func (p *Pool) Push(data []byte, isOriginal bool, scan bool) BufferLocation {
	c := newChunk(data, scan)
	if isOriginal {
		p.stored = append(p.stored, c)
		return BufferLocation{Kind: Stored, N: len(p.stored) - 1}
	}
	p.added = append(p.added, c)
	return BufferLocation{Kind: Added, N: len(p.added) - 1}
}

func (p *Pool) chunk(loc BufferLocation) (*chunk, error) {
	var set []chunk
	if loc.Kind == Stored {
		set = p.stored
	} else {
		set = p.added
	}
	if loc.N < 0 || loc.N >= len(set) {
		return nil, scerr.OutOfRange("buffer location %s(%d) not in pool", loc.Kind, loc.N)
	}
	return &set[loc.N], nil
}

// Slice borrows bytes [offset, offset+length) of the chunk named by loc.
func (p *Pool) Slice(loc BufferLocation, offset, length int) ([]byte, error) {
	c, err := p.chunk(loc)
	if err != nil {
		return nil, err
	}
	if offset < 0 || length < 0 || offset+length > len(c.data) {
		return nil, scerr.OutOfRange("slice [%d,%d) out of bounds for %s(%d) len=%d",
			offset, offset+length, loc.Kind, loc.N, len(c.data))
	}
	return c.data[offset : offset+length], nil
}

// Len returns the full length of the chunk named by loc.
func (p *Pool) Len(loc BufferLocation) (int, error) {
	c, err := p.chunk(loc)
	if err != nil {
		return 0, err
	}
	return len(c.data), nil
}

// LineFeedCount returns the number of '\n' bytes within [offset,
// offset+length) of the chunk, or ok == false when the chunk was never
// scanned.
func (p *Pool) LineFeedCount(loc BufferLocation, offset, length int) (count int, ok bool) {
	c, err := p.chunk(loc)
	if err != nil || !c.scanned {
		return 0, false
	}
	end := offset + length
	lo := sort.SearchInts(c.lineFeeds, offset)
	hi := sort.SearchInts(c.lineFeeds, end)
	return hi - lo, true
}
