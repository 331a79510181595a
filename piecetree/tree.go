// Package piecetree implements the persistent, path-copied piece tree
// that backs a buffer's text, and the structural diff between two of its
// roots.
package piecetree

import (
	"bytes"
	"errors"

	"github.com/kisielk-labs/scribe/scerr"
	"github.com/kisielk-labs/scribe/stringpool"
)

// Tree is an immutable snapshot of a buffer's contents. Every mutating
// method returns a new Tree; the receiver is left untouched, and
// untouched subtrees are shared between the two.
type Tree struct {
	pool *stringpool.Pool
	root *Node
}

// LeafSpec describes one chunk to seed a new tree with.
type LeafSpec struct {
	Location    stringpool.BufferLocation
	Offset      int
	Bytes       int
	LineFeedCnt int
	LFKnown     bool
}

// Empty returns a zero-length tree backed by pool.
func Empty(pool *stringpool.Pool) *Tree {
	return &Tree{pool: pool}
}

// NewFromChunks builds a balanced tree of one leaf per chunk, in the
// order given. This is the "initial tree... then balanced" flow used
// when a file is opened.
func NewFromChunks(pool *stringpool.Pool, chunks []LeafSpec) *Tree {
	leaves := make([]*Node, 0, len(chunks))
	for _, c := range chunks {
		if c.Bytes == 0 {
			continue
		}
		leaves = append(leaves, newLeaf(c.Location, c.Offset, c.Bytes, c.LineFeedCnt, c.LFKnown))
	}
	return &Tree{pool: pool, root: buildBalanced(leaves)}
}

// Root exposes the node backing this tree. Two trees sharing the same
// root pointer are structurally identical; Root is how callers compare
// identity when deciding whether to re-render.
func (t *Tree) Root() *Node {
	return t.root
}

// Pool returns the string pool this tree's leaves reference.
func (t *Tree) Pool() *stringpool.Pool {
	return t.pool
}

// Len returns the document length in bytes.
func (t *Tree) Len() int {
	return t.root.Bytes()
}

// LineCount returns the number of lines, or ok == false if any leaf has
// an unscanned line-feed count.
func (t *Tree) LineCount() (count int, ok bool) {
	lf, ok := t.root.LineFeeds()
	if !ok {
		return 0, false
	}
	return lf + 1, true
}

// LineStartOffset returns the byte offset of the first character of the
// given 0-indexed line.
func (t *Tree) LineStartOffset(line int) (int, error) {
	if line < 0 {
		return 0, scerr.OutOfRange("line %d is negative", line)
	}
	if line == 0 {
		return 0, nil
	}
	n := t.root
	remaining := line
	offset := 0
	for n != nil {
		if n.IsLeaf() {
			if !n.lfKnown {
				return 0, scerr.UnknownLineCount("leaf at offset %d has no line-feed index", offset)
			}
			data, err := t.pool.Slice(n.location, n.offset, n.bytesLen)
			if err != nil {
				return 0, err
			}
			idx := nthNewlineIndex(data, remaining)
			if idx == -1 {
				return 0, scerr.OutOfRange("line %d out of range", line)
			}
			return offset + idx + 1, nil
		}
		if !n.lfLeftKnown {
			return 0, scerr.UnknownLineCount("subtree at offset %d has no line-feed index", offset)
		}
		if remaining <= n.lfLeft {
			n = n.left
			continue
		}
		remaining -= n.lfLeft
		offset += n.leftBytes
		n = n.right
	}
	return 0, scerr.OutOfRange("line %d out of range", line)
}

func nthNewlineIndex(data []byte, n int) int {
	idx := -1
	for i := 0; i < n; i++ {
		rel := bytes.IndexByte(data[idx+1:], '\n')
		if rel == -1 {
			return -1
		}
		idx = idx + 1 + rel
	}
	return idx
}

// OffsetToPosition maps a byte offset to a 0-indexed (line, column).
func (t *Tree) OffsetToPosition(offset int) (line, col int, err error) {
	if offset < 0 || offset > t.Len() {
		return 0, 0, scerr.OutOfRange("offset %d out of range for len %d", offset, t.Len())
	}
	line, err = t.lineFeedsBefore(offset)
	if err != nil {
		return 0, 0, err
	}
	lineStart, err := t.LineStartOffset(line)
	if err != nil {
		return 0, 0, err
	}
	return line, offset - lineStart, nil
}

func (t *Tree) lineFeedsBefore(offset int) (int, error) {
	n := t.root
	nodeStart := 0
	count := 0
	for n != nil {
		if n.IsLeaf() {
			if !n.lfKnown {
				return 0, scerr.UnknownLineCount("leaf at offset %d has no line-feed index", nodeStart)
			}
			local := offset - nodeStart
			if local > n.bytesLen {
				local = n.bytesLen
			}
			data, err := t.pool.Slice(n.location, n.offset, local)
			if err != nil {
				return 0, err
			}
			return count + bytes.Count(data, []byte{'\n'}), nil
		}
		if !n.lfLeftKnown {
			return 0, scerr.UnknownLineCount("subtree at offset %d has no line-feed index", nodeStart)
		}
		if offset <= nodeStart+n.leftBytes {
			n = n.left
			continue
		}
		count += n.lfLeft
		nodeStart += n.leftBytes
		n = n.right
	}
	return count, nil
}

// LineColToPosition maps a 0-indexed (line, column) to a byte offset.
func (t *Tree) LineColToPosition(line, col int) (int, error) {
	start, err := t.LineStartOffset(line)
	if err != nil {
		return 0, err
	}
	return start + col, nil
}

// GetLine returns the bytes of the given 0-indexed line, excluding its
// trailing newline.
func (t *Tree) GetLine(i int) ([]byte, error) {
	start, err := t.LineStartOffset(i)
	if err != nil {
		return nil, err
	}
	end, err := t.LineStartOffset(i + 1)
	if err != nil {
		if errors.Is(err, scerr.ErrOutOfRange) {
			end = t.Len()
		} else {
			return nil, err
		}
	} else if end > start {
		end--
	}
	return t.GetTextRange(start, end)
}

// GetTextRange returns the bytes of [start, end).
func (t *Tree) GetTextRange(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > t.Len() {
		return nil, scerr.OutOfRange("range [%d,%d) invalid for len %d", start, end, t.Len())
	}
	var buf bytes.Buffer
	if err := collectRange(t.pool, t.root, 0, start, end, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func collectRange(pool *stringpool.Pool, n *Node, nodeStart, start, end int, buf *bytes.Buffer) error {
	if n == nil {
		return nil
	}
	nodeEnd := nodeStart + n.Bytes()
	if end <= nodeStart || start >= nodeEnd {
		return nil
	}
	if n.IsLeaf() {
		lo := maxInt(start, nodeStart) - nodeStart
		hi := minInt(end, nodeEnd) - nodeStart
		data, err := pool.Slice(n.location, n.offset+lo, hi-lo)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
	if err := collectRange(pool, n.left, nodeStart, start, end, buf); err != nil {
		return err
	}
	return collectRange(pool, n.right, nodeStart+n.leftBytes, start, end, buf)
}

// Insert returns a new tree with a piece referencing [offset, offset+length)
// of loc spliced in at position pos.
func (t *Tree) Insert(pos int, loc stringpool.BufferLocation, offset, length, lfCnt int, lfKnown bool) (*Tree, error) {
	if pos < 0 || pos > t.Len() {
		return nil, scerr.OutOfRange("insert position %d out of range for len %d", pos, t.Len())
	}
	left, right := splitAt(t.pool, t.root, pos)
	var piece *Node
	if length > 0 {
		piece = newLeaf(loc, offset, length, lfCnt, lfKnown)
	}
	return &Tree{pool: t.pool, root: join(join(left, piece), right)}, nil
}

// Delete returns a new tree with [start, end) removed.
func (t *Tree) Delete(start, end int) (*Tree, error) {
	if start < 0 || end < start || end > t.Len() {
		return nil, scerr.OutOfRange("delete range [%d,%d) out of range for len %d", start, end, t.Len())
	}
	left, rest := splitAt(t.pool, t.root, start)
	_, right := splitAt(t.pool, rest, end-start)
	return &Tree{pool: t.pool, root: join(left, right)}, nil
}

// SplitLeavesToChunkSize rebuilds the tree so no leaf exceeds n bytes.
// Content is unchanged.
func (t *Tree) SplitLeavesToChunkSize(n int) *Tree {
	var leaves []*Node
	collectSplitLeaves(t.pool, t.root, n, &leaves)
	return &Tree{pool: t.pool, root: buildBalanced(leaves)}
}

func collectSplitLeaves(pool *stringpool.Pool, n *Node, maxBytes int, out *[]*Node) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		if n.bytesLen <= maxBytes {
			*out = append(*out, n)
			return
		}
		for off := 0; off < n.bytesLen; off += maxBytes {
			length := minInt(maxBytes, n.bytesLen-off)
			*out = append(*out, leafSlice(pool, n, off, length))
		}
		return
	}
	collectSplitLeaves(pool, n.left, maxBytes, out)
	collectSplitLeaves(pool, n.right, maxBytes, out)
}

// Rebalance rebuilds the tree into a balanced shape. It destroys
// structural sharing with every prior root.
func (t *Tree) Rebalance() *Tree {
	var leaves []*Node
	collectLeaves(t.root, &leaves)
	return &Tree{pool: t.pool, root: buildBalanced(leaves)}
}
