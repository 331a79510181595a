package piecetree

import "github.com/kisielk-labs/scribe/stringpool"

type nodeKind int

const (
	leafKind nodeKind = iota
	internalKind
)

// Node is a piece tree node. It is immutable once constructed: every
// edit produces new nodes along the edited path and reuses every other
// subtree by pointer, which is what makes pointer equality a valid
// structural-sharing test in the diff (mirrors Arc::ptr_eq in the
// reference implementation).
type Node struct {
	kind nodeKind

	// leaf fields
	location    stringpool.BufferLocation
	offset      int
	bytesLen    int
	lineFeedCnt int
	lfKnown     bool

	// internal fields
	left, right *Node
	leftBytes   int
	lfLeft      int
	lfLeftKnown bool
	height      int
}

func newLeaf(loc stringpool.BufferLocation, offset, length, lfCnt int, lfKnown bool) *Node {
	return &Node{
		kind:        leafKind,
		location:    loc,
		offset:      offset,
		bytesLen:    length,
		lineFeedCnt: lfCnt,
		lfKnown:     lfKnown,
	}
}

func newInternal(left, right *Node) *Node {
	lb := left.Bytes()
	lfLeft, lfLeftKnown := left.LineFeeds()
	return &Node{
		kind:        internalKind,
		left:        left,
		right:       right,
		leftBytes:   lb,
		lfLeft:      lfLeft,
		lfLeftKnown: lfLeftKnown,
		height:      1 + maxInt(heightOf(left), heightOf(right)),
	}
}

func (n *Node) IsLeaf() bool {
	return n != nil && n.kind == leafKind
}

// Bytes returns the total byte length of the subtree rooted at n.
func (n *Node) Bytes() int {
	if n == nil {
		return 0
	}
	if n.kind == leafKind {
		return n.bytesLen
	}
	return n.leftBytes + n.right.Bytes()
}

// LineFeeds returns the total line-feed count of the subtree rooted at
// n, or ok == false if any leaf under it has an unscanned count.
func (n *Node) LineFeeds() (count int, ok bool) {
	if n == nil {
		return 0, true
	}
	if n.kind == leafKind {
		return n.lineFeedCnt, n.lfKnown
	}
	if !n.lfLeftKnown {
		return 0, false
	}
	rightLF, ok := n.right.LineFeeds()
	if !ok {
		return 0, false
	}
	return n.lfLeft + rightLF, true
}

func heightOf(n *Node) int {
	if n == nil {
		return -1
	}
	return n.height
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// rotateLeft and rotateRight are the same single-rotation shape as the
// string-pool-free LLRB tree's rotations, generalized from swapping a
// scalar key to re-joining two subtrees.
func rotateLeft(n *Node) *Node {
	r := n.right
	newLeft := newInternal(n.left, r.left)
	return newInternal(newLeft, r.right)
}

func rotateRight(n *Node) *Node {
	l := n.left
	newRight := newInternal(l.right, n.right)
	return newInternal(l.left, newRight)
}

// rebalance fixes up a node whose children differ in height by at most
// 2 (the join algorithm below never produces a larger imbalance).
func rebalance(n *Node) *Node {
	if n.IsLeaf() {
		return n
	}
	bf := heightOf(n.left) - heightOf(n.right)
	if bf > 1 {
		if heightOf(n.left.left) < heightOf(n.left.right) {
			n = newInternal(rotateLeft(n.left), n.right)
		}
		return rotateRight(n)
	}
	if bf < -1 {
		if heightOf(n.right.right) < heightOf(n.right.left) {
			n = newInternal(n.left, rotateRight(n.right))
		}
		return rotateLeft(n)
	}
	return n
}

// join concatenates two subtrees in document order, descending into the
// taller side and rebalancing on the way back up. Either side may be
// nil. Untouched grandchildren are never reconstructed, so callers that
// only touch one edge of a tree keep full structural sharing elsewhere.
func join(left, right *Node) *Node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	lh, rh := heightOf(left), heightOf(right)
	switch {
	case lh > rh+1:
		joined := newInternal(left.left, join(left.right, right))
		return rebalance(joined)
	case rh > lh+1:
		joined := newInternal(join(left, right.left), right.right)
		return rebalance(joined)
	default:
		return newInternal(left, right)
	}
}

// buildBalanced assembles a balanced subtree from leaves already in
// document order.
func buildBalanced(leaves []*Node) *Node {
	if len(leaves) == 0 {
		return nil
	}
	if len(leaves) == 1 {
		return leaves[0]
	}
	mid := len(leaves) / 2
	return newInternal(buildBalanced(leaves[:mid]), buildBalanced(leaves[mid:]))
}

// splitAt divides the subtree rooted at n into everything before byte
// pos and everything from pos onward, sharing every subtree that lies
// wholly on one side.
func splitAt(pool *stringpool.Pool, n *Node, pos int) (*Node, *Node) {
	if n == nil {
		return nil, nil
	}
	if n.IsLeaf() {
		if pos <= 0 {
			return nil, n
		}
		if pos >= n.bytesLen {
			return n, nil
		}
		return leafSlice(pool, n, 0, pos), leafSlice(pool, n, pos, n.bytesLen-pos)
	}
	if pos <= n.leftBytes {
		l, r := splitAt(pool, n.left, pos)
		return l, join(r, n.right)
	}
	l, r := splitAt(pool, n.right, pos-n.leftBytes)
	return join(n.left, l), r
}

func leafSlice(pool *stringpool.Pool, n *Node, localOffset, length int) *Node {
	lfCnt, lfKnown := pool.LineFeedCount(n.location, n.offset+localOffset, length)
	return newLeaf(n.location, n.offset+localOffset, length, lfCnt, lfKnown)
}

func collectLeaves(n *Node, out *[]*Node) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		*out = append(*out, n)
		return
	}
	collectLeaves(n.left, out)
	collectLeaves(n.right, out)
}
