package editorstate

import "github.com/kisielk-labs/scribe/viewport"

// Rect is the screen-space rectangle a SplitTree node occupies, the
// core's own stand-in for tulib.Rect so editorstate stays free of a
// terminal-library dependency.
type Rect struct {
	X, Y, Width, Height int
}

// SplitView is one leaf of a SplitTree: a buffer shown through its own
// viewport. It has no cursor set of its own; every split showing a
// buffer uses that buffer's State.Cursors.
type SplitView struct {
	Buffer   BufferID
	Viewport viewport.Viewport
}

// SplitTree is the editor's binary split layout, ported directly from
// the teacher's viewTree: exactly one of {left, right}, {top, bottom},
// or leaf is populated at a time.
type SplitTree struct {
	parent *SplitTree
	left   *SplitTree
	right  *SplitTree
	top    *SplitTree
	bottom *SplitTree
	leaf   *SplitView
	split  float32
	Rect   Rect
}

// NewSplitLeaf wraps v as a single-pane SplitTree.
func NewSplitLeaf(parent *SplitTree, v *SplitView) *SplitTree {
	return &SplitTree{parent: parent, leaf: v}
}

func (t *SplitTree) Leaf() *SplitView {
	return t.leaf
}

// Left, Right, Top, Bottom, and Parent expose a node's neighbours for
// callers (the terminal front-end's compositor) that need to walk the
// tree shape directly rather than through Traverse.
func (t *SplitTree) Left() *SplitTree   { return t.left }
func (t *SplitTree) Right() *SplitTree  { return t.right }
func (t *SplitTree) Top() *SplitTree    { return t.top }
func (t *SplitTree) Bottom() *SplitTree { return t.bottom }
func (t *SplitTree) Parent() *SplitTree { return t.parent }

// SplitVertically turns a leaf node into a left/right split, with the
// existing pane on the left and newRight taking the other half.
func (t *SplitTree) SplitVertically(newRight *SplitView) {
	left := t.leaf
	*t = SplitTree{
		parent: t.parent,
		left:   NewSplitLeaf(t, &SplitView{Buffer: left.Buffer, Viewport: left.Viewport}),
		right:  NewSplitLeaf(t, newRight),
		split:  0.5,
	}
	t.left.parent = t
	t.right.parent = t
}

// SplitHorizontally turns a leaf node into a top/bottom split.
func (t *SplitTree) SplitHorizontally(newBottom *SplitView) {
	top := t.leaf
	*t = SplitTree{
		parent: t.parent,
		top:    NewSplitLeaf(t, &SplitView{Buffer: top.Buffer, Viewport: top.Viewport}),
		bottom: NewSplitLeaf(t, newBottom),
		split:  0.5,
	}
	t.top.parent = t
	t.bottom.parent = t
}

// Resize propagates a rectangle down the tree, dividing it at each
// split's ratio. A left/right split reserves one column for the splitter;
// a top/bottom split divides the full height and reserves no row.
func (t *SplitTree) Resize(r Rect) {
	t.Rect = r
	switch {
	case t.leaf != nil:
		t.leaf.Viewport.Width = r.Width
		t.leaf.Viewport.Height = r.Height
	case t.left != nil:
		w := r.Width
		if w > 0 {
			w--
		}
		lw := int(float32(w) * t.split)
		rw := w - lw
		t.left.Resize(Rect{r.X, r.Y, lw, r.Height})
		t.right.Resize(Rect{r.X + lw + 1, r.Y, rw, r.Height})
	case t.top != nil:
		th := int(float32(r.Height) * t.split)
		bh := r.Height - th
		t.top.Resize(Rect{r.X, r.Y, r.Width, th})
		t.bottom.Resize(Rect{r.X, r.Y + th, r.Width, bh})
	}
}

// Traverse visits every leaf, left-to-right / top-to-bottom.
func (t *SplitTree) Traverse(cb func(*SplitTree)) {
	switch {
	case t.leaf != nil:
		cb(t)
	case t.left != nil:
		t.left.Traverse(cb)
		t.right.Traverse(cb)
	case t.top != nil:
		t.top.Traverse(cb)
		t.bottom.Traverse(cb)
	}
}

func (t *SplitTree) firstLeafNode() *SplitTree {
	switch {
	case t.left != nil:
		return t.left.firstLeafNode()
	case t.top != nil:
		return t.top.firstLeafNode()
	default:
		return t
	}
}

// FirstLeafNode is firstLeafNode exported for callers outside the
// package (the front-end's kill-pane command, which needs to pick a
// new active leaf after collapsing a split).
func (t *SplitTree) FirstLeafNode() *SplitTree {
	return t.firstLeafNode()
}

// Reparent fixes up t's immediate children's parent pointer to point
// at t itself, needed after ReplaceWith copies another node's fields
// (including its children) into t.
func (t *SplitTree) Reparent() {
	switch {
	case t.left != nil:
		t.left.parent = t
		t.right.parent = t
	case t.top != nil:
		t.top.parent = t
		t.bottom.parent = t
	}
}

// ReplaceWith overwrites t's fields with other's (same parent pointer
// kept) and reparents whatever children come along, the way the
// teacher's killActiveView collapses a killed pane's sibling up into
// its parent's slot.
func (t *SplitTree) ReplaceWith(other *SplitTree) {
	parent := t.parent
	*t = *other
	t.parent = parent
	t.Reparent()
}

// Sibling returns the other child of t's parent, or nil at the root.
func (t *SplitTree) Sibling() *SplitTree {
	p := t.parent
	if p == nil {
		return nil
	}
	switch t {
	case p.left:
		return p.right
	case p.right:
		return p.left
	case p.top:
		return p.bottom
	case p.bottom:
		return p.top
	default:
		return nil
	}
}

// NearestHSplit finds the nearest top/bottom-split neighbour above
// (dir<0) or below (dir>0) t, the way the teacher's viewTree walks up
// until an ancestor's split direction matches.
func (t *SplitTree) NearestHSplit(dir int) *SplitTree {
	v, w := t, t.parent
	for w != nil {
		if dir < 0 && w.top != nil && v == w.bottom {
			return w.top.firstLeafNode()
		}
		if dir > 0 && w.bottom != nil && v == w.top {
			return w.bottom.firstLeafNode()
		}
		v, w = w, w.parent
	}
	return nil
}

// NearestVSplit is NearestHSplit's left/right counterpart.
func (t *SplitTree) NearestVSplit(dir int) *SplitTree {
	v, w := t, t.parent
	for w != nil {
		if dir < 0 && w.left != nil && v == w.right {
			return w.left.firstLeafNode()
		}
		if dir > 0 && w.right != nil && v == w.left {
			return w.right.firstLeafNode()
		}
		v, w = w, w.parent
	}
	return nil
}
