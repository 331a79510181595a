package cursor

import (
	"strings"
	"testing"

	"github.com/kisielk-labs/scribe/piecetree"
	"github.com/kisielk-labs/scribe/stringpool"
	"github.com/kisielk-labs/scribe/view"
)

func newTestTree(pool *stringpool.Pool, s string) *piecetree.Tree {
	loc := pool.Push([]byte(s), true, true)
	return piecetree.NewFromChunks(pool, []piecetree.LeafSpec{
		{Location: loc, Offset: 0, Bytes: len(s), LineFeedCnt: strings.Count(s, "\n"), LFKnown: true},
	})
}

func TestMoveToClearsSelectionUnlessExtending(t *testing.T) {
	c := New(ViewPosition{ViewLine: 0, Column: 0, SourceByte: 0})
	c.MoveTo(ViewPosition{ViewLine: 0, Column: 5, SourceByte: 5}, true)
	if !c.HasAnchor {
		t.Fatal("expected anchor to be set when extending")
	}
	c.MoveTo(ViewPosition{ViewLine: 0, Column: 6, SourceByte: 6}, false)
	if c.HasAnchor {
		t.Fatal("expected selection cleared on non-extending move")
	}
}

func TestSelectionRangeNormalizesOrder(t *testing.T) {
	c := New(ViewPosition{ViewLine: 2, Column: 0, SourceByte: 20})
	c.SetAnchor(ViewPosition{ViewLine: 0, Column: 3, SourceByte: 3})
	start, end, ok := c.SelectionRange()
	if !ok {
		t.Fatal("expected active selection")
	}
	if start.ViewLine != 0 || end.ViewLine != 2 {
		t.Errorf("got start=%v end=%v, want anchor first", start, end)
	}
}

func TestClearSelectionDropsBlockModeToo(t *testing.T) {
	c := New(ViewPosition{})
	c.StartBlockSelection(1, 1)
	c.ClearSelection()
	if c.HasBlockAnchor || c.SelectionMode != SelectionNormal {
		t.Error("expected block selection cleared")
	}
}

func TestRemoveLastCursorRecreatesAtOrigin(t *testing.T) {
	cs := NewCursors()
	id := cs.PrimaryID()
	cs.Remove(id)
	if cs.Len() != 1 {
		t.Fatalf("expected exactly one cursor to remain, got %d", cs.Len())
	}
	p := cs.Primary()
	if p.Position.ViewLine != 0 || p.Position.Column != 0 {
		t.Errorf("expected recreated cursor at origin, got %+v", p.Position)
	}
}

func TestAddMakesNewCursorPrimary(t *testing.T) {
	cs := NewCursors()
	first := cs.PrimaryID()
	second := cs.Add(New(ViewPosition{ViewLine: 1, Column: 0, SourceByte: 1}))
	if cs.PrimaryID() != second {
		t.Errorf("expected newly added cursor %d to be primary, got %d", second, cs.PrimaryID())
	}
	if _, ok := cs.Get(first); !ok {
		t.Error("expected original cursor to remain in the collection")
	}
}

func TestRemovePrimaryReassignsToRemaining(t *testing.T) {
	cs := NewCursors()
	first := cs.PrimaryID()
	second := cs.Add(New(ViewPosition{ViewLine: 1, Column: 0, SourceByte: 1}))
	// Add just made second primary; remove it so first is the only one left.
	cs.Remove(second)
	if cs.PrimaryID() != first {
		t.Errorf("expected primary reassigned to remaining cursor %d, got %d", first, cs.PrimaryID())
	}
}

func textOf(t *testing.T, tree *piecetree.Tree) string {
	t.Helper()
	b, err := tree.GetTextRange(0, tree.Len())
	if err != nil {
		t.Fatalf("GetTextRange: %v", err)
	}
	return string(b)
}

func buildLayout(t *testing.T, tree *piecetree.Tree) view.Layout {
	t.Helper()
	return view.Build([]view.Token{view.NewText(textOf(t, tree), 0, view.Style{}, false)},
		view.BuildOptions{ViewportWidth: 80, SourceRange: piecetree.ByteRange{Start: 0, End: tree.Len()}})
}

// S7: a cursor tracked by source byte follows the text across an edit.
func TestRemapAcrossEditFollowsSourceByte(t *testing.T) {
	pool := stringpool.New()
	tree := newTestTree(pool, "hello world")
	before := buildLayout(t, tree)

	c := New(ViewPosition{})
	pos, ok := before.ViewPositionToSourceByte(0, 6)
	if !ok {
		t.Fatal("expected mapped source byte at column 6")
	}
	c.Position = ViewPosition{ViewLine: 0, Column: 6, SourceByte: pos}

	prefix := "say "
	loc := pool.Push([]byte(prefix), false, true)
	tree, err := tree.Insert(0, loc, 0, len(prefix), strings.Count(prefix, "\n"), true)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	after := buildLayout(t, tree)

	c.RemapAcrossEdit(&after)
	gotByte, ok := c.SourceByte()
	if !ok || gotByte != pos+len(prefix) {
		t.Errorf("expected cursor to follow its source byte after prepend, got %d ok=%v", gotByte, ok)
	}
	if c.Position.Column != 6+len(prefix) {
		t.Errorf("expected column shifted by inserted length, got %d", c.Position.Column)
	}
}
