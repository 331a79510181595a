package piecetree

import (
	"testing"

	"github.com/kisielk-labs/scribe/stringpool"
)

func treeFromString(t *testing.T, pool *stringpool.Pool, s string) *Tree {
	t.Helper()
	loc := pool.Push([]byte(s), true, true)
	return NewFromChunks(pool, []LeafSpec{{Location: loc, Offset: 0, Bytes: len(s), LineFeedCnt: countNL(s), LFKnown: true}})
}

func countNL(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}

func mustText(t *testing.T, tr *Tree) string {
	t.Helper()
	b, err := tr.GetTextRange(0, tr.Len())
	if err != nil {
		t.Fatalf("GetTextRange: %v", err)
	}
	return string(b)
}

func TestLenAndGetTextRange(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "hello world")
	if tr.Len() != 11 {
		t.Fatalf("Len = %d, want 11", tr.Len())
	}
	if got := mustText(t, tr); got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestInsertAndDeleteRoundtrip(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "hello")
	addLoc := pool.Push([]byte("!"), false, true)
	tr2, err := tr.Insert(5, addLoc, 0, 1, 0, true)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := mustText(t, tr2); got != "hello!" {
		t.Fatalf("got %q, want hello!", got)
	}

	tr3, err := tr2.Delete(0, 5)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := mustText(t, tr3); got != "!" {
		t.Fatalf("got %q, want !", got)
	}
	// original tree is untouched (structural sharing doesn't mean mutation)
	if got := mustText(t, tr); got != "hello" {
		t.Errorf("original tree mutated: got %q", got)
	}
}

func TestGetLine(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "one\ntwo\nthree")
	for i, want := range []string{"one", "two", "three"} {
		got, err := tr.GetLine(i)
		if err != nil {
			t.Fatalf("GetLine(%d): %v", i, err)
		}
		if string(got) != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
	if _, err := tr.GetLine(3); err == nil {
		t.Error("expected out-of-range error for line 3")
	}
}

func TestLineCountAndOffsetToPosition(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "one\ntwo\nthree")
	n, ok := tr.LineCount()
	if !ok || n != 3 {
		t.Fatalf("LineCount = (%d, %v), want (3, true)", n, ok)
	}
	line, col, err := tr.OffsetToPosition(5) // 'w' in "two"
	if err != nil {
		t.Fatalf("OffsetToPosition: %v", err)
	}
	if line != 1 || col != 1 {
		t.Errorf("OffsetToPosition(5) = (%d,%d), want (1,1)", line, col)
	}
}

func TestLineColToPosition(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "one\ntwo\nthree")
	off, err := tr.LineColToPosition(2, 2)
	if err != nil {
		t.Fatalf("LineColToPosition: %v", err)
	}
	if off != 10 { // "one\ntwo\nth" -> index 10 is 'r'
		t.Errorf("got %d, want 10", off)
	}
}

func TestSplitLeavesToChunkSizePreservesContent(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "abcdefghij")
	split := tr.SplitLeavesToChunkSize(3)
	if got := mustText(t, split); got != "abcdefghij" {
		t.Errorf("got %q after split", got)
	}
	var leaves []*Node
	collectLeaves(split.root, &leaves)
	for _, l := range leaves {
		if l.bytesLen > 3 {
			t.Errorf("leaf exceeds chunk size: %d bytes", l.bytesLen)
		}
	}
}

func TestRebalancePreservesContent(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "abcdefghij").SplitLeavesToChunkSize(1)
	rebalanced := tr.Rebalance()
	if got := mustText(t, rebalanced); got != "abcdefghij" {
		t.Errorf("got %q after rebalance", got)
	}
}

func TestUnknownLineCountPropagates(t *testing.T) {
	pool := stringpool.New()
	loc := pool.Push([]byte("a\nb\nc"), true, false) // unscanned
	tr := NewFromChunks(pool, []LeafSpec{{Location: loc, Offset: 0, Bytes: 5, LFKnown: false}})
	if _, ok := tr.LineCount(); ok {
		t.Error("expected unknown line count")
	}
	if _, err := tr.LineStartOffset(1); err == nil {
		t.Error("expected error for unknown line count")
	}
}
