package piecetree

import (
	"reflect"
	"testing"

	"github.com/kisielk-labs/scribe/stringpool"
)

// S1 Identity diff.
func TestDiffIdentity(t *testing.T) {
	pool := stringpool.New()
	tr := treeFromString(t, pool, "hello world")
	diff := DiffTrees(tr, tr)
	if !diff.Equal {
		t.Fatal("expected equal")
	}
	if len(diff.ByteRanges) != 0 {
		t.Errorf("expected no byte ranges, got %v", diff.ByteRanges)
	}
	if !diff.LineRangesKnown || len(diff.LineRanges) != 0 {
		t.Errorf("expected known empty line ranges, got %v known=%v", diff.LineRanges, diff.LineRangesKnown)
	}
	if diff.NodesVisited != 1 {
		t.Errorf("expected nodes_visited == 1, got %d", diff.NodesVisited)
	}
}

// S2 Single-char insert.
func TestDiffSingleCharInsert(t *testing.T) {
	pool := stringpool.New()
	t0 := treeFromString(t, pool, "hello")
	addLoc := pool.Push([]byte("!"), false, true)
	t1, err := t0.Insert(5, addLoc, 0, 1, 0, true)
	if err != nil {
		t.Fatal(err)
	}

	diff := DiffTrees(t0, t1)
	if diff.Equal {
		t.Fatal("expected not equal")
	}
	want := []ByteRange{{5, 6}}
	if !reflect.DeepEqual(diff.ByteRanges, want) {
		t.Errorf("byte ranges = %v, want %v", diff.ByteRanges, want)
	}
	wantLines := []LineRange{{0, 1}}
	if !diff.LineRangesKnown || !reflect.DeepEqual(diff.LineRanges, wantLines) {
		t.Errorf("line ranges = %v known=%v, want %v", diff.LineRanges, diff.LineRangesKnown, wantLines)
	}
}

// S3 Newline insert.
func TestDiffNewlineInsert(t *testing.T) {
	pool := stringpool.New()
	t0 := treeFromString(t, pool, "abcdef")
	addLoc := pool.Push([]byte("\n"), false, true)
	t1, err := t0.Insert(3, addLoc, 0, 1, 1, true)
	if err != nil {
		t.Fatal(err)
	}

	diff := DiffTrees(t0, t1)
	want := []ByteRange{{3, 4}}
	if !reflect.DeepEqual(diff.ByteRanges, want) {
		t.Errorf("byte ranges = %v, want %v", diff.ByteRanges, want)
	}
	wantLines := []LineRange{{0, 2}}
	if !reflect.DeepEqual(diff.LineRanges, wantLines) {
		t.Errorf("line ranges = %v, want %v", diff.LineRanges, wantLines)
	}
}

// S4 Mid-file delete.
func TestDiffMidFileDelete(t *testing.T) {
	pool := stringpool.New()
	t0 := treeFromString(t, pool, "one\ntwo\nthree")
	t1, err := t0.Delete(4, 8) // removes "two\n"
	if err != nil {
		t.Fatal(err)
	}

	diff := DiffTrees(t0, t1)
	want := []ByteRange{{4, 4}}
	if !reflect.DeepEqual(diff.ByteRanges, want) {
		t.Errorf("byte ranges = %v, want %v", diff.ByteRanges, want)
	}
	wantLines := []LineRange{{1, 2}}
	if !reflect.DeepEqual(diff.LineRanges, wantLines) {
		t.Errorf("line ranges = %v, want %v", diff.LineRanges, wantLines)
	}
}

// S5 Rebalance equivalence.
func TestDiffRebalanceEquivalence(t *testing.T) {
	pool := stringpool.New()
	total := 10_000
	content := make([]byte, total)
	for i := range content {
		if i%100 == 99 {
			content[i] = '\n'
		} else {
			content[i] = 'A'
		}
	}
	loc := pool.Push(content, true, true)
	saved := NewFromChunks(pool, []LeafSpec{{Location: loc, Offset: 0, Bytes: total, LineFeedCnt: countNLBytes(content), LFKnown: true}})
	saved = saved.SplitLeavesToChunkSize(1000)

	insertLoc := pool.Push([]byte("HELLO"), false, true)
	insertOffset := total - 100
	afterShared, err := saved.Insert(insertOffset, insertLoc, 0, 5, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	diff1 := DiffTrees(saved, afterShared)

	afterRebalanced := afterShared.Rebalance()
	diff2 := DiffTrees(saved, afterRebalanced)

	if !reflect.DeepEqual(diff1.ByteRanges, diff2.ByteRanges) {
		t.Errorf("byte ranges differ: %v vs %v", diff1.ByteRanges, diff2.ByteRanges)
	}
	if !reflect.DeepEqual(diff1.LineRanges, diff2.LineRanges) {
		t.Errorf("line ranges differ: %v vs %v", diff1.LineRanges, diff2.LineRanges)
	}
	if diff2.NodesVisited <= diff1.NodesVisited {
		t.Errorf("expected rebalanced diff to visit more nodes: %d vs %d", diff2.NodesVisited, diff1.NodesVisited)
	}
}

func countNLBytes(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

func TestDiffSplitLeavesStillDetectsOnlyInsertedSpan(t *testing.T) {
	pool := stringpool.New()
	loc := pool.Push(make([]byte, 100), true, true)
	before := NewFromChunks(pool, []LeafSpec{{Location: loc, Offset: 0, Bytes: 100, LineFeedCnt: 0, LFKnown: true}})

	insLoc := pool.Push(make([]byte, 10), false, true)
	after, err := before.Insert(50, insLoc, 0, 10, 0, true)
	if err != nil {
		t.Fatal(err)
	}

	diff := DiffTrees(before, after)
	want := []ByteRange{{50, 60}}
	if !reflect.DeepEqual(diff.ByteRanges, want) {
		t.Errorf("byte ranges = %v, want %v", diff.ByteRanges, want)
	}
}

func TestDiffUnknownLineCountDegrades(t *testing.T) {
	pool := stringpool.New()
	loc := pool.Push([]byte("hello"), true, false) // unscanned
	before := NewFromChunks(pool, []LeafSpec{{Location: loc, Offset: 0, Bytes: 5, LFKnown: false}})
	addLoc := pool.Push([]byte("!"), false, false)
	after, err := before.Insert(5, addLoc, 0, 1, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	diff := DiffTrees(before, after)
	if diff.LineRangesKnown {
		t.Error("expected line ranges to be unknown")
	}
	if diff.LineRanges != nil {
		t.Errorf("expected nil line ranges, got %v", diff.LineRanges)
	}
}
