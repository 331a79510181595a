package viewport

import (
	"strings"
	"testing"

	"github.com/kisielk-labs/scribe/cursor"
	"github.com/kisielk-labs/scribe/piecetree"
	"github.com/kisielk-labs/scribe/view"
)

func buildTestLayout(content string, width int) view.Layout {
	tokens := []view.Token{view.NewText(content, 0, view.Style{}, false)}
	return view.Build(tokens, view.BuildOptions{
		ViewportWidth: width,
		SourceRange:   piecetree.ByteRange{Start: 0, End: len(content)},
	})
}

func TestMoveHorizontalCrossesToNextLine(t *testing.T) {
	layout := buildTestLayout("ab\ncd", 80)
	pos := MoveHorizontal(&layout, 0, 2, 1, true)
	if pos.ViewLine != 1 || pos.Column != 0 {
		t.Errorf("got %+v, want line 1 col 0", pos)
	}
}

func TestMoveHorizontalCrossesToPrevLine(t *testing.T) {
	layout := buildTestLayout("ab\ncd", 80)
	pos := MoveHorizontal(&layout, 1, 0, -1, true)
	if pos.ViewLine != 0 || pos.Column != 2 {
		t.Errorf("got %+v, want line 0 col 2 (one past last char)", pos)
	}
}

func TestMoveHorizontalStaysOnLine(t *testing.T) {
	layout := buildTestLayout("abc", 80)
	pos := MoveHorizontal(&layout, 0, 1, 1, true)
	if pos.ViewLine != 0 || pos.Column != 2 {
		t.Errorf("got %+v, want line 0 col 2", pos)
	}
}

func TestMoveHorizontalDoesNotCrossBufferEdgeWhenDisabled(t *testing.T) {
	layout := buildTestLayout("ab\ncd", 80)
	pos := MoveHorizontal(&layout, 0, 2, 1, false)
	if pos.ViewLine != 0 || pos.Column != 2 {
		t.Errorf("got %+v, want to stay at line 0 col 2", pos)
	}
	pos = MoveHorizontal(&layout, 1, 0, -1, false)
	if pos.ViewLine != 1 || pos.Column != 0 {
		t.Errorf("got %+v, want to stay at line 1 col 0", pos)
	}
}

func TestMoveLineEndMultiline(t *testing.T) {
	layout := buildTestLayout("ab\ncdef\ng", 80)
	pos := MoveLineEnd(&layout, 1)
	if pos.Column != 4 {
		t.Errorf("got column %d, want 4", pos.Column)
	}
}

func TestMoveVerticalClampsToValidRange(t *testing.T) {
	layout := buildTestLayout("a\nb\nc", 80)
	pos := MoveVertical(&layout, 0, 0, -5)
	if pos.ViewLine != 0 {
		t.Errorf("expected clamp to line 0, got %d", pos.ViewLine)
	}
	pos = MoveVertical(&layout, 0, 0, 5)
	if pos.ViewLine != 2 {
		t.Errorf("expected clamp to line 2, got %d", pos.ViewLine)
	}
}

func TestMoveVerticalUsesPreferredColumnClampedToLineLength(t *testing.T) {
	layout := buildTestLayout("abcdef\nxy\nabcdef", 80)
	pos := MoveVertical(&layout, 0, 5, 1)
	if pos.Column != 2 {
		t.Errorf("expected clamp to line 1's length (2), got %d", pos.Column)
	}
}

// Invariant 8: Smart Home is idempotent after the third press.
func TestSmartHomeThreePressCycle(t *testing.T) {
	layout := buildTestLayout("    indented text", 80)
	nonWS := 4

	first := MoveLineStart(&layout, 0, 10)
	if first.Column != nonWS {
		t.Fatalf("press 1: got column %d, want %d", first.Column, nonWS)
	}
	second := MoveLineStart(&layout, 0, first.Column)
	if second.Column != 0 {
		t.Fatalf("press 2: got column %d, want 0", second.Column)
	}
	third := MoveLineStart(&layout, 0, second.Column)
	if third.Column != first.Column {
		t.Fatalf("press 3: got column %d, want it to match press 1 (%d)", third.Column, first.Column)
	}
}

func TestMoveLineStartOnAllWhitespaceLineGoesToEnd(t *testing.T) {
	layout := buildTestLayout("    ", 80)
	pos := MoveLineStart(&layout, 0, 2)
	if pos.Column != 4 {
		t.Errorf("got column %d, want 4 (no non-whitespace char)", pos.Column)
	}
}

func TestMoveWordRightSkipsWordThenWhitespace(t *testing.T) {
	layout := buildTestLayout("foo   bar", 80)
	pos := MoveWordRight(&layout, 0, 0)
	if pos.Column != 6 {
		t.Errorf("got column %d, want 6 (start of bar)", pos.Column)
	}
}

func TestMoveWordLeftSkipsWhitespaceThenWord(t *testing.T) {
	layout := buildTestLayout("foo   bar", 80)
	pos := MoveWordLeft(&layout, 0, 9)
	if pos.Column != 6 {
		t.Errorf("got column %d, want 6 (start of bar)", pos.Column)
	}
}

func TestScrollViewClampsToMaxTopLine(t *testing.T) {
	content := strings.Join([]string{"a", "b", "c", "d", "e"}, "\n")
	layout := buildTestLayout(content, 80)
	v := &Viewport{Height: 3}
	ScrollView(v, &layout, 100)
	if want := layout.MaxTopLine(v.VisibleLineCount()); v.TopViewLine != want {
		t.Errorf("got top line %d, want clamp to %d", v.TopViewLine, want)
	}
}

func posAt(layout *view.Layout, line, column int) cursor.ViewPosition {
	b, ok := layout.ViewPositionToSourceByte(line, column)
	if !ok {
		b = -1
	}
	return cursor.ViewPosition{ViewLine: line, Column: column, SourceByte: b}
}

func TestEnsureVisibleInLayoutKeepsScrollThresholdMargin(t *testing.T) {
	content := strings.Join([]string{"a", "b", "c", "d", "e", "f", "g", "h"}, "\n")
	layout := buildTestLayout(content, 80)
	v := &Viewport{Height: 7, Width: 80, TopViewLine: 2}

	// Cursor only one line below the top edge, with a threshold of 2:
	// should scroll up so the cursor keeps 2 lines of context above it.
	EnsureVisibleInLayout(v, posAt(&layout, 3, 0), &layout, 0, 2)
	if v.TopViewLine != 1 {
		t.Errorf("got top line %d, want 1 (3 - margin 2)", v.TopViewLine)
	}
}

func TestEnsureVisibleInLayoutClampsMarginNearBufferEdges(t *testing.T) {
	content := strings.Join([]string{"a", "b", "c"}, "\n")
	layout := buildTestLayout(content, 80)
	v := &Viewport{Height: 4, Width: 80}

	EnsureVisibleInLayout(v, posAt(&layout, 0, 0), &layout, 0, 2)
	if v.TopViewLine != 0 {
		t.Errorf("got top line %d, want 0 (cannot scroll above the document start)", v.TopViewLine)
	}
}

func TestMovePageDelegatesToMoveVertical(t *testing.T) {
	content := strings.Join([]string{"a", "b", "c", "d", "e", "f"}, "\n")
	layout := buildTestLayout(content, 80)
	pos := MovePage(&layout, 0, 0, 4, true)
	if pos.ViewLine != 3 {
		t.Errorf("got line %d, want 3 (visible-1 = 3)", pos.ViewLine)
	}
}
