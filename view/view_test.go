package view

import (
	"strings"
	"testing"

	"github.com/kisielk-labs/scribe/piecetree"
)

// S6 Wrap layout.
func TestWrapLayout(t *testing.T) {
	content := "    " + strings.Repeat("A", 60)
	tokens := []Token{NewText(content, 0, Style{}, false)}
	layout := Build(tokens, BuildOptions{
		LineWrapEnabled: true,
		ViewportWidth:   40,
		GutterWidth:     5,
		SourceRange:     piecetree.ByteRange{Start: 0, End: len(content)},
	})

	if len(layout.Lines) != 2 {
		t.Fatalf("got %d lines, want 2: %+v", len(layout.Lines), layout.Lines)
	}
	if layout.Lines[0].LineStart != Beginning {
		t.Errorf("line 0 LineStart = %v, want Beginning", layout.Lines[0].LineStart)
	}
	if layout.Lines[1].LineStart != AfterBreak {
		t.Errorf("line 1 LineStart = %v, want AfterBreak", layout.Lines[1].LineStart)
	}
	if !layout.Lines[0].ShouldShowLineNumber() {
		t.Error("line 0 should show line number")
	}
	if layout.Lines[1].ShouldShowLineNumber() {
		t.Error("line 1 should not show line number")
	}

	wantCol := len(layout.Lines[1].CharMappings)
	if wantCol != 29 {
		t.Fatalf("line 1 has %d mapped chars, want 29", wantCol)
	}
}

func TestFlattenExpandsTabsAndTracksTabStarts(t *testing.T) {
	tokens := []Token{NewText("a\tbc", 0, Style{}, false)}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		SourceRange:   piecetree.ByteRange{Start: 0, End: 4},
	})
	if len(layout.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(layout.Lines))
	}
	line := layout.Lines[0]
	// "a" + 3 expansion spaces (tab width 4) + "bc" = 6 chars.
	if line.Text != "a   bc" {
		t.Fatalf("text = %q, want %q", line.Text, "a   bc")
	}
	if !line.TabStarts[1] {
		t.Errorf("expected tab start recorded at column 1, got %v", line.TabStarts)
	}
	// all three expansion spaces map back to the tab's source byte.
	for _, col := range []int{1, 2, 3} {
		if line.CharMappings[col] != 1 {
			t.Errorf("CharMappings[%d] = %d, want 1", col, line.CharMappings[col])
		}
	}
}

func TestFlattenHonorsConfiguredTabWidth(t *testing.T) {
	tokens := []Token{NewText("a\tbc", 0, Style{}, false)}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		TabWidth:      2,
		SourceRange:   piecetree.ByteRange{Start: 0, End: 4},
	})
	line := layout.Lines[0]
	// "a" + 1 expansion space (tab width 2) + "bc" = 4 chars.
	if line.Text != "a bc" {
		t.Fatalf("text = %q, want %q", line.Text, "a bc")
	}
}

func TestInjectLineGetsNoSourceMapping(t *testing.T) {
	tokens := []Token{
		NewText("ab", 0, Style{}, false),
		NewInject("**", Style{}, false),
	}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		SourceRange:   piecetree.ByteRange{Start: 0, End: 2},
	})
	line := layout.Lines[0]
	want := []int{0, 1, -1, -1}
	for i, w := range want {
		if line.CharMappings[i] != w {
			t.Errorf("CharMappings[%d] = %d, want %d", i, line.CharMappings[i], w)
		}
	}
}

// Invariant 5: view_position_to_source_byte / source_byte_to_view_position round-trip.
func TestViewPositionRoundTrip(t *testing.T) {
	tokens := []Token{NewText("hello world", 0, Style{}, false)}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		SourceRange:   piecetree.ByteRange{Start: 0, End: 11},
	})
	for col := 0; col < len(layout.Lines[0].CharMappings); col++ {
		b, ok := layout.ViewPositionToSourceByte(0, col)
		if !ok {
			t.Fatalf("ViewPositionToSourceByte(0,%d) not ok", col)
		}
		gotLine, gotCol, ok := layout.SourceByteToViewPosition(b)
		if !ok || gotLine != 0 || gotCol != col {
			t.Errorf("round trip for col %d: got (%d,%d,%v), want (0,%d,true)", col, gotLine, gotCol, ok, col)
		}
	}
}

// Invariant 6: concatenating line text reproduces the visible projection.
func TestConcatLinesReproducesContent(t *testing.T) {
	content := "line one\nline two\nline three"
	tokens := []Token{NewText(content, 0, Style{}, false)}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		SourceRange:   piecetree.ByteRange{Start: 0, End: len(content)},
	})
	var got strings.Builder
	for _, l := range layout.Lines {
		got.WriteString(l.Text)
	}
	if got.String() != content {
		t.Fatalf("got %q, want %q", got.String(), content)
	}
}

func TestSkipTokenHidesBytesFromView(t *testing.T) {
	tokens := []Token{
		NewText("ab", 0, Style{}, false),
		NewSkip(5),
		NewText("cd", 7, Style{}, false),
	}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		SourceRange:   piecetree.ByteRange{Start: 0, End: 9},
	})
	if layout.Lines[0].Text != "abcd" {
		t.Fatalf("got %q, want abcd", layout.Lines[0].Text)
	}
}

func TestStyleTokenAppliesToFollowingChars(t *testing.T) {
	red := Style{Fg: 1}
	tokens := []Token{
		NewText("ab", 0, Style{}, false),
		NewStyleSpan(red, 2),
		NewText("cdef", 2, Style{}, false),
	}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		SourceRange:   piecetree.ByteRange{Start: 0, End: 6},
	})
	line := layout.Lines[0]
	wantStyled := []bool{false, false, true, true, false, false}
	for i, w := range wantStyled {
		if line.CharHasStyle[i] != w {
			t.Errorf("CharHasStyle[%d] = %v, want %v", i, line.CharHasStyle[i], w)
		}
	}
	if line.CharStyles[2] != red || line.CharStyles[3] != red {
		t.Errorf("styled chars got %+v, %+v, want %+v", line.CharStyles[2], line.CharStyles[3], red)
	}
}

func TestMaxTopLine(t *testing.T) {
	content := "a\nb\nc\nd\ne"
	tokens := []Token{NewText(content, 0, Style{}, false)}
	layout := Build(tokens, BuildOptions{
		ViewportWidth: 80,
		SourceRange:   piecetree.ByteRange{Start: 0, End: len(content)},
	})
	if got := layout.MaxTopLine(3); got != 2 {
		t.Errorf("MaxTopLine(3) = %d, want 2 (5 lines, 3 visible)", got)
	}
	if got := layout.MaxTopLine(10); got != 0 {
		t.Errorf("MaxTopLine(10) = %d, want 0", got)
	}
}
