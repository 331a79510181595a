package view

import (
	"strings"

	"github.com/kisielk-labs/scribe/piecetree"
)

// LineStart classifies how a ViewLine begins, which the renderer uses to
// decide whether to draw a gutter line number.
type LineStart int

const (
	Beginning LineStart = iota
	AfterSourceNewline
	AfterInjectedNewline
	AfterBreak
)

// ViewLine is one row of a Layout.
type ViewLine struct {
	Text string
	// CharMappings[i] is the source byte of the i'th character, or -1 if
	// the character has no source mapping at all (purely injected text).
	// Every expansion cell of a tab, not just the first, carries the
	// tab's own source byte.
	CharMappings    []int
	CharStyles      []Style
	CharHasStyle    []bool
	TabStarts       map[int]bool
	LineStart       LineStart
	EndsWithNewline bool
}

// ShouldShowLineNumber reports whether the gutter should draw a number for
// this line.
func (l *ViewLine) ShouldShowLineNumber() bool {
	switch l.LineStart {
	case Beginning, AfterSourceNewline:
		return true
	case AfterBreak:
		return false
	case AfterInjectedNewline:
		for _, m := range l.CharMappings {
			if m >= 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// BuildOptions configures a Layout build.
type BuildOptions struct {
	LineWrapEnabled bool
	ViewportWidth   int
	GutterWidth     int
	// TabWidth is the number of columns a tab advances to the next stop.
	// Zero defaults to 4.
	TabWidth    int
	SourceRange piecetree.ByteRange
	// JoinsMidLine reports that this layout continues a line whose
	// beginning was rendered by an earlier layout (e.g. a split view
	// scrolled past the first line of a very long source line).
	JoinsMidLine bool
}

// Layout is the renderer-facing projection of a document window.
type Layout struct {
	Lines       []ViewLine
	SourceRange piecetree.ByteRange
}

// Build runs the view pipeline: flatten tokens to characters, then break
// them into wrapped, tab-expanded lines.
func Build(tokens []Token, opts BuildOptions) Layout {
	tabWidth := opts.TabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}
	cells := flatten(tokens, tabWidth)
	lines := breakLines(cells, opts)
	return Layout{Lines: lines, SourceRange: opts.SourceRange}
}

func breakLines(cells []cell, opts BuildOptions) []ViewLine {
	width := opts.ViewportWidth - opts.GutterWidth
	if width < 1 {
		width = 1
	}

	var lines []ViewLine
	var cur []cell
	curCol := 0
	lastSpace := -1
	seenNonSpace := false

	nextStart := Beginning
	if opts.JoinsMidLine {
		nextStart = AfterBreak
	}

	flush := func(endsWithNewline bool) {
		lines = append(lines, buildViewLine(cur, nextStart, endsWithNewline))
		cur = nil
		curCol = 0
		lastSpace = -1
		seenNonSpace = false
	}

	for _, c := range cells {
		if c.newline {
			cur = append(cur, c)
			flush(true)
			if c.injected {
				nextStart = AfterInjectedNewline
			} else {
				nextStart = AfterSourceNewline
			}
			continue
		}

		// A run of leading whitespace is never itself a wrap candidate —
		// breaking there would just reproduce the indentation on the next
		// line without making room for anything.
		if opts.LineWrapEnabled && curCol > 0 && curCol+c.width > width {
			if lastSpace >= 0 {
				remainder := append([]cell(nil), cur[lastSpace+1:]...)
				cur = cur[:lastSpace+1]
				flush(false)
				nextStart = AfterBreak
				cur = remainder
				curCol = 0
				lastSpace = -1
				seenNonSpace = false
				for idx, rc := range cur {
					curCol += rc.width
					if rc.r != ' ' {
						seenNonSpace = true
					} else if seenNonSpace {
						lastSpace = idx
					}
				}
			} else {
				flush(false)
				nextStart = AfterBreak
			}
		}

		cur = append(cur, c)
		if c.r != ' ' {
			seenNonSpace = true
		} else if seenNonSpace {
			lastSpace = len(cur) - 1
		}
		curCol += c.width
	}

	if len(cur) > 0 || len(lines) == 0 {
		flush(false)
	}

	return lines
}

func buildViewLine(cur []cell, start LineStart, endsWithNewline bool) ViewLine {
	var text strings.Builder
	mappings := make([]int, 0, len(cur))
	styles := make([]Style, 0, len(cur))
	hasStyle := make([]bool, 0, len(cur))
	tabStarts := map[int]bool{}
	col := 0
	for _, c := range cur {
		text.WriteRune(c.r)
		mappings = append(mappings, c.sourceByte)
		styles = append(styles, c.style)
		hasStyle = append(hasStyle, c.hasStyle)
		if c.tabStart {
			tabStarts[col] = true
		}
		col += c.width
	}
	return ViewLine{
		Text:            text.String(),
		CharMappings:    mappings,
		CharStyles:      styles,
		CharHasStyle:    hasStyle,
		TabStarts:       tabStarts,
		LineStart:       start,
		EndsWithNewline: endsWithNewline,
	}
}

// ViewPositionToSourceByte maps a (view_line, column) to a source byte, per
// §4.4: an exact mapping if the column names a mapped character, the
// following line's first mapped character if column is one past the end,
// else the end of the covered source range.
func (l *Layout) ViewPositionToSourceByte(viewLine, column int) (int, bool) {
	if viewLine < 0 || viewLine >= len(l.Lines) {
		return 0, false
	}
	line := &l.Lines[viewLine]
	if column >= 0 && column < len(line.CharMappings) {
		b := line.CharMappings[column]
		if b < 0 {
			return 0, false
		}
		return b, true
	}
	if column == len(line.CharMappings) {
		for i := viewLine + 1; i < len(l.Lines); i++ {
			if b, ok := firstMapped(&l.Lines[i]); ok {
				return b, true
			}
		}
		return l.SourceRange.End, true
	}
	return 0, false
}

// SourceByteToViewPosition maps a source byte back to (view_line, column) by
// binary-searching lines on their first mapped character, then scanning the
// candidate line's mappings.
func (l *Layout) SourceByteToViewPosition(offset int) (int, int, bool) {
	lo, hi := 0, len(l.Lines)-1
	candidate := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		b, ok := firstMapped(&l.Lines[mid])
		if !ok {
			candidate = -1
			break
		}
		if b <= offset {
			candidate = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if candidate == -1 {
		for i := len(l.Lines) - 1; i >= 0; i-- {
			if b, ok := firstMapped(&l.Lines[i]); ok && b <= offset {
				candidate = i
				break
			}
		}
	}
	if candidate == -1 {
		return 0, 0, false
	}
	line := &l.Lines[candidate]
	for col, m := range line.CharMappings {
		if m == offset {
			return candidate, col, true
		}
	}
	return candidate, len(line.CharMappings), true
}

func firstMapped(l *ViewLine) (int, bool) {
	for _, m := range l.CharMappings {
		if m >= 0 {
			return m, true
		}
	}
	return 0, false
}

// SourceByteForLine returns the source byte of the given line's first
// mapped character, used by scroll_view to anchor the viewport.
func (l *Layout) SourceByteForLine(line int) (int, bool) {
	if line < 0 || line >= len(l.Lines) {
		return 0, false
	}
	return firstMapped(&l.Lines[line])
}

// MaxTopLine clamps a scroll target so at least one line stays visible at
// the end of the document.
func (l *Layout) MaxTopLine(visible int) int {
	max := len(l.Lines) - visible
	if max < 0 {
		max = 0
	}
	return max
}
