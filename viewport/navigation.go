package viewport

import (
	"unicode"

	"github.com/kisielk-labs/scribe/cursor"
	"github.com/kisielk-labs/scribe/view"
)

// lineRunes returns a line's content runes, excluding the trailing newline
// that EndsWithNewline bakes into Text/CharMappings — navigation treats
// the newline as the boundary past the last column, not a column itself.
func lineRunes(layout *view.Layout, line int) []rune {
	if line < 0 || line >= len(layout.Lines) {
		return nil
	}
	l := &layout.Lines[line]
	runes := []rune(l.Text)
	if l.EndsWithNewline && len(runes) > 0 {
		runes = runes[:len(runes)-1]
	}
	return runes
}

func lineLen(layout *view.Layout, line int) int {
	return len(lineRunes(layout, line))
}

func resolve(layout *view.Layout, line, column int) cursor.ViewPosition {
	b, ok := layout.ViewPositionToSourceByte(line, column)
	if !ok {
		return cursor.ViewPosition{ViewLine: line, Column: column, SourceByte: -1}
	}
	return cursor.ViewPosition{ViewLine: line, Column: column, SourceByte: b}
}

// MoveVertical moves by delta view lines, clamped to the document, using
// preferredColumn as the sticky column (clamped to the destination line's
// length) rather than the cursor's current column.
func MoveVertical(layout *view.Layout, line, preferredColumn, delta int) cursor.ViewPosition {
	if len(layout.Lines) == 0 {
		return cursor.ViewPosition{SourceByte: -1}
	}
	newLine := line + delta
	if newLine < 0 {
		newLine = 0
	}
	if newLine >= len(layout.Lines) {
		newLine = len(layout.Lines) - 1
	}
	col := preferredColumn
	if max := lineLen(layout, newLine); col > max {
		col = max
	}
	return resolve(layout, newLine, col)
}

// MoveHorizontal moves by delta characters. A soft-wrapped line's end is
// never a document boundary, so this always steps across those; crossing a
// hard line boundary (source newline) at column 0/line-end is gated by
// wrapAroundAtBufferEdges.
func MoveHorizontal(layout *view.Layout, line, column, delta int, wrapAroundAtBufferEdges bool) cursor.ViewPosition {
	if len(layout.Lines) == 0 {
		return cursor.ViewPosition{SourceByte: -1}
	}
	for delta > 0 {
		max := lineLen(layout, line)
		if column >= max {
			if line+1 >= len(layout.Lines) {
				break
			}
			if layout.Lines[line].EndsWithNewline && !wrapAroundAtBufferEdges {
				break
			}
			line++
			column = 0
		} else {
			column++
		}
		delta--
	}
	for delta < 0 {
		if column == 0 {
			if line == 0 {
				break
			}
			if layout.Lines[line-1].EndsWithNewline && !wrapAroundAtBufferEdges {
				break
			}
			line--
			column = lineLen(layout, line)
		} else {
			column--
		}
		delta++
	}
	return resolve(layout, line, column)
}

// MovePage moves by (visible-1) lines, mirroring MoveVertical's clamping.
func MovePage(layout *view.Layout, line, preferredColumn, visible int, down bool) cursor.ViewPosition {
	delta := visible - 1
	if delta < 1 {
		delta = 1
	}
	if !down {
		delta = -delta
	}
	return MoveVertical(layout, line, preferredColumn, delta)
}

func firstNonWhitespaceColumn(layout *view.Layout, line int) int {
	runes := lineRunes(layout, line)
	for i, r := range runes {
		if !unicode.IsSpace(r) {
			return i
		}
	}
	return len(runes)
}

// MoveLineStart implements the Smart Home cycle: from any column other than
// the first non-whitespace character, land there; a second press from that
// column goes to column 0; a third (identical) press returns to the first
// non-whitespace column again.
func MoveLineStart(layout *view.Layout, line, column int) cursor.ViewPosition {
	nonWS := firstNonWhitespaceColumn(layout, line)
	target := nonWS
	if column == nonWS && nonWS != 0 {
		target = 0
	}
	return resolve(layout, line, target)
}

// MoveLineEnd moves to one past the last character of the line.
func MoveLineEnd(layout *view.Layout, line int) cursor.ViewPosition {
	return resolve(layout, line, lineLen(layout, line))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// MoveWordLeft skips any whitespace immediately to the left, then the
// contiguous run of word (or, failing that, punctuation) characters before
// it, crossing into the previous line at column 0.
func MoveWordLeft(layout *view.Layout, line, column int) cursor.ViewPosition {
	for {
		if column == 0 {
			if line == 0 {
				return resolve(layout, 0, 0)
			}
			line--
			column = lineLen(layout, line)
			if column == 0 {
				return resolve(layout, line, 0)
			}
			continue
		}
		runes := lineRunes(layout, line)
		i := column - 1
		for i >= 0 && unicode.IsSpace(runes[i]) {
			i--
		}
		if i < 0 {
			column = 0
			continue
		}
		wantWord := isWordRune(runes[i])
		for i >= 0 && !unicode.IsSpace(runes[i]) && isWordRune(runes[i]) == wantWord {
			i--
		}
		return resolve(layout, line, i+1)
	}
}

// MoveWordRight skips the contiguous run of word (or punctuation)
// characters under the cursor, then any trailing whitespace, crossing into
// the next line at column 0.
func MoveWordRight(layout *view.Layout, line, column int) cursor.ViewPosition {
	for {
		runes := lineRunes(layout, line)
		max := len(runes)
		if column >= max {
			if line+1 >= len(layout.Lines) {
				return resolve(layout, line, max)
			}
			line++
			column = 0
			if lineLen(layout, line) == 0 {
				return resolve(layout, line, 0)
			}
			continue
		}
		i := column
		wantWord := isWordRune(runes[i])
		for i < max && !unicode.IsSpace(runes[i]) && isWordRune(runes[i]) == wantWord {
			i++
		}
		for i < max && unicode.IsSpace(runes[i]) {
			i++
		}
		if i == column {
			column = max
			continue
		}
		return resolve(layout, line, i)
	}
}

// ScrollView moves the viewport's top line by delta, clamping so at least
// one line stays visible, and re-anchors it to that line's source byte.
func ScrollView(v *Viewport, layout *view.Layout, delta int) {
	top := v.TopViewLine + delta
	if top < 0 {
		top = 0
	}
	if max := layout.MaxTopLine(v.VisibleLineCount()); top > max {
		top = max
	}
	v.TopViewLine = top
	if b, ok := layout.SourceByteForLine(top); ok {
		v.AnchorByte = b
	}
}
