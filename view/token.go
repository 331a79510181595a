// Package view turns a stream of view tokens into a Layout: the wrapped,
// tab-expanded lines a renderer draws and a cursor navigates.
package view

import "unicode/utf8"

// Style is an opaque decoration carried through to the renderer. The core
// never interprets its fields; it only threads them from token to cell to
// ViewLine.
type Style struct {
	Fg, Bg uint16
}

// TokenKind tags the variant of a Token. A tagged struct is used instead of
// an interface so the flatten pass can iterate tokens without allocating a
// closure or performing a type switch per call.
type TokenKind int

const (
	TextKind TokenKind = iota
	InjectKind
	SkipKind
	StyleKind
)

// Token is one producer-emitted unit of the view pipeline's input.
//
//   - Text: visible characters with an optional source mapping.
//     SourceOffset is the byte offset of Text's first character in the
//     document, or -1 if this text has no source mapping at all.
//   - Inject: view-only text with no source mapping whatsoever.
//   - Skip: SkipLen bytes of source text hidden from view (folding). It
//     contributes no characters to the layout.
//   - Style: a decoration applied to the next StyleLen characters emitted
//     by subsequent tokens.
type Token struct {
	Kind         TokenKind
	Text         string
	SourceOffset int
	Style        Style
	HasStyle     bool
	SkipLen      int
	StyleLen     int
}

func NewText(text string, sourceOffset int, style Style, hasStyle bool) Token {
	return Token{Kind: TextKind, Text: text, SourceOffset: sourceOffset, Style: style, HasStyle: hasStyle}
}

func NewInject(text string, style Style, hasStyle bool) Token {
	return Token{Kind: InjectKind, Text: text, SourceOffset: -1, Style: style, HasStyle: hasStyle}
}

func NewSkip(byteLen int) Token {
	return Token{Kind: SkipKind, SkipLen: byteLen}
}

func NewStyleSpan(style Style, length int) Token {
	return Token{Kind: StyleKind, Style: style, StyleLen: length}
}

// cell is one flattened, pre-wrap logical character.
type cell struct {
	r          rune
	width      int
	style      Style
	hasStyle   bool
	sourceByte int // -1 if unmapped
	injected   bool
	newline    bool
	tabStart   bool // first expansion cell of a tab
}

func runeWidth(r rune) int {
	if r == '\n' || r == '\t' {
		return 0
	}
	if r < 32 {
		return 2
	}
	return runeVisualWidth(r)
}

// flatten walks tokens emitting (char, style, source_byte_or_none), expanding
// tabs to the next tab stop and tracking a running style override pushed by
// Style tokens.
func flatten(tokens []Token, tabWidth int) []cell {
	var out []cell
	lineCol := 0
	var pendingStyle Style
	pendingRemaining := 0

	emit := func(r rune, sourceByte int, injected bool, tokStyle Style, tokHasStyle bool) {
		style := tokStyle
		hasStyle := tokHasStyle
		if pendingRemaining > 0 {
			style = pendingStyle
			hasStyle = true
			pendingRemaining--
		}
		switch r {
		case '\n':
			out = append(out, cell{r: '\n', style: style, hasStyle: hasStyle, sourceByte: sourceByte, injected: injected, newline: true})
			lineCol = 0
		case '\t':
			stop := tabWidth - lineCol%tabWidth
			for i := 0; i < stop; i++ {
				out = append(out, cell{r: ' ', width: 1, style: style, hasStyle: hasStyle, sourceByte: sourceByte, injected: injected, tabStart: i == 0})
			}
			lineCol += stop
		default:
			w := runeWidth(r)
			out = append(out, cell{r: r, width: w, style: style, hasStyle: hasStyle, sourceByte: sourceByte, injected: injected})
			lineCol += w
		}
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case TextKind:
			src := tok.SourceOffset
			for _, r := range tok.Text {
				b := -1
				if src >= 0 {
					b = src
				}
				emit(r, b, false, tok.Style, tok.HasStyle)
				if src >= 0 {
					src += utf8.RuneLen(r)
				}
			}
		case InjectKind:
			for _, r := range tok.Text {
				emit(r, -1, true, tok.Style, tok.HasStyle)
			}
		case SkipKind:
			// hidden from view; contributes no cells.
		case StyleKind:
			pendingStyle = tok.Style
			pendingRemaining = tok.StyleLen
		}
	}
	return out
}
