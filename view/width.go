package view

import "github.com/mattn/go-runewidth"

// runeVisualWidth generalizes the teacher's runeAdvanceLen (which always
// charged one cell per non-control rune) to account for double-width
// East Asian characters and zero-width combining marks.
func runeVisualWidth(r rune) int {
	return runewidth.RuneWidth(r)
}
