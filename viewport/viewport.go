// Package viewport implements the scrolling window onto a Layout and the
// pure navigation functions that move a cursor through it.
package viewport

import (
	"github.com/kisielk-labs/scribe/cursor"
	"github.com/kisielk-labs/scribe/view"
)

// Viewport is the visible window into a buffer's layout.
type Viewport struct {
	TopViewLine int
	LeftColumn  int
	Height      int
	Width       int
	// ReservedRows accounts for a status line or similar chrome baked
	// into Height but not available for document rows.
	ReservedRows int
	// AnchorByte is the source byte of the top visible line, kept in
	// sync by ScrollView so a reflow can re-anchor the viewport.
	AnchorByte int
}

// VisibleLineCount is the number of document rows actually available.
func (v *Viewport) VisibleLineCount() int {
	n := v.Height - v.ReservedRows
	if n < 1 {
		return 1
	}
	return n
}

// EnsureVisibleInLayout scrolls the viewport by the minimum amount needed
// to bring cursor fully into view, both vertically and horizontally,
// keeping scrollThreshold lines of context between the cursor and the
// viewport's top/bottom edge wherever the document has room for it.
func EnsureVisibleInLayout(v *Viewport, pos cursor.ViewPosition, layout *view.Layout, gutterWidth, scrollThreshold int) {
	visible := v.VisibleLineCount()
	margin := scrollThreshold
	if max := (visible - 1) / 2; margin > max {
		margin = max
	}
	if margin < 0 {
		margin = 0
	}
	if pos.ViewLine < v.TopViewLine+margin {
		v.TopViewLine = pos.ViewLine - margin
		if v.TopViewLine < 0 {
			v.TopViewLine = 0
		}
	} else if pos.ViewLine > v.TopViewLine+visible-1-margin {
		v.TopViewLine = pos.ViewLine - visible + 1 + margin
		if max := layout.MaxTopLine(visible); v.TopViewLine > max {
			v.TopViewLine = max
		}
	}
	if b, ok := layout.SourceByteForLine(v.TopViewLine); ok {
		v.AnchorByte = b
	}

	contentWidth := v.Width - gutterWidth
	if contentWidth < 1 {
		contentWidth = 1
	}
	if pos.Column < v.LeftColumn {
		v.LeftColumn = pos.Column
	} else if pos.Column > v.LeftColumn+contentWidth-1 {
		v.LeftColumn = pos.Column - contentWidth + 1
	}
}
