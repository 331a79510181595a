package editorstate

import (
	"github.com/kisielk-labs/scribe/cursor"
	"github.com/kisielk-labs/scribe/piecetree"
	"github.com/kisielk-labs/scribe/view"
)

// RemapStoredPosition relocates a view position saved in a workspace
// file against the diff between the file as saved and the file as it
// is now on disk, per spec.md §6: a stored source byte that falls
// inside a changed range is relocated to the start of that range,
// then re-resolved against the freshly-built layout. A position with
// no source byte (purely injected content) cannot be saved meaningfully
// and is returned unchanged.
func RemapStoredPosition(pos cursor.ViewPosition, diff piecetree.Diff, newLayout *view.Layout) cursor.ViewPosition {
	if !pos.HasSourceByte() {
		return pos
	}
	byteOffset := pos.SourceByte
	for _, r := range diff.ByteRanges {
		if byteOffset >= r.Start && byteOffset < r.End {
			byteOffset = r.Start
			break
		}
	}
	if line, col, ok := newLayout.SourceByteToViewPosition(byteOffset); ok {
		return cursor.ViewPosition{ViewLine: line, Column: col, SourceByte: byteOffset}
	}
	return cursor.ViewPosition{ViewLine: pos.ViewLine, Column: pos.Column, SourceByte: -1}
}
