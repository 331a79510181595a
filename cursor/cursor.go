// Package cursor implements view-coordinate cursors and selections, and
// their remapping across edits to the underlying layout.
package cursor

import "github.com/kisielk-labs/scribe/view"

// ViewPosition is a position in view coordinates, with an optional
// back-reference to the source byte it was resolved from. SourceByte is -1
// when the position lives on purely injected content.
type ViewPosition struct {
	ViewLine   int
	Column     int
	SourceByte int
}

func (p ViewPosition) HasSourceByte() bool {
	return p.SourceByte >= 0
}

// Position2D is a (line, column) pair used for block-selection anchors.
type Position2D struct {
	Line, Column int
}

// SelectionMode distinguishes stream (character-wise) from block
// (rectangular) selections.
type SelectionMode int

const (
	SelectionNormal SelectionMode = iota
	SelectionBlock
)

// Cursor is one cursor in a buffer, with an optional selection.
type Cursor struct {
	Position             ViewPosition
	Anchor               ViewPosition
	HasAnchor            bool
	PreferredColumn      int
	HasPreferredColumn   bool
	SelectionMode        SelectionMode
	BlockAnchor          Position2D
	HasBlockAnchor       bool
	DeselectOnMove       bool
}

func New(pos ViewPosition) Cursor {
	return Cursor{Position: pos, DeselectOnMove: true}
}

func WithSelection(start, end ViewPosition) Cursor {
	return Cursor{Position: end, Anchor: start, HasAnchor: true, DeselectOnMove: true}
}

// Collapsed reports whether the cursor has no selection of any kind.
func (c *Cursor) Collapsed() bool {
	return !c.HasAnchor && !c.HasBlockAnchor
}

// SelectionRange returns the selection normalized into (start, end) in view
// order. ok is false when there is no active selection.
func (c *Cursor) SelectionRange() (start, end ViewPosition, ok bool) {
	if !c.HasAnchor {
		return ViewPosition{}, ViewPosition{}, false
	}
	a := c.Anchor
	if a.ViewLine < c.Position.ViewLine || (a.ViewLine == c.Position.ViewLine && a.Column <= c.Position.Column) {
		return a, c.Position, true
	}
	return c.Position, a, true
}

func (c *Cursor) SelectionStart() ViewPosition {
	if start, _, ok := c.SelectionRange(); ok {
		return start
	}
	return c.Position
}

func (c *Cursor) SelectionEnd() ViewPosition {
	if _, end, ok := c.SelectionRange(); ok {
		return end
	}
	return c.Position
}

// ClearSelection drops the selection, keeping only the cursor position.
func (c *Cursor) ClearSelection() {
	c.HasAnchor = false
	c.HasBlockAnchor = false
	c.SelectionMode = SelectionNormal
}

func (c *Cursor) SetAnchor(anchor ViewPosition) {
	c.Anchor = anchor
	c.HasAnchor = true
}

func (c *Cursor) StartBlockSelection(line, column int) {
	c.SelectionMode = SelectionBlock
	c.BlockAnchor = Position2D{Line: line, Column: column}
	c.HasBlockAnchor = true
}

func (c *Cursor) ClearBlockSelection() {
	c.SelectionMode = SelectionNormal
	c.HasBlockAnchor = false
}

// MoveTo moves the cursor, optionally extending the active selection.
func (c *Cursor) MoveTo(position ViewPosition, extendSelection bool) {
	if extendSelection {
		if !c.HasAnchor {
			c.Anchor = c.Position
			c.HasAnchor = true
		}
	} else {
		c.HasAnchor = false
		if c.SelectionMode == SelectionBlock {
			c.SelectionMode = SelectionNormal
			c.HasBlockAnchor = false
		}
	}
	c.Position = position
}

func (c *Cursor) SourceByte() (int, bool) {
	if c.Position.HasSourceByte() {
		return c.Position.SourceByte, true
	}
	return 0, false
}

func (c *Cursor) SetSourceByte(b int, ok bool) {
	if ok {
		c.Position.SourceByte = b
	} else {
		c.Position.SourceByte = -1
	}
}

// RemapAcrossEdit relocates the cursor's position after layout is rebuilt
// for an edit, per §4.6: a cursor anchored to a source byte is found in
// the new layout by that byte; a cursor on purely injected content
// (no source byte) keeps its view line/column, clamped into the new
// layout.
func (c *Cursor) RemapAcrossEdit(layout *view.Layout) {
	remapPosition(&c.Position, layout)
	if c.HasAnchor {
		remapPosition(&c.Anchor, layout)
	}
}

// Cursors is a multi-cursor collection with one distinguished primary.
// Ids are stable for the lifetime of a cursor: removing one never
// renumbers the others.
type Cursors struct {
	byID    map[int]*Cursor
	order   []int
	primary int
	nextID  int
}

// NewCursors returns a collection with a single primary cursor at the
// origin.
func NewCursors() *Cursors {
	cs := &Cursors{byID: map[int]*Cursor{}}
	cs.Add(New(ViewPosition{SourceByte: 0}))
	return cs
}

// Add inserts c and makes it the new primary cursor, per spec.md §4.6.
func (cs *Cursors) Add(c Cursor) int {
	id := cs.nextID
	cs.nextID++
	cs.byID[id] = &c
	cs.order = append(cs.order, id)
	cs.primary = id
	return id
}

// InsertWithID adds a cursor under a caller-chosen id, for callers
// restoring a previously removed primary (e.g. undo of a cursor split),
// and makes it the new primary cursor, matching Add.
func (cs *Cursors) InsertWithID(id int, c Cursor) {
	if _, exists := cs.byID[id]; !exists {
		cs.order = append(cs.order, id)
	}
	cs.byID[id] = &c
	if id >= cs.nextID {
		cs.nextID = id + 1
	}
	cs.primary = id
}

func (cs *Cursors) Get(id int) (*Cursor, bool) {
	c, ok := cs.byID[id]
	return c, ok
}

func (cs *Cursors) Primary() *Cursor {
	return cs.byID[cs.primary]
}

func (cs *Cursors) PrimaryID() int {
	return cs.primary
}

func (cs *Cursors) Len() int {
	return len(cs.order)
}

func (cs *Cursors) IsEmpty() bool {
	return len(cs.order) == 0
}

// Iter returns cursor ids in insertion order.
func (cs *Cursors) Iter() []int {
	out := make([]int, len(cs.order))
	copy(out, cs.order)
	return out
}

// Remove drops a cursor. If it was primary, the first remaining cursor
// (in insertion order) becomes primary. If it was the last cursor, a
// fresh one is recreated at the origin, since a buffer must always have
// at least one cursor.
func (cs *Cursors) Remove(id int) {
	if _, ok := cs.byID[id]; !ok {
		return
	}
	delete(cs.byID, id)
	for i, oid := range cs.order {
		if oid == id {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
	if len(cs.order) == 0 {
		cs.Add(New(ViewPosition{SourceByte: 0}))
		return
	}
	if cs.primary == id {
		cs.primary = cs.order[0]
	}
}

// AdjustForEdit remaps every cursor against the rebuilt layout.
func (cs *Cursors) AdjustForEdit(layout *view.Layout) {
	for _, c := range cs.byID {
		c.RemapAcrossEdit(layout)
	}
}

func remapPosition(p *ViewPosition, layout *view.Layout) {
	if p.HasSourceByte() {
		if line, col, ok := layout.SourceByteToViewPosition(p.SourceByte); ok {
			p.ViewLine, p.Column = line, col
			return
		}
	}
	if len(layout.Lines) == 0 {
		p.ViewLine, p.Column = 0, 0
		return
	}
	if p.ViewLine >= len(layout.Lines) {
		p.ViewLine = len(layout.Lines) - 1
	}
	lineLen := len(layout.Lines[p.ViewLine].CharMappings)
	if p.Column > lineLen {
		p.Column = lineLen
	}
}
