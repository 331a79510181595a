package main

import (
	"github.com/kisielk-labs/scribe/cursor"
	"github.com/kisielk-labs/scribe/editorstate"
	"github.com/kisielk-labs/scribe/eventlog"
	"github.com/kisielk-labs/scribe/view"
	"github.com/kisielk-labs/scribe/viewport"
)

// pane bundles the bits an action needs: the buffer's core state, the
// split-local viewport it's drawn through, and the primary cursor.
type pane struct {
	nb  *namedBuffer
	vp  *viewport.Viewport
	cur *cursor.Cursor
	id  int
}

func (a *App) pane() pane {
	nb := a.activeBuffer()
	leaf := a.active.Leaf()
	return pane{nb: nb, vp: &leaf.Viewport, cur: nb.state.Cursors.Primary(), id: nb.state.Cursors.PrimaryID()}
}

// move appends a MoveCursor event for the pane's cursor to new, then
// scrolls the viewport to keep it visible — the uniform tail end of
// every navigation action below.
func (p pane) move(new cursor.ViewPosition) {
	old := p.cur.Position
	p.nb.state.Log.Append(eventlog.NewMoveCursor(p.id, old, new), p.nb.state)
	viewport.EnsureVisibleInLayout(p.vp, p.cur.Position, p.nb.state.Layout(), p.nb.state.Config.GutterWidth, p.nb.state.Config.ScrollThreshold)
}

func (p pane) layout() *view.Layout { return p.nb.state.Layout() }

// moveHorizontal, moveVertical, etc. are the scribe equivalents of the
// teacher's view.moveCursorForward/Backward/NextLine/PrevLine, each
// just a viewport navigation call followed by the uniform move+scroll
// tail above — the teacher's version folds that tail into
// moveCursorTo; here it's factored into pane.move since every caller
// needs it.
func (a *App) moveHorizontal(delta int) {
	p := a.pane()
	l := p.layout()
	new := viewport.MoveHorizontal(l, p.cur.Position.ViewLine, p.cur.Position.Column, delta, p.nb.state.Config.WrapAroundAtBufferEdges)
	p.move(new)
}

func (a *App) moveVertical(delta int) {
	p := a.pane()
	l := p.layout()
	col := p.cur.Position.Column
	if p.cur.HasPreferredColumn {
		col = p.cur.PreferredColumn
	}
	new := viewport.MoveVertical(l, p.cur.Position.ViewLine, col, delta)
	p.move(new)
}

func (a *App) movePage(down bool) {
	p := a.pane()
	l := p.layout()
	new := viewport.MovePage(l, p.cur.Position.ViewLine, p.cur.Position.Column, p.vp.VisibleLineCount(), down)
	p.move(new)
}

func (a *App) moveLineStart() {
	p := a.pane()
	new := viewport.MoveLineStart(p.layout(), p.cur.Position.ViewLine, p.cur.Position.Column)
	p.move(new)
}

func (a *App) moveLineEnd() {
	p := a.pane()
	new := viewport.MoveLineEnd(p.layout(), p.cur.Position.ViewLine)
	p.move(new)
}

func (a *App) moveWordLeft() {
	p := a.pane()
	new := viewport.MoveWordLeft(p.layout(), p.cur.Position.ViewLine, p.cur.Position.Column)
	p.move(new)
}

func (a *App) moveWordRight() {
	p := a.pane()
	new := viewport.MoveWordRight(p.layout(), p.cur.Position.ViewLine, p.cur.Position.Column)
	p.move(new)
}

func (a *App) moveDocumentStart() {
	p := a.pane()
	p.move(cursor.ViewPosition{ViewLine: 0, Column: 0, SourceByte: 0})
}

func (a *App) moveDocumentEnd() {
	p := a.pane()
	l := p.layout()
	if len(l.Lines) == 0 {
		return
	}
	last := len(l.Lines) - 1
	new := viewport.MoveLineEnd(l, last)
	p.move(new)
}

func (a *App) scroll(delta int) {
	p := a.pane()
	viewport.ScrollView(p.vp, p.layout(), delta)
}

// insertRune inserts r at the cursor's source byte and advances the
// cursor past it, batched as one undo step — the core's own Insert
// event leaves the cursor remapped to the *start* of what it just
// inserted (per spec.md §4.6, a cursor's source byte is a fixed
// document location), so the front end must explicitly move it
// forward the way a user expects while typing.
func (a *App) insertRune(r rune) {
	p := a.pane()
	offset, ok := p.cur.SourceByte()
	if !ok {
		a.setStatus("cannot edit: cursor is not on source content")
		return
	}
	text := string(r)
	old := p.cur.Position
	batch := eventlog.NewBatch([]eventlog.Event{
		eventlog.NewInsert(offset, text),
		eventlog.NewMoveCursor(p.id, old, cursor.ViewPosition{SourceByte: offset + len(text)}),
	})
	if err := p.nb.state.Log.Append(batch, p.nb.state); err != nil {
		a.setStatus("insert rejected: %v", err)
		return
	}
	p.nb.dirty = true
	// Layout() must run before EnsureVisibleInLayout reads p.cur.Position:
	// the MoveCursor half of the batch only set SourceByte, and it's
	// Layout's lazy rebuild that resolves ViewLine/Column for it.
	layout := p.nb.state.Layout()
	viewport.EnsureVisibleInLayout(p.vp, p.cur.Position, layout, p.nb.state.Config.GutterWidth, p.nb.state.Config.ScrollThreshold)
}

// deleteRange deletes [start, end) and leaves the cursor at start,
// batched the same way as insertRune.
func (a *App) deleteRange(start, end int) {
	if end <= start {
		return
	}
	p := a.pane()
	text, err := p.nb.state.Tree().GetTextRange(start, end)
	if err != nil {
		return
	}
	old := p.cur.Position
	batch := eventlog.NewBatch([]eventlog.Event{
		eventlog.NewDelete(start, string(text)),
		eventlog.NewMoveCursor(p.id, old, cursor.ViewPosition{SourceByte: start}),
	})
	if err := p.nb.state.Log.Append(batch, p.nb.state); err != nil {
		a.setStatus("delete rejected: %v", err)
		return
	}
	p.nb.dirty = true
	layout := p.nb.state.Layout()
	viewport.EnsureVisibleInLayout(p.vp, p.cur.Position, layout, p.nb.state.Config.GutterWidth, p.nb.state.Config.ScrollThreshold)
}

// deleteBackward is backspace: delete the rune before the cursor.
func (a *App) deleteBackward() {
	p := a.pane()
	offset, ok := p.cur.SourceByte()
	if !ok || offset == 0 {
		return
	}
	start := offset - 1
	for start > 0 && !utf8RuneStart(p.nb.state, start) {
		start--
	}
	a.deleteRange(start, offset)
}

// deleteForward is the 'x' / Delete command: delete the rune under the
// cursor.
func (a *App) deleteForward() {
	p := a.pane()
	offset, ok := p.cur.SourceByte()
	if !ok || offset >= p.nb.state.Tree().Len() {
		return
	}
	end := offset + 1
	for end < p.nb.state.Tree().Len() && !utf8RuneStart(p.nb.state, end) {
		end++
	}
	a.deleteRange(offset, end)
}

func (a *App) undo() {
	p := a.pane()
	if err := p.nb.state.Log.Undo(p.nb.state); err != nil {
		a.setStatus("%s", err)
		return
	}
	layout := p.nb.state.Layout()
	viewport.EnsureVisibleInLayout(p.vp, p.cur.Position, layout, p.nb.state.Config.GutterWidth, p.nb.state.Config.ScrollThreshold)
}

func (a *App) redo() {
	p := a.pane()
	if err := p.nb.state.Log.Redo(p.nb.state); err != nil {
		a.setStatus("%s", err)
		return
	}
	layout := p.nb.state.Layout()
	viewport.EnsureVisibleInLayout(p.vp, p.cur.Position, layout, p.nb.state.Config.GutterWidth, p.nb.state.Config.ScrollThreshold)
}

// yankSelection copies the primary cursor's selection into register '1'
// (rotating the numbered ring) and clears the selection — scribe's
// stand-in for the teacher's yank/kill-buffer dance, now backed by
// eventlog.Registers. With no selection, or a selection end that has no
// source byte, it does nothing; pasting is the separate paste action.
func (a *App) yankSelection() {
	p := a.pane()
	start, end, ok := p.cur.SelectionRange()
	if !ok {
		return
	}
	sb, sok := start.HasSourceByte(), end.HasSourceByte()
	if !sok || !sb {
		return
	}
	text, err := p.nb.state.Tree().GetTextRange(start.SourceByte, end.SourceByte)
	if err != nil {
		return
	}
	p.nb.state.Registers.Yank(string(text))
	p.cur.ClearSelection()
}

func (a *App) paste() {
	p := a.pane()
	text := p.nb.state.Registers.Get('1')
	if text == "" {
		return
	}
	offset, ok := p.cur.SourceByte()
	if !ok {
		return
	}
	old := p.cur.Position
	batch := eventlog.NewBatch([]eventlog.Event{
		eventlog.NewInsert(offset, text),
		eventlog.NewMoveCursor(p.id, old, cursor.ViewPosition{SourceByte: offset + len(text)}),
	})
	if err := p.nb.state.Log.Append(batch, p.nb.state); err == nil {
		p.nb.dirty = true
	}
	layout := p.nb.state.Layout()
	viewport.EnsureVisibleInLayout(p.vp, p.cur.Position, layout, p.nb.state.Config.GutterWidth, p.nb.state.Config.ScrollThreshold)
}

// jumpToLine implements the ':123' goto-line command (spec.md §4.5),
// recording the jump origin in position history first.
func (a *App) jumpToLine(line int) error {
	p := a.pane()
	a.activeHistory().Push(p.cur.Position)
	offset, err := p.nb.state.Tree().LineColToPosition(line-1, 0)
	if err != nil {
		return err
	}
	vl, col, ok := p.nb.state.Layout().SourceByteToViewPosition(offset)
	if !ok {
		return nil
	}
	p.move(cursor.ViewPosition{ViewLine: vl, Column: col, SourceByte: offset})
	return nil
}

// jumpBack and jumpForward drive Back/Forward (spec.md §6) through the
// per-buffer PositionHistory.
func (a *App) jumpBack() {
	p := a.pane()
	if pos, ok := a.activeHistory().Back(p.cur.Position); ok {
		p.move(pos)
	}
}

func (a *App) jumpForward() {
	p := a.pane()
	if pos, ok := a.activeHistory().Forward(p.cur.Position); ok {
		p.move(pos)
	}
}

// utf8RuneStart reports whether offset begins a UTF-8 rune, so
// deleteBackward/deleteForward never split a multi-byte character.
func utf8RuneStart(s *editorstate.State, offset int) bool {
	b, err := s.Tree().GetTextRange(offset, offset+1)
	if err != nil || len(b) == 0 {
		return true
	}
	return b[0]&0xC0 != 0x80
}
