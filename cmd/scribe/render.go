package main

import (
	"fmt"

	"github.com/kisielk-labs/scribe/editorstate"
	"github.com/kisielk-labs/scribe/view"
	"github.com/nsf/termbox-go"
	"github.com/nsf/tulib"
)

// Draw renders every pane's Layout into its own tulib.Buffer, composites
// the panes into the root buffer, walks the splits with fixEdges, and
// draws the bottom status line — the scribe equivalent of the teacher's
// Editor.Draw/compositeRecursively/fixEdges.
func (a *App) Draw() {
	a.splits.Traverse(func(t *editorstate.SplitTree) {
		a.drawPane(t)
	})
	a.compositeRecursively(a.splits)
	a.fixEdges(a.splits)
	a.drawStatus()

	cx, cy := a.cursorScreenPosition()
	termbox.SetCursor(cx, cy)
}

// drawPane renders one leaf's visible lines into a freshly sized
// tulib.Buffer held on the pane's namedBuffer, grounded on the
// teacher's view.draw/drawContents.
func (a *App) drawPane(t *editorstate.SplitTree) {
	leaf := t.Leaf()
	nb := a.buffers[leaf.Buffer]
	rect := t.Rect
	if rect.Width <= 0 || rect.Height <= 0 {
		return
	}

	buf := tulib.NewBuffer(rect.Width, rect.Height)
	buf.Fill(buf.Rect, termbox.Cell{Ch: ' ', Fg: termbox.ColorDefault, Bg: termbox.ColorDefault})

	layout := nb.state.Layout()
	gutter := nb.state.Config.GutterWidth
	vp := &leaf.Viewport
	visible := vp.VisibleLineCount()

	for row := 0; row < visible && row < rect.Height; row++ {
		lineIdx := vp.TopViewLine + row
		if lineIdx < 0 || lineIdx >= len(layout.Lines) {
			continue
		}
		drawViewLine(&buf, &layout.Lines[lineIdx], row, gutter, vp.LeftColumn, lineIdx, layout)
	}

	nb.screenBuf = buf
}

// drawViewLine draws one already-wrapped, tab-expanded ViewLine, with
// an optional gutter line number, the way drawLine walks a teacher
// buffer.Line but over pre-flattened runes instead of raw bytes.
func drawViewLine(buf *tulib.Buffer, l *view.ViewLine, row, gutter, leftColumn, lineIdx int, layout *view.Layout) {
	if gutter > 0 && l.ShouldShowLineNumber() {
		label := fmt.Sprintf("%*d ", gutter-1, lineNumberFor(layout, lineIdx))
		for i, r := range label {
			if i >= gutter {
				break
			}
			buf.Set(i, row, termbox.Cell{Ch: r, Fg: termbox.ColorDefault, Bg: termbox.ColorDefault})
		}
	}

	runes := []rune(l.Text)
	col := 0
	screenX := gutter
	for i, r := range runes {
		if r == '\n' {
			break
		}
		if col < leftColumn {
			col++
			continue
		}
		x := screenX + (col - leftColumn)
		if x >= buf.Width {
			break
		}
		fg, bg := cellColors(l, i)
		buf.Set(x, row, termbox.Cell{Ch: r, Fg: fg, Bg: bg})
		col++
	}
}

func cellColors(l *view.ViewLine, i int) (termbox.Attribute, termbox.Attribute) {
	if i < len(l.CharHasStyle) && l.CharHasStyle[i] {
		s := l.CharStyles[i]
		return termbox.Attribute(s.Fg), termbox.Attribute(s.Bg)
	}
	return termbox.ColorDefault, termbox.ColorDefault
}

// lineNumberFor counts source newlines up to lineIdx's first mapped
// byte; used only for the gutter, so an unmapped (purely injected)
// line just repeats the previous number.
func lineNumberFor(layout *view.Layout, lineIdx int) int {
	n := 1
	for i := 0; i <= lineIdx && i < len(layout.Lines); i++ {
		if layout.Lines[i].LineStart == view.AfterSourceNewline {
			n++
		}
	}
	return n
}

func (a *App) compositeRecursively(t *editorstate.SplitTree) {
	if leaf := t.Leaf(); leaf != nil {
		nb := a.buffers[leaf.Buffer]
		a.uiBuf.Blit(tulib.Rect{X: t.Rect.X, Y: t.Rect.Y, Width: t.Rect.Width, Height: t.Rect.Height}, 0, 0, &nb.screenBuf)
		return
	}
	if left := t.Left(); left != nil {
		a.compositeRecursively(left)
		a.compositeRecursively(t.Right())
		splitter := t.Right().Rect
		splitter.X--
		a.uiBuf.Fill(tulib.Rect{X: splitter.X, Y: splitter.Y, Width: 1, Height: splitter.Height},
			termbox.Cell{Fg: termbox.AttrReverse, Bg: termbox.AttrReverse, Ch: '│'})
		return
	}
	if top := t.Top(); top != nil {
		a.compositeRecursively(top)
		a.compositeRecursively(t.Bottom())
	}
}

// fixEdges walks every split boundary after compositing, in the same
// order as the teacher's fixEdges, but draws nothing: no junction
// characters are placed where splitters meet, so border cells stay as
// compositeRecursively left them.
func (a *App) fixEdges(t *editorstate.SplitTree) {
	if left := t.Left(); left != nil {
		a.fixEdges(left)
		a.fixEdges(t.Right())
		return
	}
	if top := t.Top(); top != nil {
		a.fixEdges(top)
		a.fixEdges(t.Bottom())
	}
}

// drawStatus renders the bottom status line as plain text with each cell
// tagged AttrReverse|AttrBold, the way the teacher's drawStatus does —
// lipgloss's ANSI escape output and a termbox cell grid don't compose,
// since the escape bytes would land as garbage cells rather than being
// interpreted.
func (a *App) drawStatus() {
	r := a.uiBuf.Rect
	y := r.Height - 1

	nb := a.activeBuffer()
	name := nb.name
	if !nb.SyncedWithDisk() {
		name += " *"
	}
	text := fmt.Sprintf("  %s  %s", name, a.mode.StatusLine())
	if s := a.statusBuf.String(); s != "" {
		text = text + "  " + s
	}

	const attr = termbox.AttrReverse | termbox.AttrBold
	x := 0
	for _, rn := range text {
		if x >= r.Width {
			break
		}
		a.uiBuf.Set(x, y, termbox.Cell{Ch: rn, Fg: attr, Bg: attr})
		x++
	}
	for ; x < r.Width; x++ {
		a.uiBuf.Set(x, y, termbox.Cell{Ch: ' ', Fg: attr, Bg: attr})
	}
}

// cursorScreenPosition locates the active pane's primary cursor on the
// terminal grid, the scribe equivalent of the teacher's
// Editor.CursorPosition.
func (a *App) cursorScreenPosition() (int, int) {
	if _, ok := a.mode.(*commandMode); ok {
		return a.statusBuf.Len() + 1, a.uiBuf.Rect.Height - 1
	}

	p := a.pane()
	rect := a.active.Rect
	row := p.cur.Position.ViewLine - p.vp.TopViewLine
	col := p.cur.Position.Column - p.vp.LeftColumn + p.nb.state.Config.GutterWidth
	return rect.X + col, rect.Y + row
}
