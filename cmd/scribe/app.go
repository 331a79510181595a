// Command scribe is a thin termbox+tulib terminal front-end that
// exercises the core's external interfaces (spec.md §6): it turns key
// presses into Actions, Actions into eventlog Events, and renders the
// Layout the core hands back. Everything terminal-specific — the cell
// grid, split compositing, cursor placement — lives here, never in the
// core packages, per spec.md §1's scope boundary.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kisielk-labs/scribe/editorstate"
	"github.com/nsf/termbox-go"
	"github.com/nsf/tulib"
)

// ErrQuit is returned from App.Loop when the user has asked to quit,
// mirroring the teacher's editor.ErrQuit sentinel.
var ErrQuit = fmt.Errorf("quit")

// App owns every buffer, the split layout, and the current input mode —
// the scribe analogue of the teacher's Editor struct, rebuilt on top of
// editorstate instead of the teacher's buffer/view packages.
type App struct {
	uiBuf tulib.Buffer

	buffers      map[editorstate.BufferID]*namedBuffer
	nextBufferID editorstate.BufferID
	histories    map[editorstate.BufferID]*editorstate.PositionHistory

	splits *editorstate.SplitTree
	active *editorstate.SplitTree

	mode Mode

	statusBuf bytes.Buffer
	quitFlag  bool

	Events chan termbox.Event
}

// NewApp opens filenames (or a single empty buffer if none are given)
// and builds a single-pane split layout focused on the first one,
// mirroring the teacher's NewEditor.
func NewApp(filenames []string) *App {
	a := &App{
		buffers:   map[editorstate.BufferID]*namedBuffer{},
		histories: map[editorstate.BufferID]*editorstate.PositionHistory{},
		Events:    make(chan termbox.Event, 20),
	}

	var first editorstate.BufferID
	for i, filename := range filenames {
		id, err := a.newBufferFromFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			continue
		}
		if i == 0 {
			first = id
		}
	}
	if len(a.buffers) == 0 {
		first = a.newEmptyBuffer("unnamed")
	}

	a.splits = editorstate.NewSplitLeaf(nil, &editorstate.SplitView{Buffer: first})
	a.active = a.splits
	a.mode = newNormalMode(a)
	return a
}

func (a *App) activeBuffer() *namedBuffer {
	return a.buffers[a.active.Leaf().Buffer]
}

func (a *App) activeState() *editorstate.State {
	return a.activeBuffer().state
}

func (a *App) activeHistory() *editorstate.PositionHistory {
	id := a.active.Leaf().Buffer
	h, ok := a.histories[id]
	if !ok {
		h = editorstate.NewPositionHistory(a.activeState().Config.PositionHistoryCapacity)
		a.histories[id] = h
	}
	return h
}

func (a *App) setStatus(format string, args ...interface{}) {
	a.statusBuf.Reset()
	fmt.Fprintf(&a.statusBuf, format, args...)
}

func (a *App) setMode(m Mode) {
	if a.mode != nil {
		a.mode.Exit()
	}
	a.mode = m
}

func (a *App) quit() {
	a.setStatus("Quit")
	a.quitFlag = true
}

func (a *App) hasUnsavedBuffers() bool {
	for _, b := range a.buffers {
		if !b.SyncedWithDisk() {
			return true
		}
	}
	return false
}

// splitVertically and splitHorizontally are the teacher's
// Editor.splitVertically/splitHorizontally, generalized to
// editorstate.SplitTree's Rect/Resize instead of tulib.Rect.
func (a *App) splitVertically() {
	if a.active.Rect.Width == 0 {
		return
	}
	leaf := a.active.Leaf()
	a.active.SplitVertically(&editorstate.SplitView{Buffer: leaf.Buffer, Viewport: leaf.Viewport})
	a.active = a.active.Left()
	a.Resize()
}

func (a *App) splitHorizontally() {
	if a.active.Rect.Height == 0 {
		return
	}
	leaf := a.active.Leaf()
	a.active.SplitHorizontally(&editorstate.SplitView{Buffer: leaf.Buffer, Viewport: leaf.Viewport})
	a.active = a.active.Top()
	a.Resize()
}

// killActiveView closes the active pane, collapsing its sibling up into
// the parent's slot, the way the teacher's killActiveView does —
// adapted to SplitTree.ReplaceWith instead of the teacher's manual
// field copy. A lone root pane can't be killed.
func (a *App) killActiveView() {
	sib := a.active.Sibling()
	if sib == nil {
		a.setStatus("cannot kill the only view")
		return
	}
	parent := a.active.Parent()
	parent.ReplaceWith(sib)
	a.active = parent.FirstLeafNode()
	a.Resize()
}

// focusNext and focusPrev move focus to the first pane of the nearest
// split neighbour after (right/below) or before (left/above) the active
// pane, trying a vertical neighbour first and a horizontal one second.
// Focus stays put when there is no such neighbour; it does not wrap
// around, and in nested layouts some panes are not reached this way.
func (a *App) focusNext() {
	if t := a.active.NearestVSplit(1); t != nil {
		a.active = t
		return
	}
	if t := a.active.NearestHSplit(1); t != nil {
		a.active = t
	}
}

func (a *App) focusPrev() {
	if t := a.active.NearestVSplit(-1); t != nil {
		a.active = t
		return
	}
	if t := a.active.NearestHSplit(-1); t != nil {
		a.active = t
	}
}

// Resize recomputes the split rectangles against the current terminal
// size, reserving the bottom row for the status/command line, per the
// teacher's Editor.Resize.
func (a *App) Resize() {
	a.uiBuf = tulib.TermboxBuffer()
	r := a.uiBuf.Rect
	r.Height--
	a.splits.Resize(editorstate.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
	// A buffer's Layout is built at one width (State.Viewport.Width),
	// shared by every pane showing it; the last pane visited wins. Two
	// splits of the same buffer at different widths is a real
	// limitation, accepted because spec.md's splits are a supplemental
	// feature, not a core guarantee.
	a.splits.Traverse(func(t *editorstate.SplitTree) {
		leaf := t.Leaf()
		s := a.buffers[leaf.Buffer].state
		s.Viewport.Width = leaf.Viewport.Width
		s.InvalidateLayout()
	})
}

// Loop consumes termbox events until a mode requests quit, mirroring
// the teacher's Editor.Loop consume-then-draw structure.
func (a *App) Loop() error {
	for {
		ev := <-a.Events
	consume:
		for {
			if err := a.handleEvent(&ev); err != nil {
				return err
			}
			select {
			case next := <-a.Events:
				ev = next
			default:
				break consume
			}
		}
		a.Draw()
		termbox.Flush()
	}
}

func (a *App) onSysKey(ev *termbox.Event) bool {
	switch ev.Key {
	case termbox.KeyCtrlQ:
		a.quit()
		return true
	}
	return false
}

func (a *App) handleEvent(ev *termbox.Event) error {
	switch ev.Type {
	case termbox.EventKey:
		a.setStatus("")
		if !a.onSysKey(ev) {
			a.mode.OnKey(ev)
		}
		if a.quitFlag {
			return ErrQuit
		}
	case termbox.EventResize:
		termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
		a.Resize()
	case termbox.EventError:
		return ev.Err
	}
	return nil
}
