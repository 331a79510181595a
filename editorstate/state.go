// Package editorstate glues the core packages into the per-buffer state
// the spec calls EditorState, plus the split-view tree and position
// history that sit above it.
package editorstate

import (
	"fmt"
	"strings"

	"github.com/kisielk-labs/scribe/cursor"
	"github.com/kisielk-labs/scribe/eventlog"
	"github.com/kisielk-labs/scribe/piecetree"
	"github.com/kisielk-labs/scribe/scerr"
	"github.com/kisielk-labs/scribe/stringpool"
	"github.com/kisielk-labs/scribe/view"
	"github.com/kisielk-labs/scribe/viewport"
)

// BufferID names a buffer in the editor's buffer map.
type BufferID int

// Overlay is a diagnostic or virtual-text span addressed by source byte
// range, per spec.md §6's renderer contract.
type Overlay struct {
	Range   piecetree.ByteRange
	Kind    string
	Message string
}

// State is one buffer's exclusive owner of its tree, history, cursors,
// viewport, and cached layout — the spec's EditorState.
type State struct {
	pool *stringpool.Pool
	tree *piecetree.Tree

	Log       *eventlog.Log
	Cursors   *cursor.Cursors
	Registers eventlog.Registers
	Viewport  viewport.Viewport
	Config    Config
	Overlays  []Overlay

	layout           view.Layout
	generation       int
	layoutGeneration int
	status           string
}

// New builds a fresh EditorState over tree, with a single primary
// cursor at the origin and an empty history.
func New(pool *stringpool.Pool, tree *piecetree.Tree, cfg Config) *State {
	s := &State{
		pool:      pool,
		tree:      tree,
		Log:       eventlog.NewLog(),
		Cursors:   cursor.NewCursors(),
		Registers: eventlog.NewRegisters(),
		Config:    cfg,
	}
	s.layoutGeneration = -1
	return s
}

// Tree returns the buffer's current immutable root.
func (s *State) Tree() *piecetree.Tree {
	return s.tree
}

// Generation is the count of tree-mutating edits applied so far; a
// layout cache is stale whenever its recorded generation differs from
// this (spec.md §7's LayoutCacheStale, resolved internally here rather
// than surfaced).
func (s *State) Generation() int {
	return s.generation
}

// SetStatus mirrors the teacher's Editor.SetStatus: formatted text for
// the render layer, never written to stdout from inside the core.
func (s *State) SetStatus(format string, args ...interface{}) {
	s.status = fmt.Sprintf(format, args...)
}

func (s *State) Status() string {
	return s.status
}

// Layout returns the current view of the buffer, rebuilding it first if
// the tree has changed since it was last built or InvalidateLayout has
// been called. A viewport resize alone is not detected.
func (s *State) Layout() *view.Layout {
	if s.layoutGeneration != s.generation {
		s.rebuildLayout()
	}
	return &s.layout
}

func (s *State) rebuildLayout() {
	text, err := s.tree.GetTextRange(0, s.tree.Len())
	if err != nil {
		text = nil
	}
	tokens := []view.Token{view.NewText(string(text), 0, view.Style{}, false)}
	s.layout = view.Build(tokens, view.BuildOptions{
		LineWrapEnabled: s.Config.LineWrapEnabled,
		ViewportWidth:   s.Viewport.Width,
		GutterWidth:     s.Config.GutterWidth,
		TabWidth:        s.Config.TabWidth,
		SourceRange:     piecetree.ByteRange{Start: 0, End: s.tree.Len()},
	})
	s.layoutGeneration = s.generation
	s.Cursors.AdjustForEdit(&s.layout)
}

// InvalidateLayout forces the next Layout call to rebuild, for callers
// that resize the viewport without an intervening edit.
func (s *State) InvalidateLayout() {
	s.layoutGeneration = -1
}

// Apply implements eventlog.Applier: it validates e against the current
// tree before mutating anything, so a rejected event (per spec.md §7's
// EventRejected) leaves the tree, cursors, and log all untouched.
func (s *State) Apply(e eventlog.Event) error {
	tree, moves, err := s.applyToTree(s.tree, e, nil)
	if err != nil {
		return err
	}
	s.tree = tree
	s.generation++
	for _, m := range moves {
		if c, ok := s.Cursors.Get(m.CursorID); ok {
			c.Position = m.To
		}
	}
	return nil
}

func (s *State) applyToTree(tree *piecetree.Tree, e eventlog.Event, moves []eventlog.Event) (*piecetree.Tree, []eventlog.Event, error) {
	switch e.Kind {
	case eventlog.InsertKind:
		loc := s.pool.Push([]byte(e.Text), false, true)
		nt, err := tree.Insert(e.Offset, loc, 0, len(e.Text), strings.Count(e.Text, "\n"), true)
		if err != nil {
			return tree, moves, scerr.EventRejected("insert at %d: %v", e.Offset, err)
		}
		return nt, moves, nil
	case eventlog.DeleteKind:
		end := e.Offset + len(e.Text)
		got, err := tree.GetTextRange(e.Offset, end)
		if err != nil || string(got) != e.Text {
			return tree, moves, scerr.EventRejected("delete text %q does not match document at %d", e.Text, e.Offset)
		}
		nt, err := tree.Delete(e.Offset, end)
		if err != nil {
			return tree, moves, scerr.EventRejected("delete [%d,%d): %v", e.Offset, end, err)
		}
		return nt, moves, nil
	case eventlog.MoveCursorKind:
		return tree, append(moves, e), nil
	case eventlog.BatchKind:
		for _, sub := range e.Sub {
			var err error
			tree, moves, err = s.applyToTree(tree, sub, moves)
			if err != nil {
				return tree, moves, err
			}
		}
		return tree, moves, nil
	default:
		return tree, moves, nil
	}
}
