// Package eventlog implements the append-only record of edits and cursor
// moves a buffer replays for undo/redo, plus the named cut-buffer
// registers actions cut and paste through.
package eventlog

import "github.com/kisielk-labs/scribe/cursor"

// Kind tags the variant of an Event.
type Kind int

const (
	InsertKind Kind = iota
	DeleteKind
	MoveCursorKind
	BatchKind
)

// Event is one entry of the log. Insert/Delete carry the exact text
// affected so Delete can be validated before it mutates anything and so
// both invert cleanly without consulting the tree.
type Event struct {
	Kind     Kind
	Offset   int
	Text     string
	CursorID int
	From, To cursor.ViewPosition
	Sub      []Event
}

func NewInsert(offset int, text string) Event {
	return Event{Kind: InsertKind, Offset: offset, Text: text}
}

func NewDelete(offset int, text string) Event {
	return Event{Kind: DeleteKind, Offset: offset, Text: text}
}

func NewMoveCursor(id int, from, to cursor.ViewPosition) Event {
	return Event{Kind: MoveCursorKind, CursorID: id, From: from, To: to}
}

func NewBatch(events []Event) Event {
	return Event{Kind: BatchKind, Sub: events}
}

// Invert returns the event that undoes e: Insert becomes a Delete of the
// same text at the same offset and vice versa, MoveCursor swaps its
// endpoints, and Batch inverts each sub-event in reverse order.
func (e Event) Invert() Event {
	switch e.Kind {
	case InsertKind:
		return NewDelete(e.Offset, e.Text)
	case DeleteKind:
		return NewInsert(e.Offset, e.Text)
	case MoveCursorKind:
		return NewMoveCursor(e.CursorID, e.To, e.From)
	case BatchKind:
		inv := make([]Event, len(e.Sub))
		for i, sub := range e.Sub {
			inv[len(e.Sub)-1-i] = sub.Invert()
		}
		return NewBatch(inv)
	default:
		return e
	}
}

// asMoveCursor reports whether e is a MoveCursor event (a Batch is never
// one, whatever it contains), which is what the coalescing heuristic in
// Log.Append looks for.
func (e Event) asMoveCursor() (Event, bool) {
	if e.Kind == MoveCursorKind {
		return e, true
	}
	return Event{}, false
}
