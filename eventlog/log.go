package eventlog

import "errors"

// ErrNothingToUndo and ErrNothingToRedo are returned when the log is
// already at one of its ends.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Applier mutates a buffer's state to reflect one Event. It is the
// caller's contract to validate the event against the current document
// (e.g. that a Delete's recorded text still matches what's at its
// offset) and return a rejection error without mutating anything if it
// doesn't — Log never touches the tree itself.
type Applier interface {
	Apply(e Event) error
}

// Log is a buffer's append-only history: entries up to pos have been
// applied; entries from pos on are a redo tail kept until the next
// Append truncates it.
type Log struct {
	entries []Event
	pos     int
}

func NewLog() *Log {
	return &Log{}
}

// Append validates and applies e via a, then records it. Appending after
// an undo discards the redo tail, per §4.7. A rejected event leaves both
// the applier's state (nothing was mutated, by the Applier contract) and
// the log untouched.
func (l *Log) Append(e Event, a Applier) error {
	if err := a.Apply(e); err != nil {
		return err
	}
	l.entries = l.entries[:l.pos]

	if merged, ok := l.tryMergeMoveCursor(e); ok {
		l.entries[len(l.entries)-1] = merged
	} else {
		l.entries = append(l.entries, e)
	}
	l.pos = len(l.entries)
	return nil
}

// tryMergeMoveCursor coalesces a MoveCursor event into the previous log
// entry when that entry is also a MoveCursor for the same cursor,
// keeping the original From and adopting the new To — the heuristic
// that keeps position history compact under e.g. held-arrow-key repeats.
func (l *Log) tryMergeMoveCursor(e Event) (Event, bool) {
	next, ok := e.asMoveCursor()
	if !ok || len(l.entries) == 0 {
		return Event{}, false
	}
	last, ok := l.entries[len(l.entries)-1].asMoveCursor()
	if !ok || last.CursorID != next.CursorID {
		return Event{}, false
	}
	last.To = next.To
	return last, true
}

// Undo inverts and applies the most recently applied event, moving pos
// back by one.
func (l *Log) Undo(a Applier) error {
	if l.pos == 0 {
		return ErrNothingToUndo
	}
	inv := l.entries[l.pos-1].Invert()
	if err := a.Apply(inv); err != nil {
		return err
	}
	l.pos--
	return nil
}

// Redo re-applies the next event in the redo tail, moving pos forward
// by one.
func (l *Log) Redo(a Applier) error {
	if l.pos == len(l.entries) {
		return ErrNothingToRedo
	}
	e := l.entries[l.pos]
	if err := a.Apply(e); err != nil {
		return err
	}
	l.pos++
	return nil
}

func (l *Log) CanUndo() bool { return l.pos > 0 }
func (l *Log) CanRedo() bool { return l.pos < len(l.entries) }

// Len reports the number of applied events (equivalently, the current
// undo depth).
func (l *Log) Len() int { return l.pos }
