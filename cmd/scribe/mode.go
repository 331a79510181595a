package main

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/nsf/termbox-go"
)

// Mode is one of the editor's input modes: normal, insert, or command
// line. Exactly one is active at a time, the way the teacher's
// editorMode interface drives onKey dispatch.
type Mode interface {
	OnKey(ev *termbox.Event)
	Exit()
	StatusLine() string
}

// parseReps parses a normal-mode action multiplier, defaulting to 1 for
// an empty string.
func parseReps(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// normalMode dispatches vi-style single-key commands, accumulating
// leading digits as a repeat count the way the teacher's normalMode
// does.
type normalMode struct {
	app  *App
	reps string
}

func newNormalMode(app *App) *normalMode {
	return &normalMode{app: app}
}

func (m *normalMode) StatusLine() string {
	if m.reps != "" {
		return m.reps
	}
	return "Normal"
}

func (m *normalMode) Exit() {}

func (m *normalMode) OnKey(ev *termbox.Event) {
	a := m.app

	if ('0' < ev.Ch && ev.Ch <= '9') || (ev.Ch == '0' && len(m.reps) > 0) {
		m.reps += string(ev.Ch)
		return
	}
	reps := parseReps(m.reps)
	m.reps = ""

	if ev.Ch == 0 {
		switch ev.Key {
		case termbox.KeyCtrlR:
			for i := 0; i < reps; i++ {
				a.redo()
			}
		case termbox.KeyCtrlW:
			a.splitVertically()
		case termbox.KeyCtrlX:
			a.killActiveView()
		case termbox.KeyCtrlS:
			a.splitHorizontally()
		case termbox.KeyCtrlD:
			a.movePage(true)
		case termbox.KeyCtrlU:
			a.movePage(false)
		case termbox.KeyCtrlO:
			a.jumpBack()
		case termbox.KeyCtrlI:
			a.jumpForward()
		case termbox.KeyCtrlN:
			a.focusNext()
		case termbox.KeyCtrlP:
			a.focusPrev()
		case termbox.KeyArrowLeft:
			for i := 0; i < reps; i++ {
				a.moveHorizontal(-1)
			}
		case termbox.KeyArrowRight:
			for i := 0; i < reps; i++ {
				a.moveHorizontal(1)
			}
		case termbox.KeyArrowUp:
			for i := 0; i < reps; i++ {
				a.moveVertical(-1)
			}
		case termbox.KeyArrowDown:
			for i := 0; i < reps; i++ {
				a.moveVertical(1)
			}
		}
		return
	}

	switch ev.Ch {
	case 'h':
		a.moveHorizontal(-reps)
	case 'l':
		a.moveHorizontal(reps)
	case 'j':
		a.moveVertical(reps)
	case 'k':
		a.moveVertical(-reps)
	case 'w':
		for i := 0; i < reps; i++ {
			a.moveWordRight()
		}
	case 'b':
		for i := 0; i < reps; i++ {
			a.moveWordLeft()
		}
	case '0':
		a.moveLineStart()
	case '$':
		a.moveLineEnd()
	case 'G':
		a.moveDocumentEnd()
	case 'x':
		for i := 0; i < reps; i++ {
			a.deleteForward()
		}
	case 'u':
		for i := 0; i < reps; i++ {
			a.undo()
		}
	case 'p':
		a.paste()
	case 'v':
		a.pane().cur.SetAnchor(a.pane().cur.Position)
	case 'y':
		a.yankSelection()
	case 'a':
		a.moveHorizontal(1)
		a.setMode(newInsertMode(a, reps))
	case 'i':
		a.setMode(newInsertMode(a, reps))
	case 'A':
		a.moveLineEnd()
		a.setMode(newInsertMode(a, reps))
	case ':':
		a.setMode(newCommandMode(a, m))
	}
}

// insertMode funnels printable runes into insertRune, mirroring the
// teacher's insertMode but through scribe's batched insert action.
type insertMode struct {
	app  *App
	reps int
}

func newInsertMode(app *App, reps int) *insertMode {
	return &insertMode{app: app, reps: reps}
}

func (m *insertMode) StatusLine() string { return "Insert" }

// Exit does nothing. Unlike the teacher's insertMode.exit, it does not
// repeat the just-typed text: the reps count that opened the mode is
// stored but never used, since a whole insert session is a run of
// single-rune inserts that is not tracked as one action.
func (m *insertMode) Exit() {}

func (m *insertMode) OnKey(ev *termbox.Event) {
	a := m.app
	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		a.setMode(newNormalMode(a))
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		a.deleteBackward()
	case termbox.KeyDelete:
		a.deleteForward()
	case termbox.KeySpace:
		a.insertRune(' ')
	case termbox.KeyEnter:
		a.insertRune('\n')
	case termbox.KeyTab:
		a.insertRune('\t')
	default:
		if ev.Ch != 0 {
			a.insertRune(ev.Ch)
		}
	}
}

// commandMode is the ':'-prefixed ex-style command line.
type commandMode struct {
	app    *App
	parent Mode
	buffer bytes.Buffer
}

func newCommandMode(app *App, parent Mode) *commandMode {
	return &commandMode{app: app, parent: parent}
}

func (m *commandMode) StatusLine() string { return ":" + m.buffer.String() }

func (m *commandMode) Exit() {}

func (m *commandMode) OnKey(ev *termbox.Event) {
	a := m.app
	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		a.setMode(m.parent)
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		b := m.buffer.Bytes()
		if len(b) > 0 {
			m.buffer.Truncate(len(b) - 1)
		}
	case termbox.KeyEnter:
		cmd := m.buffer.String()
		if err := a.execCommand(cmd); err != nil {
			a.setStatus("error: %s", err)
		} else if !a.quitFlag {
			a.setStatus(":%s", cmd)
		}
		a.setMode(m.parent)
	case termbox.KeySpace:
		m.buffer.WriteRune(' ')
	default:
		if ev.Ch != 0 {
			m.buffer.WriteRune(ev.Ch)
		}
	}
}

// execCommand is the teacher's execCommand, generalized from a single
// active buffer-view pair to scribe's App.
func (a *App) execCommand(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "q":
		if a.hasUnsavedBuffers() {
			return fmt.Errorf("unsaved changes, use :q! to discard")
		}
		a.quit()
		return nil
	case "q!":
		a.quit()
		return nil
	case "w":
		nb := a.activeBuffer()
		switch len(args) {
		case 0:
			if nb.path == "" {
				return fmt.Errorf("no file name")
			}
			return saveBuffer(nb, nb.path)
		case 1:
			return saveBuffer(nb, args[0])
		default:
			return fmt.Errorf("too many arguments to :w")
		}
	case "e":
		if len(args) != 1 {
			return fmt.Errorf("usage: :e <file>")
		}
		id, err := a.newBufferFromFile(args[0])
		if err != nil {
			return err
		}
		a.active.Leaf().Buffer = id
		a.Resize()
		return nil
	}

	if line, ok := gotoLineCommand(cmd); ok {
		return a.jumpToLine(line)
	}
	return fmt.Errorf("unknown command: %s", cmd)
}
