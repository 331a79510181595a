package main

import (
	"os"

	"github.com/nsf/termbox-go"
)

func main() {
	if err := termbox.Init(); err != nil {
		panic(err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	app := NewApp(os.Args[1:])
	app.Resize()
	app.Draw()
	cx, cy := app.cursorScreenPosition()
	termbox.SetCursor(cx, cy)
	termbox.Flush()

	go func() {
		for {
			app.Events <- termbox.PollEvent()
		}
	}()

	if err := app.Loop(); err != ErrQuit {
		panic(err)
	}
}
