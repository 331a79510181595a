package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kisielk-labs/scribe/editorstate"
	"github.com/kisielk-labs/scribe/piecetree"
	"github.com/kisielk-labs/scribe/stringpool"
	"github.com/nsf/tulib"
)

// namedBuffer pairs a buffer's core state with the bookkeeping the
// teacher's buffer.Buffer carries outside the core: its display name,
// its path on disk, and whether it has unsaved edits. screenBuf holds
// the pane's most recently rendered cells, the scribe analogue of the
// teacher's view.uiBuf.
type namedBuffer struct {
	state     *editorstate.State
	name      string
	path      string
	dirty     bool
	screenBuf tulib.Buffer
}

// SyncedWithDisk mirrors buffer.Buffer.SyncedWithDisk from the teacher.
func (b *namedBuffer) SyncedWithDisk() bool {
	return !b.dirty
}

// findBufferByFullPath is the teacher's Editor.findBufferByFullPath,
// generalized to scribe's BufferID-keyed map.
func (a *App) findBufferByFullPath(path string) (editorstate.BufferID, bool) {
	for id, b := range a.buffers {
		if b.path == path {
			return id, true
		}
	}
	return 0, false
}

func (a *App) getBufferByName(name string) (editorstate.BufferID, bool) {
	for id, b := range a.buffers {
		if b.name == name {
			return id, true
		}
	}
	return 0, false
}

// bufferName is the teacher's Editor.bufferName: disambiguate a display
// name against already-open buffers by appending "<N>".
func (a *App) bufferName(name string) string {
	if _, ok := a.getBufferByName(name); !ok {
		return name
	}
	for i := 2; i < 9999; i++ {
		candidate := fmt.Sprintf("%s <%d>", name, i)
		if _, ok := a.getBufferByName(candidate); !ok {
			return candidate
		}
	}
	panic("too many buffers opened with the same name")
}

// newEmptyBuffer builds an unnamed, zero-length buffer, the scribe
// analogue of buffer.NewEmptyBuffer.
func (a *App) newEmptyBuffer(name string) editorstate.BufferID {
	pool := stringpool.New()
	tree := piecetree.Empty(pool)
	state := editorstate.New(pool, tree, editorstate.DefaultConfig())
	id := a.nextBufferID
	a.nextBufferID++
	a.buffers[id] = &namedBuffer{state: state, name: a.bufferName(name)}
	return id
}

// newBufferFromFile reads filename into fresh Stored chunks and builds
// the initial tree, grounded on editor/buffer.go's newBuffer (chunked
// read, line-feed prescan) and Editor.newBufferFromFile's dedup-by-path
// and "(New file)" status for a missing path.
func (a *App) newBufferFromFile(filename string) (editorstate.BufferID, error) {
	fullpath, err := filepath.Abs(filename)
	if err != nil {
		return 0, fmt.Errorf("couldn't determine absolute path: %s", err)
	}
	if id, ok := a.findBufferByFullPath(fullpath); ok {
		return id, nil
	}

	data, err := os.ReadFile(fullpath)
	newFile := false
	if os.IsNotExist(err) {
		newFile = true
		data = nil
	} else if err != nil {
		return 0, err
	}

	pool := stringpool.New()
	var tree *piecetree.Tree
	if len(data) == 0 {
		tree = piecetree.Empty(pool)
	} else {
		const chunkSize = 64 * 1024
		var chunks []piecetree.LeafSpec
		for off := 0; off < len(data); off += chunkSize {
			end := off + chunkSize
			if end > len(data) {
				end = len(data)
			}
			part := data[off:end]
			loc := pool.Push(part, true, true)
			chunks = append(chunks, piecetree.LeafSpec{
				Location:    loc,
				Offset:      0,
				Bytes:       len(part),
				LineFeedCnt: strings.Count(string(part), "\n"),
				LFKnown:     true,
			})
		}
		tree = piecetree.NewFromChunks(pool, chunks)
	}

	state := editorstate.New(pool, tree, editorstate.DefaultConfig())
	id := a.nextBufferID
	a.nextBufferID++
	nb := &namedBuffer{state: state, name: a.bufferName(filename), path: fullpath}
	a.buffers[id] = nb
	if newFile {
		state.SetStatus("(New file)")
	}
	return id, nil
}

// saveBuffer writes a buffer's full contents to path, the external
// "writer" spec.md §6 leaves outside the core: GetTextRange(0, len)
// produces the bytes, this function is the disk-facing caller.
func saveBuffer(nb *namedBuffer, path string) error {
	data, err := nb.state.Tree().GetTextRange(0, nb.state.Tree().Len())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	nb.path = path
	nb.dirty = false
	return nil
}

// gotoLineCommand parses a bare line number typed at the ':' prompt,
// the teacher's execCommand fallback below its cmd switch.
func gotoLineCommand(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
