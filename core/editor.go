package core

import (
	"github.com/rivo/uniseg"
)

// lineEditor holds the input line. The cursor is a codepoint offset and
// always sits on a grapheme cluster boundary.
type lineEditor struct {
	buf    []rune
	cursor int
}

func (e *lineEditor) String() string { return string(e.buf) }

func (e *lineEditor) Cursor() int { return e.cursor }

func (e *lineEditor) Clear() {
	e.buf = e.buf[:0]
	e.cursor = 0
}

// SetString replaces the line and parks the cursor at the end.
func (e *lineEditor) SetString(value string) {
	e.buf = []rune(value)
	e.cursor = len(e.buf)
}

// SetState replaces the line and clamps cursor into range.
func (e *lineEditor) SetState(value string, cursor int) {
	e.buf = []rune(value)
	e.cursor = clampCursor(cursor, len(e.buf))
}

func (e *lineEditor) InsertRune(r rune) {
	e.buf = append(e.buf, 0)
	copy(e.buf[e.cursor+1:], e.buf[e.cursor:])
	e.buf[e.cursor] = r
	e.cursor++
}

func (e *lineEditor) Backspace() {
	if e.cursor == 0 {
		return
	}
	start := e.prevBoundary()
	e.buf = append(e.buf[:start], e.buf[e.cursor:]...)
	e.cursor = start
}

func (e *lineEditor) Delete() {
	if e.cursor >= len(e.buf) {
		return
	}
	end := e.nextBoundary()
	e.buf = append(e.buf[:e.cursor], e.buf[end:]...)
}

func (e *lineEditor) MoveLeft() {
	e.cursor = e.prevBoundary()
}

func (e *lineEditor) MoveRight() {
	e.cursor = e.nextBoundary()
}

func (e *lineEditor) MoveStart() { e.cursor = 0 }

func (e *lineEditor) MoveEnd() { e.cursor = len(e.buf) }

func (e *lineEditor) KillLineStart() {
	e.buf = append(e.buf[:0], e.buf[e.cursor:]...)
	e.cursor = 0
}

func (e *lineEditor) KillLineEnd() {
	e.buf = e.buf[:e.cursor]
}

func (e *lineEditor) DeleteWordBackward() {
	start := e.cursor
	for start > 0 && e.buf[start-1] == ' ' {
		start--
	}
	for start > 0 && e.buf[start-1] != ' ' {
		start--
	}
	e.buf = append(e.buf[:start], e.buf[e.cursor:]...)
	e.cursor = start
}

// boundaries returns the codepoint offsets of every grapheme cluster start,
// plus the line length.
func (e *lineEditor) boundaries() []int {
	out := []int{0}
	g := uniseg.NewGraphemes(string(e.buf))
	pos := 0
	for g.Next() {
		pos += len(g.Runes())
		out = append(out, pos)
	}
	return out
}

func (e *lineEditor) prevBoundary() int {
	prev := 0
	for _, b := range e.boundaries() {
		if b >= e.cursor {
			break
		}
		prev = b
	}
	return prev
}

func (e *lineEditor) nextBoundary() int {
	for _, b := range e.boundaries() {
		if b > e.cursor {
			return b
		}
	}
	return len(e.buf)
}

func clampCursor(cursor, n int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > n {
		return n
	}
	return cursor
}
