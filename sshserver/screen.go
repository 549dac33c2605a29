package sshserver

import (
	"io"
)

type screen struct {
	out io.Writer
}

func newScreen(out io.Writer) *screen {
	return &screen{out: out}
}

// EnterAltScreen switches to the alternate buffer and turns on SGR mouse
// reporting so clicks and the wheel reach the session.
func (s *screen) EnterAltScreen() {
	_, _ = io.WriteString(s.out, "\x1b[?1049h\x1b[H\x1b[2J\x1b[?1000h\x1b[?1006h")
}

func (s *screen) ExitAltScreen() {
	_, _ = io.WriteString(s.out, "\x1b[?1000l\x1b[?1006l\x1b[0m\x1b[?1049l\x1b[?25h")
}

// Render writes one full frame.
func (s *screen) Render(frame string) error {
	_, err := io.WriteString(s.out, frame)
	return err
}
