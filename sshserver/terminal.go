package sshserver

import (
	"context"
	"errors"
	"io"
	"time"

	gliderssh "github.com/gliderlabs/ssh"

	"pkt.systems/pslog"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/internal/canvas"
	"pkt.systems/retroterm/schema"
)

// terminalSession drives one core session over an interactive PTY.
type terminalSession struct {
	rw      io.ReadWriter
	session *core.Session
	grid    *canvas.Grid
	screen  *screen
	logger  pslog.Logger
}

func newTerminalSession(rw io.ReadWriter, session *core.Session, logger pslog.Logger) *terminalSession {
	cfg := session.Config()
	return &terminalSession{
		rw:      rw,
		session: session,
		grid:    canvas.NewGrid(80, 24, cfg.Font),
		screen:  newScreen(rw),
		logger:  logger,
	}
}

func (t *terminalSession) log() pslog.Logger {
	if t.logger == nil {
		return pslog.Ctx(context.Background())
	}
	return t.logger
}

func (t *terminalSession) SetSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	t.grid.Resize(width, height)
}

// Run boots the session and services input, resizes, output changes and the
// cursor blink until the client leaves or ctx ends.
func (t *terminalSession) Run(ctx context.Context, winCh <-chan gliderssh.Window) error {
	if ctx == nil {
		ctx = context.Background()
	}
	t.screen.EnterAltScreen()
	defer t.screen.ExitAltScreen()

	if err := t.session.Boot(t.session.Now()); err != nil {
		t.log().Warn("ssh boot failed", "err", err)
	}
	t.log().Info("tui session start", "width", t.grid.Cols(), "height", t.grid.Rows())

	inputs := make(chan inputEvent, 16)
	go readInput(t.rw, inputs)

	blink := time.NewTicker(t.session.Config().CursorBlink)
	defer blink.Stop()

	if err := t.render(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-inputs:
			if !ok {
				return nil
			}
			if t.handleInput(ev) {
				return nil
			}
		case win, ok := <-winCh:
			if ok {
				t.SetSize(win.Width, win.Height)
				t.log().Debug("tui resize", "width", t.grid.Cols(), "height", t.grid.Rows())
			}
		case <-t.session.Changes():
		case <-blink.C:
			t.session.ToggleCursor()
		}
		if err := t.render(); err != nil {
			return err
		}
	}
}

// handleInput applies one event and reports whether the client asked to leave.
func (t *terminalSession) handleInput(ev inputEvent) bool {
	switch ev.kind {
	case inputEOF:
		return true
	case inputKey:
		err := t.session.HandleKey(ev.key)
		if err != nil && !errors.Is(err, schema.ErrInputDisabled) {
			t.log().Debug("tui key rejected", "err", err)
		}
	case inputWheel:
		t.session.Scroll(ev.delta)
	case inputClick:
		x, y := t.grid.CellCenter(ev.col, ev.row)
		if url, ok := t.session.FindLink(x, y); ok {
			t.log().Info("tui link opened", "url", url)
			t.session.Append("Opening "+url, schema.LineSystem, "")
		}
	}
	return false
}

func (t *terminalSession) render() error {
	t.session.Render(t.grid)
	t.grid.ApplyLinks(t.session.Links())
	return t.screen.Render(t.grid.Frame())
}
