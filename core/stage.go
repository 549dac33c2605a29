package core

import (
	"pkt.systems/retroterm/schema"
)

// liveRow is the row an animation is drawing but has not committed yet.
type liveRow struct {
	text  string
	kind  schema.LineKind
	color string
}

// Stage is the session state a routine step may touch. Every method expects
// the session lock to be held; the Sequencer guarantees that for routines.
type Stage struct {
	buf   *LineBuffer
	state schema.TerminalState
	live  *liveRow
	scene *Scene
	links LinkIndex
	blink bool
}

// detached returns a copy that a render may resize and re-index freely.
func (st *Stage) detached() *Stage {
	cp := &Stage{
		buf:   st.buf.clone(),
		state: st.state,
		scene: st.scene,
		blink: st.blink,
	}
	if st.live != nil {
		live := *st.live
		cp.live = &live
	}
	return cp
}

func newStage(cfg schema.TerminalConfig) *Stage {
	buf := NewLineBuffer(cfg.MaxLines, cfg.ScrollCap)
	buf.SetFollowOutput(cfg.FollowOutput)
	buf.SetViewportWidth(cfg.ViewportWidth)
	buf.SetViewportHeight(cfg.ViewportHeight)
	return &Stage{
		buf:   buf,
		blink: true,
		state: schema.TerminalState{Mode: schema.InputNormal},
	}
}

// Buffer returns the line buffer.
func (s *Stage) Buffer() *LineBuffer { return s.buf }

// Commit appends a finished line to the buffer.
func (s *Stage) Commit(content string, kind schema.LineKind, color string) {
	s.buf.Append(content, kind, color)
}

// SetLive replaces the in-progress row.
func (s *Stage) SetLive(text string, kind schema.LineKind, color string) {
	s.live = &liveRow{text: text, kind: kind, color: color}
}

// ClearLive drops the in-progress row.
func (s *Stage) ClearLive() {
	s.live = nil
}

// ClearScreen empties the buffer, the live row and the link index.
func (s *Stage) ClearScreen() {
	s.buf.Clear()
	s.live = nil
	s.links.Clear()
}

// SetScene installs a full screen scene that replaces the scrollback view.
// A nil scene restores the scrollback.
func (s *Stage) SetScene(scene *Scene) {
	s.scene = scene
}

// Scene returns the active scene, if any.
func (s *Stage) Scene() *Scene { return s.scene }

// Columns returns the current wrap width in cells.
func (s *Stage) Columns() int { return s.buf.Width() }

// Rows returns the current viewport height in rows.
func (s *Stage) Rows() int { return s.buf.Height() }

// SetInputMode sets the input gate.
func (s *Stage) SetInputMode(mode schema.InputMode) {
	s.state.Mode = mode
}

// State returns a copy of the terminal state.
func (s *Stage) State() schema.TerminalState {
	st := s.state
	st.ScrollOffset = s.buf.ScrollOffset()
	return st
}
