package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/retroterm/schema"
)

// Reserved command outputs the session intercepts instead of printing.
const (
	SentinelClearScreen = "CLEAR_SCREEN"
	SentinelSystemPanic = "SYSTEM_PANIC"
)

// ExecRequest is one submitted command line.
type ExecRequest struct {
	Line    string
	History []string
}

// CommandResult is what a command produced. Text is printed as output unless
// it is one of the sentinels.
type CommandResult struct {
	Text             string
	DirectoryChanged bool
	Locomotive       *LocomotiveOptions
}

// Executor runs command lines against the session's shell state.
type Executor interface {
	Execute(req ExecRequest) CommandResult
	// WorkingDir returns the directory shown in the prompt, e.g. "~/projects".
	WorkingDir() string
}

// Completer proposes completions for the word ending at the end of line.
// start is the rune offset where that word begins.
type Completer interface {
	Complete(line string) (start int, candidates []string)
}

// SessionDeps wires the collaborators of a session.
type SessionDeps struct {
	Clock     Clock
	Executor  Executor
	Completer Completer
	Logger    pslog.Logger
}

// SessionFactory builds a fully wired session for a host connection.
type SessionFactory func(ctx context.Context) (*Session, error)

// Session is one terminal instance: buffer, input state, animation and
// rendering behind a single lock.
type Session struct {
	mu        sync.Mutex
	id        schema.SessionID
	cfg       schema.TerminalConfig
	stage     *Stage
	seq       *Sequencer
	renderer  *Renderer
	history   *History
	editor    lineEditor
	exec      Executor
	completer Completer
	clock     Clock
	log       pslog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	changes chan struct{}
}

// NewSession builds a session. Routines started with Start run on a context
// derived from ctx and stop when Close is called.
func NewSession(ctx context.Context, cfg schema.TerminalConfig, deps SessionDeps) (*Session, error) {
	if ctx == nil {
		return nil, errors.New("missing context")
	}
	normalized, err := schema.NormalizeTerminalConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("terminal config: %w", err)
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	id := schema.SessionID(newID())
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:        id,
		cfg:       normalized,
		stage:     newStage(normalized),
		renderer:  NewRenderer(normalized.Font),
		history:   NewHistory(normalized.HistoryMax),
		exec:      deps.Executor,
		completer: deps.Completer,
		clock:     deps.Clock,
		log:       logger.With("session", id),
		ctx:       runCtx,
		cancel:    cancel,
		changes:   make(chan struct{}, 1),
	}
	s.seq = NewSequencer(deps.Clock, &s.mu, s.stage)
	s.seq.onStep = s.notify
	s.seq.onDone = func(*Stage) { s.prepareInputLocked() }
	s.prepareInputLocked()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() schema.SessionID { return s.id }

// Config returns the normalized terminal config.
func (s *Session) Config() schema.TerminalConfig { return s.cfg }

// Now reads the session clock.
func (s *Session) Now() time.Time { return s.clock.Now() }

// Changes signals after every state change. Signals coalesce.
func (s *Session) Changes() <-chan struct{} { return s.changes }

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Append adds one logical line to the scrollback.
func (s *Session) Append(content string, kind schema.LineKind, color string) {
	s.mu.Lock()
	s.stage.Commit(content, kind, color)
	s.mu.Unlock()
	s.notify()
}

// AppendMultiline appends each line of text in order.
func (s *Session) AppendMultiline(text string, kind schema.LineKind, color string) {
	s.mu.Lock()
	s.stage.buf.AppendMultiline(text, kind, color)
	s.mu.Unlock()
	s.notify()
}

// SetViewportWidth rewraps the scrollback to width columns.
func (s *Session) SetViewportWidth(width int) {
	s.mu.Lock()
	s.stage.buf.SetViewportWidth(width)
	s.mu.Unlock()
	s.notify()
}

// SetViewportHeight sets the number of rows the scroll bounds are measured against.
func (s *Session) SetViewportHeight(height int) {
	s.mu.Lock()
	s.stage.buf.SetViewportHeight(height)
	s.mu.Unlock()
	s.notify()
}

// SetViewport sets both viewport dimensions in cells.
func (s *Session) SetViewport(cols, rows int) {
	s.mu.Lock()
	s.stage.buf.SetViewportWidth(cols)
	s.stage.buf.SetViewportHeight(rows)
	s.mu.Unlock()
	s.notify()
}

// VisibleWindow returns the rows ending scrollOffset rows above the bottom.
func (s *Session) VisibleWindow(maxRows int) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage.buf.VisibleWindow(maxRows)
}

// ScrollUp moves the view toward older output.
func (s *Session) ScrollUp(n int) bool {
	s.mu.Lock()
	changed := s.stage.buf.ScrollUp(n)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// ScrollDown moves the view toward newer output.
func (s *Session) ScrollDown(n int) bool {
	s.mu.Lock()
	changed := s.stage.buf.ScrollDown(n)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// Scroll applies a wheel delta in steps: negative scrolls up.
func (s *Session) Scroll(delta int) bool {
	switch {
	case delta < 0:
		return s.ScrollUp(s.cfg.ScrollStep)
	case delta > 0:
		return s.ScrollDown(s.cfg.ScrollStep)
	}
	return false
}

// ResetScroll returns the view to the bottom.
func (s *Session) ResetScroll() {
	s.mu.Lock()
	s.stage.buf.ResetScroll()
	s.mu.Unlock()
	s.notify()
}

// AutoScroll snaps the view to the newest output.
func (s *Session) AutoScroll() {
	s.mu.Lock()
	s.stage.buf.AutoScroll()
	s.mu.Unlock()
	s.notify()
}

// SetInputState replaces the input line. The cursor is clamped into range.
func (s *Session) SetInputState(text string, cursor int) {
	s.mu.Lock()
	s.editor.SetState(text, cursor)
	s.syncInputLocked()
	s.mu.Unlock()
	s.notify()
}

// SetPrompt replaces the prompt until the next command re-arms input.
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	s.stage.state.Prompt = prompt
	s.mu.Unlock()
	s.notify()
}

// SetInputMode sets the input gate. A running routine keeps input disabled
// regardless.
func (s *Session) SetInputMode(mode schema.InputMode) {
	s.mu.Lock()
	if s.seq.Active() {
		mode = schema.InputDisabled
	}
	s.stage.SetInputMode(mode)
	s.mu.Unlock()
	s.notify()
}

// State returns the current terminal state.
func (s *Session) State() schema.TerminalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage.State()
}

// Snapshot returns the scrollback as the given number of rows would show it.
func (s *Session) Snapshot(maxRows int) schema.BufferSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage.buf.Snapshot(maxRows)
}

// Lines returns a copy of the logical lines.
func (s *Session) Lines() []BufferLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage.buf.Lines()
}

// History returns the recorded command history.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// FindLink resolves a pixel position against the last render.
func (s *Session) FindLink(x, y float64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage.links.FindLink(x, y)
}

// Links returns the links registered by the last render.
func (s *Session) Links() []LinkInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage.links.Links()
}

// Render paints the session onto c.
func (s *Session) Render(c Canvas) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Render(s.stage, c)
}

// RenderDetached paints the session onto c without touching the live view:
// the link index, wrap width and scroll state stay as the last Render left them.
func (s *Session) RenderDetached(c Canvas) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Render(s.stage.detached(), c)
}

// Renderer returns the session renderer.
func (s *Session) Renderer() *Renderer { return s.renderer }

// ToggleCursor flips the cursor blink phase.
func (s *Session) ToggleCursor() {
	s.mu.Lock()
	s.renderer.ToggleCursor(s.stage)
	s.mu.Unlock()
	s.notify()
}

// ShowCursor forces the cursor visible.
func (s *Session) ShowCursor() {
	s.mu.Lock()
	s.renderer.ShowCursor(s.stage)
	s.mu.Unlock()
	s.notify()
}

// Busy reports whether a routine is playing.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Active()
}

// HandleKey applies one key press. Page keys scroll at any time; every
// other key fails with ErrInputDisabled unless input is Normal.
func (s *Session) HandleKey(k Key) error {
	s.mu.Lock()
	switch k.Kind {
	case KeyPageUp:
		s.stage.buf.ScrollUp(s.cfg.ScrollStep)
		s.mu.Unlock()
		s.notify()
		return nil
	case KeyPageDown:
		s.stage.buf.ScrollDown(s.cfg.ScrollStep)
		s.mu.Unlock()
		s.notify()
		return nil
	}
	if s.stage.state.Mode != schema.InputNormal {
		s.mu.Unlock()
		return schema.ErrInputDisabled
	}
	var routine Routine
	switch k.Kind {
	case KeyRune:
		s.editor.InsertRune(k.Rune)
	case KeyBackspace:
		s.editor.Backspace()
	case KeyDelete:
		s.editor.Delete()
	case KeyLeft:
		s.editor.MoveLeft()
	case KeyRight:
		s.editor.MoveRight()
	case KeyHome, KeyCtrlA:
		s.editor.MoveStart()
	case KeyEnd, KeyCtrlE:
		s.editor.MoveEnd()
	case KeyCtrlU:
		s.editor.KillLineStart()
	case KeyCtrlK:
		s.editor.KillLineEnd()
	case KeyCtrlW:
		s.editor.DeleteWordBackward()
	case KeyUp:
		if entry, ok := s.history.Prev(s.editor.String()); ok {
			s.editor.SetString(entry)
		}
	case KeyDown:
		if entry, ok := s.history.Next(); ok {
			s.editor.SetString(entry)
		}
	case KeyTab:
		s.completeLocked()
	case KeyCtrlC:
		s.stage.Commit(s.stage.state.Prompt+s.editor.String()+"^C", schema.LineCommand, "cyan")
		s.history.Add("")
		s.prepareInputLocked()
	case KeyCtrlL:
		s.stage.ClearScreen()
	case KeyEnter:
		routine = s.submitLocked(s.editor.String())
	}
	s.syncInputLocked()
	s.renderer.ShowCursor(s.stage)
	s.mu.Unlock()
	s.notify()
	if routine != nil {
		return s.Start(routine)
	}
	return nil
}

// Submit runs line as if it had been typed and entered.
func (s *Session) Submit(line string) error {
	s.mu.Lock()
	if s.stage.state.Mode != schema.InputNormal {
		s.mu.Unlock()
		return schema.ErrInputDisabled
	}
	routine := s.submitLocked(line)
	s.mu.Unlock()
	s.notify()
	if routine != nil {
		return s.Start(routine)
	}
	return nil
}

// submitLocked echoes and executes line. It returns the routine the command
// asked for; input stays disabled until that routine ends.
func (s *Session) submitLocked(line string) Routine {
	s.stage.Commit(s.stage.state.Prompt+line, schema.LineCommand, "cyan")
	s.history.Add(line)
	s.editor.Clear()
	if strings.TrimSpace(line) == "" {
		s.prepareInputLocked()
		return nil
	}
	result := s.executeLocked(line)
	s.log.Debug("session command", "cmd", strings.Fields(line)[0], "dir_changed", result.DirectoryChanged)
	switch result.Text {
	case SentinelClearScreen:
		s.stage.ClearScreen()
	case SentinelSystemPanic:
		s.stage.SetInputMode(schema.InputDisabled)
		return PanicRoutine()
	case "":
	default:
		s.stage.buf.AppendMultiline(result.Text, schema.LineOutput, "")
	}
	if result.Locomotive != nil {
		s.stage.SetInputMode(schema.InputDisabled)
		return Locomotive(*result.Locomotive)
	}
	s.prepareInputLocked()
	return nil
}

func (s *Session) executeLocked(line string) CommandResult {
	if s.exec == nil {
		return CommandResult{Text: "zsh: command not found: " + strings.Fields(line)[0]}
	}
	return s.exec.Execute(ExecRequest{Line: line, History: s.history.Entries()})
}

// completeLocked completes the word before the cursor. One candidate
// replaces the word, a longer shared prefix extends it, otherwise the
// candidates are listed below the command line.
func (s *Session) completeLocked() {
	if s.completer == nil {
		return
	}
	input := []rune(s.editor.String())
	cursor := s.editor.Cursor()
	head := string(input[:cursor])
	tail := string(input[cursor:])
	start, candidates := s.completer.Complete(head)
	if len(candidates) == 0 {
		return
	}
	start = clampCursor(start, cursor)
	word := string(input[start:cursor])
	prefix := string(input[:start])
	switch {
	case len(candidates) == 1:
		completed := candidates[0]
		if !strings.HasSuffix(completed, "/") && tail == "" {
			completed += " "
		}
		s.editor.SetString(prefix + completed)
	case len(commonPrefix(candidates)) > len(word):
		s.editor.SetString(prefix + commonPrefix(candidates))
	default:
		s.stage.Commit(s.stage.state.Prompt+string(input), schema.LineCommand, "cyan")
		for _, row := range formatCandidates(candidates) {
			s.stage.Commit(row, schema.LineSystem, "")
		}
		return
	}
	if tail != "" {
		cur := len([]rune(s.editor.String()))
		s.editor.SetState(s.editor.String()+tail, cur)
	}
}

func commonPrefix(words []string) string {
	if len(words) == 0 {
		return ""
	}
	prefix := []rune(words[0])
	for _, w := range words[1:] {
		rs := []rune(w)
		n := 0
		for n < len(prefix) && n < len(rs) && prefix[n] == rs[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return string(prefix)
}

const candidatesPerRow = 4

// formatCandidates lists completions on one row, or four per row when
// there are more than ten.
func formatCandidates(candidates []string) []string {
	if len(candidates) <= 10 {
		return []string{strings.Join(candidates, "  ")}
	}
	var rows []string
	for i := 0; i < len(candidates); i += candidatesPerRow {
		end := min(i+candidatesPerRow, len(candidates))
		rows = append(rows, strings.Join(candidates[i:end], "  "))
	}
	return rows
}

// Play runs r to completion on the calling goroutine.
func (s *Session) Play(ctx context.Context, r Routine) error {
	return s.seq.Run(ctx, r)
}

// Start runs r in the background on the session context.
func (s *Session) Start(r Routine) error {
	s.mu.Lock()
	if s.seq.Active() {
		s.mu.Unlock()
		return schema.ErrAnimationActive
	}
	s.mu.Unlock()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.seq.Run(s.ctx, r); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("session routine failed", "err", err)
		}
	}()
	return nil
}

// Boot plays the startup script, or only the welcome line when the config
// skips the boot.
func (s *Session) Boot(lastLogin time.Time) error {
	if s.cfg.SkipBoot {
		s.Append("Type 'help' for further information", schema.LineNormal, "yellow")
		return nil
	}
	s.mu.Lock()
	s.stage.SetInputMode(schema.InputDisabled)
	s.mu.Unlock()
	s.log.Debug("session boot start")
	return s.Start(StartupSequence(s.cfg.User, lastLogin))
}

// Wait blocks until background routines finish.
func (s *Session) Wait() { s.wg.Wait() }

// Close abandons any running routine and waits for it to stop.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Session) prompt() string {
	if s.cfg.Prompt != "" {
		return s.cfg.Prompt
	}
	dir := "~"
	if s.exec != nil {
		dir = s.exec.WorkingDir()
	}
	return fmt.Sprintf("%s@%s:%s$ ", s.cfg.User, s.cfg.Hostname, dir)
}

// prepareInputLocked re-arms input after a command or routine.
func (s *Session) prepareInputLocked() {
	s.stage.state.Prompt = s.prompt()
	s.stage.SetInputMode(schema.InputNormal)
	s.editor.Clear()
	s.syncInputLocked()
	s.stage.buf.AutoScroll()
	s.stage.blink = true
}

func (s *Session) syncInputLocked() {
	s.stage.state.Input = s.editor.String()
	s.stage.state.Cursor = s.editor.Cursor()
}
