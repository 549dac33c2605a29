package sshserver

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/schema"
)

type echoExecutor struct{}

func (echoExecutor) Execute(req core.ExecRequest) core.CommandResult {
	return core.CommandResult{Text: "ran: " + req.Line}
}

func (echoExecutor) WorkingDir() string { return "~" }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestSession(t *testing.T) *core.Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	s, err := core.NewSession(ctx, schema.TerminalConfig{SkipBoot: true, FollowOutput: true}, core.SessionDeps{
		Clock:    core.NewAutoClock(time.Unix(0, 0)),
		Executor: echoExecutor{},
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q", want)
}

func TestTerminalRunsCommandsAndExits(t *testing.T) {
	session := newTestSession(t)
	inR, inW := io.Pipe()
	t.Cleanup(func() { _ = inW.Close() })
	out := &syncBuffer{}
	ui := newTerminalSession(struct {
		io.Reader
		io.Writer
	}{inR, out}, session, nil)
	ui.SetSize(40, 10)

	done := make(chan error, 1)
	go func() { done <- ui.Run(context.Background(), nil) }()

	waitFor(t, out, "Type 'help' for further information")
	if _, err := inW.Write([]byte("hi\r")); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, out, "ran: hi")
	if _, err := inW.Write([]byte{0x04}); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("expected Ctrl+D to end the session")
	}
	if !strings.HasSuffix(out.String(), "\x1b[?1049l\x1b[?25h") {
		t.Fatalf("expected alt screen to be restored")
	}
}

func TestTerminalClickOpensLink(t *testing.T) {
	session := newTestSession(t)
	session.Append("docs at https://a.example", schema.LineOutput, "")
	ui := newTerminalSession(struct {
		io.Reader
		io.Writer
	}{strings.NewReader(""), io.Discard}, session, nil)
	ui.SetSize(40, 10)
	if err := ui.render(); err != nil {
		t.Fatalf("render: %v", err)
	}

	ui.handleInput(inputEvent{kind: inputClick, col: 2, row: 0})
	if n := len(session.Lines()); n != 1 {
		t.Fatalf("click outside the link should do nothing, got %d lines", n)
	}
	ui.handleInput(inputEvent{kind: inputClick, col: 12, row: 0})
	lines := session.Lines()
	last := lines[len(lines)-1]
	if last.Content != "Opening https://a.example" || last.Kind != schema.LineSystem {
		t.Fatalf("unexpected line %+v", last)
	}
}

func TestTerminalWheelScrolls(t *testing.T) {
	session := newTestSession(t)
	for i := 0; i < 30; i++ {
		session.Append("line", schema.LineOutput, "")
	}
	ui := newTerminalSession(struct {
		io.Reader
		io.Writer
	}{strings.NewReader(""), io.Discard}, session, nil)
	ui.SetSize(40, 10)
	if err := ui.render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	ui.handleInput(inputEvent{kind: inputWheel, delta: -1})
	if got := session.State().ScrollOffset; got != 3 {
		t.Fatalf("expected offset 3, got %d", got)
	}
	ui.handleInput(inputEvent{kind: inputWheel, delta: 1})
	if got := session.State().ScrollOffset; got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
}
