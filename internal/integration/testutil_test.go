package integration_test

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"pkt.systems/retroterm"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/schema"
)

const testUser = "guest"

func testTerminalConfig() schema.TerminalConfig {
	return schema.TerminalConfig{
		User:         testUser,
		Hostname:     "retro",
		SkipBoot:     true,
		FollowOutput: true,
	}
}

func newTestFactory(t *testing.T) core.SessionFactory {
	t.Helper()
	factory, err := retroterm.NewSessionFactory(testTerminalConfig(), nil, false)
	if err != nil {
		t.Fatalf("session factory: %v", err)
	}
	return factory
}

func requireLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

func requireBrowser(t *testing.T) {
	t.Helper()
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no chrome or chromium binary on PATH")
}

func expectOutput(t *testing.T, buffer *lockedBuffer, substr string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(buffer.String(), substr) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %q in output: %q", substr, buffer.String())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func containsAll(value string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(value, term) {
			return false
		}
	}
	return true
}

func withTimeout(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}
