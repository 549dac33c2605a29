package appconfig

import (
	"testing"
	"time"

	"pkt.systems/retroterm/schema"
)

func TestDefaultConfigTerminal(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	term, err := cfg.TerminalConfig()
	if err != nil {
		t.Fatalf("terminal config: %v", err)
	}
	if !term.FollowOutput {
		t.Fatalf("expected follow output to default true")
	}
	if term.User != schema.DefaultUser || term.Hostname != schema.DefaultHostname {
		t.Fatalf("unexpected identity %s@%s", term.User, term.Hostname)
	}
	if term.CursorBlink != schema.DefaultCursorBlink {
		t.Fatalf("expected blink %s, got %s", schema.DefaultCursorBlink, term.CursorBlink)
	}
	if term.Font != schema.DefaultFontMetrics() {
		t.Fatalf("unexpected font %+v", term.Font)
	}
}

func TestSessionTTL(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{SessionTTLMinutes: 5}}
	if got := cfg.SessionTTL(); got != 5*time.Minute {
		t.Fatalf("expected 5m, got %s", got)
	}
	cfg.HTTP.SessionTTLMinutes = 0
	if got := cfg.SessionTTL(); got != time.Hour {
		t.Fatalf("expected 1h fallback, got %s", got)
	}
}
