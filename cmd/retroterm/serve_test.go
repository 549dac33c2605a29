package main

import (
	"testing"
	"time"

	"pkt.systems/retroterm/internal/appconfig"
)

func TestToServerConfig(t *testing.T) {
	cfg, err := appconfig.DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.HTTP.BasePath = "/term"
	cfg.HTTP.SessionTTLMinutes = 5
	cfg.Font.Size = 16
	cfg.Terminal.User = "guest"
	cfg.Logging.DisableAuditTrails = true

	got, err := toServerConfig(cfg)
	if err != nil {
		t.Fatalf("toServerConfig: %v", err)
	}
	if got.HTTP.BasePath != "/term" || got.HTTP.SessionTTL != 5*time.Minute {
		t.Fatalf("unexpected http config %+v", got.HTTP)
	}
	if got.HTTP.Font.FontSize != 16 || got.Terminal.Font.FontSize != 16 {
		t.Fatalf("expected font size to flow through, got %+v", got.HTTP.Font)
	}
	if got.Terminal.User != "guest" || !got.DisableAuditLogging {
		t.Fatalf("unexpected terminal config %+v", got.Terminal)
	}
	if got.SSH.Addr != cfg.SSH.Addr {
		t.Fatalf("unexpected ssh addr %q", got.SSH.Addr)
	}
}

func TestToServerConfigRejectsBadUser(t *testing.T) {
	cfg, err := appconfig.DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Terminal.User = "not valid"
	if _, err := toServerConfig(cfg); err == nil {
		t.Fatalf("expected invalid user to fail")
	}
}

func TestServeRejectsConflictingFlags(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"serve", "--http-only", "--ssh-only", "--no-banner"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected conflicting flags to fail")
	}
}
