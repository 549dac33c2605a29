package sshserver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureHostKeyPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host")
	first, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	second, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !bytes.Equal(first.PublicKey().Marshal(), second.PublicKey().Marshal()) {
		t.Fatalf("expected the stored key to be reused")
	}
}

func TestEnsureHostKeyEphemeral(t *testing.T) {
	a, err := EnsureHostKey("")
	if err != nil {
		t.Fatalf("ephemeral: %v", err)
	}
	b, err := EnsureHostKey("  ")
	if err != nil {
		t.Fatalf("ephemeral: %v", err)
	}
	if bytes.Equal(a.PublicKey().Marshal(), b.PublicKey().Marshal()) {
		t.Fatalf("expected fresh keys")
	}
	if a.PublicKey().Type() != "ssh-ed25519" {
		t.Fatalf("unexpected key type %q", a.PublicKey().Type())
	}
}

func TestEnsureHostKeyRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host")
	if err := os.WriteFile(path, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := EnsureHostKey(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
