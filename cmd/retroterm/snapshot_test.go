package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestSnapshotText(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")
	out := runRoot(t, "snapshot", "-c", cfgPath, "--format", "text", "--skip-boot",
		"--run", "echo hello snapshot", "-o", "-")
	if !strings.Contains(out, "hello snapshot") {
		t.Fatalf("expected command output in snapshot, got:\n%s", out)
	}
	if !strings.Contains(out, "$ echo hello snapshot") {
		t.Fatalf("expected echoed command line, got:\n%s", out)
	}
}

func TestSnapshotBootText(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")
	out := runRoot(t, "snapshot", "-c", cfgPath, "--format", "text",
		"--at", "2024-05-01T12:00:00Z", "-o", "-")
	if !strings.Contains(out, "Type 'help' for further information") {
		t.Fatalf("expected boot to finish, got:\n%s", out)
	}
}

func TestSnapshotPNG(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "shots", "term.png")
	runRoot(t, "snapshot", "-c", filepath.Join(dir, "missing.yaml"), "--skip-boot",
		"--width", "320", "--height", "200", "-o", outPath)
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestSnapshotRejectsUnknownFormat(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"snapshot", "-c", filepath.Join(t.TempDir(), "x.yaml"), "--format", "gif", "-o", "-"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}
