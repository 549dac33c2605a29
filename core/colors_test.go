package core

import (
	"testing"

	"pkt.systems/retroterm/schema"
)

func TestColorValue(t *testing.T) {
	cases := map[string]string{
		"red":            "#ff0000",
		"grey":           "#808080",
		"gray":           "#808080",
		"command":        "#8be9fd",
		"warning":        "#ffaa00",
		"#123abc":        "#123abc",
		"rgb(1, 2, 3)":   "rgb(1, 2, 3)",
		"rgba(1,2,3,.5)": "rgba(1,2,3,.5)",
		"chartreuse":     "#ffffff",
		"":               "#ffffff",
	}
	for in, want := range cases {
		if got := ColorValue(in); got != want {
			t.Fatalf("ColorValue(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestLineColor(t *testing.T) {
	if got := LineColor(schema.LineCommand, ""); got != "#00ffff" {
		t.Fatalf("expected command cyan, got %q", got)
	}
	if got := LineColor(schema.LineSystem, ""); got != "#ffff00" {
		t.Fatalf("expected system yellow, got %q", got)
	}
	if got := LineColor(schema.LineOutput, ""); got != "#ffffff" {
		t.Fatalf("expected output white, got %q", got)
	}
	if got := LineColor(schema.LineSystem, "error"); got != "#ff4444" {
		t.Fatalf("expected override to win, got %q", got)
	}
}
