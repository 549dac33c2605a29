package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/schema"
)

func newSession(t *testing.T) *core.Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	s, err := core.NewSession(ctx, schema.TerminalConfig{SkipBoot: true, FollowOutput: true, Prompt: "$ "}, core.SessionDeps{
		Clock: core.NewAutoClock(time.Unix(0, 0)),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in      string
		r, g, b uint8
	}{
		{in: "#00ffff", r: 0, g: 255, b: 255},
		{in: "#0F0", r: 0, g: 255, b: 0},
		{in: "rgb(1, 2, 3)", r: 1, g: 2, b: 3},
		{in: "rgb(1,2)", r: 255, g: 255, b: 255},
		{in: "#zzzzzz", r: 255, g: 255, b: 255},
		{in: "papayawhip", r: 255, g: 255, b: 255},
	}
	for _, tc := range cases {
		r, g, b := ParseColor(tc.in).RGB255()
		if r != tc.r || g != tc.g || b != tc.b {
			t.Fatalf("%q: got %d,%d,%d want %d,%d,%d", tc.in, r, g, b, tc.r, tc.g, tc.b)
		}
	}
}

func TestGridSizeRoundTrip(t *testing.T) {
	renderer := core.NewRenderer(schema.FontMetrics{})
	for _, dims := range [][2]int{{80, 24}, {132, 50}, {1, 1}, {37, 13}} {
		g := NewGrid(dims[0], dims[1], schema.FontMetrics{})
		rows, cols := renderer.Metrics(g.Size())
		if cols != dims[0] || rows != dims[1] {
			t.Fatalf("grid %dx%d maps to %dx%d", dims[0], dims[1], cols, rows)
		}
	}
}

func TestGridRendersSession(t *testing.T) {
	s := newSession(t)
	s.Append("see https://x.io ok", schema.LineOutput, "")
	g := NewGrid(20, 6, schema.FontMetrics{})
	s.Render(g)
	g.ApplyLinks(s.Links())

	if got := g.Text(0); got != "see https://x.io ok" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := g.Text(1); got != "$" {
		t.Fatalf("row 1 = %q", got)
	}
	if r, _, _ := g.cells[1][2].bg.RGB255(); r != 255 {
		t.Fatalf("expected cursor cell at column 2")
	}
	if g.cells[1][3].bg != black {
		t.Fatalf("cursor bled into column 3")
	}
	for c := 4; c < 16; c++ {
		if !g.cells[0][c].underline || g.cells[0][c].link != "https://x.io" {
			t.Fatalf("column %d not linked", c)
		}
	}
	if g.cells[0][16].underline || g.cells[0][3].link != "" {
		t.Fatalf("link spilled outside its span")
	}
	frame := g.Frame()
	if !strings.Contains(frame, "\x1b]8;;https://x.io\x1b\\") {
		t.Fatalf("frame missing hyperlink: %q", frame)
	}
	if !strings.Contains(frame, "\x1b[38;2;0;255;255m") {
		t.Fatalf("frame missing link color")
	}
}

func TestGridWideRunes(t *testing.T) {
	g := NewGrid(4, 1, schema.FontMetrics{})
	font := schema.DefaultFontMetrics()
	g.FillText("界ab", font.OriginX, font.OriginY, "#ffffff")
	if got := g.Text(0); got != "界ab" {
		t.Fatalf("row = %q", got)
	}
	if !g.cells[0][1].spacer {
		t.Fatalf("expected spacer after wide rune")
	}
	g.Clear("#000000")
	g.FillText("abc界", font.OriginX, font.OriginY, "#ffffff")
	if got := g.Text(0); got != "abc" {
		t.Fatalf("wide rune at the edge should clip, got %q", got)
	}
}

func TestGridCellCenterResolvesLinks(t *testing.T) {
	s := newSession(t)
	s.Append("https://a.example", schema.LineOutput, "")
	g := NewGrid(30, 5, schema.FontMetrics{})
	s.Render(g)
	x, y := g.CellCenter(3, 0)
	if url, ok := s.FindLink(x, y); !ok || url != "https://a.example" {
		t.Fatalf("click resolved to %q %v", url, ok)
	}
	x, y = g.CellCenter(3, 1)
	if _, ok := s.FindLink(x, y); ok {
		t.Fatalf("prompt row should not hold a link")
	}
}

func TestRasterPaints(t *testing.T) {
	r := NewRaster(100, 60, schema.FontMetrics{})
	r.Clear("#000000")
	r.FillRect(10, 10, 5, 5, "#ff0000")
	r.StrokeLine(0, 50, 99, 50, "#0000ff")
	r.FillText("A", 10, 20, "#00ff00")

	if c := r.Image().RGBAAt(12, 12); c.R != 255 || c.G != 0 {
		t.Fatalf("rect pixel = %v", c)
	}
	if c := r.Image().RGBAAt(50, 50); c.B != 255 {
		t.Fatalf("line pixel = %v", c)
	}
	green := false
	for y := 20; y < 33 && !green; y++ {
		for x := 10; x < 17; x++ {
			if r.Image().RGBAAt(x, y).G > 0 {
				green = true
				break
			}
		}
	}
	if !green {
		t.Fatalf("glyph not painted")
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestRecorderFrame(t *testing.T) {
	s := newSession(t)
	s.Append("hello", schema.LineOutput, "")
	rec := NewRecorder(200, 140)
	rec.FillText("stale", 0, 0, "#fff")
	s.Render(rec)
	frame := rec.Frame(s.Links())
	if frame.Ops[0].Op != "clear" {
		t.Fatalf("first op = %q", frame.Ops[0].Op)
	}
	for _, op := range frame.Ops {
		if op.Text == "stale" {
			t.Fatalf("clear kept earlier ops")
		}
	}
	raw, err := MarshalFrame(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["width"].(float64) != 200 {
		t.Fatalf("width = %v", decoded["width"])
	}
	if !strings.Contains(string(raw), `"text":"hello"`) {
		t.Fatalf("frame missing text op: %s", raw)
	}
}
