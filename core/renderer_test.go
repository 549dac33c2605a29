package core

import (
	"math"
	"strings"
	"testing"

	"pkt.systems/retroterm/schema"
)

type drawOp struct {
	op    string
	text  string
	x, y  float64
	w, h  float64
	color string
}

type recordCanvas struct {
	width, height float64
	ops           []drawOp
}

func (c *recordCanvas) Size() (float64, float64) { return c.width, c.height }

func (c *recordCanvas) Clear(color string) {
	c.ops = append(c.ops[:0], drawOp{op: "clear", color: color})
}

func (c *recordCanvas) FillRect(x, y, w, h float64, color string) {
	c.ops = append(c.ops, drawOp{op: "rect", x: x, y: y, w: w, h: h, color: color})
}

func (c *recordCanvas) FillText(text string, x, y float64, color string) {
	c.ops = append(c.ops, drawOp{op: "text", text: text, x: x, y: y, color: color})
}

func (c *recordCanvas) StrokeLine(x1, y1, x2, y2 float64, color string) {
	c.ops = append(c.ops, drawOp{op: "line", x: x1, y: y1, w: x2 - x1, h: y2 - y1, color: color})
}

func (c *recordCanvas) texts() []string {
	var out []string
	for _, op := range c.ops {
		if op.op == "text" {
			out = append(out, op.text)
		}
	}
	return out
}

func (c *recordCanvas) find(op, text string) (drawOp, bool) {
	for _, o := range c.ops {
		if o.op == op && (text == "" || o.text == text) {
			return o, true
		}
	}
	return drawOp{}, false
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// 200x140 fits 21 columns and 5 rows at the default metrics.
func newRecordCanvas() *recordCanvas {
	return &recordCanvas{width: 200, height: 140}
}

func TestRendererMetrics(t *testing.T) {
	r := NewRenderer(schema.FontMetrics{})
	rows, cols := r.Metrics(200, 140)
	if rows != 5 || cols != 21 {
		t.Fatalf("expected 5x21, got %dx%d", rows, cols)
	}
	rows, cols = r.Metrics(0, 0)
	if rows != 1 || cols != 1 {
		t.Fatalf("expected metrics clamped to 1, got %dx%d", rows, cols)
	}
}

func TestRenderDrawsNewestRowsAndInput(t *testing.T) {
	stage := newStage(schema.DefaultTerminalConfig())
	stage.state.Prompt = "$ "
	stage.state.Input = "ls"
	stage.state.Cursor = 2
	for _, line := range []string{"one", "two", "three", "four"} {
		stage.Commit(line, schema.LineOutput, "")
	}
	c := newRecordCanvas()
	NewRenderer(schema.FontMetrics{}).Render(stage, c)

	if c.ops[0].op != "clear" || c.ops[0].color != ColorBackground {
		t.Fatalf("expected clear first, got %+v", c.ops[0])
	}
	got := strings.Join(c.texts(), "|")
	if got != "two|three|four|$ |ls" {
		t.Fatalf("unexpected draw order %q", got)
	}
	if stage.buf.Width() != 21 || stage.buf.Height() != 5 {
		t.Fatalf("expected viewport pushed to buffer, got %dx%d", stage.buf.Width(), stage.buf.Height())
	}
	prompt, _ := c.find("text", "$ ")
	if prompt.color != ColorPrompt || prompt.y != 20+3*20 {
		t.Fatalf("unexpected prompt op %+v", prompt)
	}
	cursor, ok := c.find("rect", "")
	if !ok {
		t.Fatalf("expected cursor bar")
	}
	wantX := 10 + 4*8.4
	if !near(cursor.x, wantX) || cursor.y != prompt.y-1 || cursor.w != 2 || cursor.h != 14 {
		t.Fatalf("unexpected cursor op %+v", cursor)
	}
}

func TestRenderNeverAdvancesBlink(t *testing.T) {
	stage := newStage(schema.DefaultTerminalConfig())
	r := NewRenderer(schema.FontMetrics{})
	r.ToggleCursor(stage)
	for i := 0; i < 3; i++ {
		c := newRecordCanvas()
		r.Render(stage, c)
		if _, ok := c.find("rect", ""); ok {
			t.Fatalf("expected cursor hidden on render %d", i)
		}
	}
	r.ShowCursor(stage)
	c := newRecordCanvas()
	r.Render(stage, c)
	if _, ok := c.find("rect", ""); !ok {
		t.Fatalf("expected cursor after ShowCursor")
	}
}

func TestRenderSkipsInputUnlessNormal(t *testing.T) {
	for _, mode := range []schema.InputMode{schema.InputProcessing, schema.InputDisabled} {
		stage := newStage(schema.DefaultTerminalConfig())
		stage.state.Prompt = "$ "
		stage.SetInputMode(mode)
		c := newRecordCanvas()
		NewRenderer(schema.FontMetrics{}).Render(stage, c)
		if _, ok := c.find("text", "$ "); ok {
			t.Fatalf("expected no prompt in mode %s", mode)
		}
		if _, ok := c.find("rect", ""); ok {
			t.Fatalf("expected no cursor in mode %s", mode)
		}
	}
}

func TestRenderRebuildsLinkIndex(t *testing.T) {
	stage := newStage(schema.DefaultTerminalConfig())
	stage.Commit("see http://a.b", schema.LineOutput, "")
	c := newRecordCanvas()
	r := NewRenderer(schema.FontMetrics{})
	r.Render(stage, c)

	links := stage.links.Links()
	if len(links) != 1 || links[0].URL != "http://a.b" {
		t.Fatalf("unexpected links %+v", links)
	}
	if url, ok := stage.links.FindLink(10+5*8.4, 25); !ok || url != "http://a.b" {
		t.Fatalf("expected hit on link, got %q", url)
	}
	link, _ := c.find("text", "http://a.b")
	if link.color != ColorLink {
		t.Fatalf("expected link drawn in %s, got %s", ColorLink, link.color)
	}
	if _, ok := c.find("line", ""); !ok {
		t.Fatalf("expected underline")
	}

	stage.ClearScreen()
	r.Render(stage, newRecordCanvas())
	if len(stage.links.Links()) != 0 {
		t.Fatalf("expected links dropped after clear")
	}
}

func TestRenderBootSuffixIsGreen(t *testing.T) {
	stage := newStage(schema.DefaultTerminalConfig())
	stage.Commit("Init"+OKSuffix, schema.LineBoot, "")
	c := newRecordCanvas()
	NewRenderer(schema.FontMetrics{}).Render(stage, c)
	task, ok := c.find("text", "Init")
	if !ok || task.color != ColorText {
		t.Fatalf("unexpected task op %+v", task)
	}
	okOp, found := c.find("text", OKSuffix)
	if !found || okOp.color != ColorOK || !near(okOp.x, 10+4*8.4) {
		t.Fatalf("unexpected [OK] op %+v", okOp)
	}
}

func TestRenderScrolledViewShowsOlderRows(t *testing.T) {
	stage := newStage(schema.DefaultTerminalConfig())
	stage.state.Prompt = "$ "
	for i := 0; i < 8; i++ {
		stage.Commit(string(rune('a'+i)), schema.LineOutput, "")
	}
	r := NewRenderer(schema.FontMetrics{})
	r.Render(stage, newRecordCanvas())
	stage.buf.ScrollUp(2)
	c := newRecordCanvas()
	r.Render(stage, c)
	got := strings.Join(c.texts(), "|")
	if got != "d|e|f|$ " {
		t.Fatalf("unexpected scrolled rows %q", got)
	}
}

func TestRenderLiveRowAndScene(t *testing.T) {
	stage := newStage(schema.DefaultTerminalConfig())
	stage.Commit("done", schema.LineNormal, "")
	stage.SetLive("typing", schema.LineTyping, "")
	stage.SetInputMode(schema.InputDisabled)
	c := newRecordCanvas()
	r := NewRenderer(schema.FontMetrics{})
	r.Render(stage, c)
	if got := strings.Join(c.texts(), "|"); got != "done|typing" {
		t.Fatalf("unexpected live render %q", got)
	}

	scene := NewScene(21, 5)
	scene.Print(3, 2, "choo")
	stage.SetScene(scene)
	c = newRecordCanvas()
	r.Render(stage, c)
	texts := c.texts()
	if len(texts) != 1 || strings.TrimSpace(texts[0]) != "choo" {
		t.Fatalf("expected only the scene row, got %q", texts)
	}
	op, _ := c.find("text", "")
	if op.y != 20+2*20 {
		t.Fatalf("expected scene row at y=60, got %v", op.y)
	}
}
