package core

import (
	"strings"
	"unicode/utf8"

	"pkt.systems/retroterm/schema"
)

const (
	// rows kept free below the scrollback for the input line
	inputReserve = 2
	cursorWidth  = 2
)

// Renderer paints a stage onto a canvas using fixed font metrics.
type Renderer struct {
	font schema.FontMetrics
}

// NewRenderer returns a renderer for the given metrics, filling zero fields with defaults.
func NewRenderer(font schema.FontMetrics) *Renderer {
	def := schema.DefaultFontMetrics()
	if font.LineHeight <= 0 {
		font.LineHeight = def.LineHeight
	}
	if font.CharWidth <= 0 {
		font.CharWidth = def.CharWidth
	}
	if font.FontSize <= 0 {
		font.FontSize = def.FontSize
	}
	if font.OriginX <= 0 {
		font.OriginX = def.OriginX
	}
	if font.OriginY <= 0 {
		font.OriginY = def.OriginY
	}
	return &Renderer{font: font}
}

// Font returns the metrics the renderer draws with.
func (r *Renderer) Font() schema.FontMetrics { return r.font }

// Metrics returns the number of rows and columns that fit a canvas of the given size.
func (r *Renderer) Metrics(width, height float64) (rows, cols int) {
	rows = int((height - 2*r.font.OriginY) / r.font.LineHeight)
	cols = int((width - 2*r.font.OriginX) / r.font.CharWidth)
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return rows, cols
}

// Render clears the canvas and paints the visible window, the in-progress
// row and the input line. The link index is rebuilt from what is painted.
func (r *Renderer) Render(st *Stage, c Canvas) {
	width, height := c.Size()
	c.Clear(ColorBackground)
	st.links.Clear()

	rows, cols := r.Metrics(width, height)
	if st.buf.Width() != cols {
		st.buf.SetViewportWidth(cols)
	}
	st.buf.SetViewportHeight(rows)

	if st.scene != nil {
		r.drawScene(st.scene, c)
		return
	}

	budget := rows - inputReserve
	var live []string
	if st.live != nil {
		live = Wrap(st.live.text, cols)
		budget -= len(live) - 1
	}
	if budget < 0 {
		budget = 0
	}
	window := st.buf.VisibleWindow(budget)
	if len(window) > budget {
		// Scrolled up: the newest offset rows fall below the view.
		window = window[:budget]
	}

	y := r.font.OriginY
	for _, row := range window {
		r.drawRow(st, c, row.Text, row.Kind, row.Color, y)
		y += r.font.LineHeight
	}
	if st.live != nil {
		for _, text := range live {
			r.drawRow(st, c, text, st.live.kind, st.live.color, y)
			y += r.font.LineHeight
		}
	}
	if st.state.Mode == schema.InputNormal {
		r.drawInput(st, c, y)
	}
}

// ToggleCursor flips the blink phase. Render only reads it.
func (r *Renderer) ToggleCursor(st *Stage) {
	st.blink = !st.blink
}

// ShowCursor forces the blink phase on.
func (r *Renderer) ShowCursor(st *Stage) {
	st.blink = true
}

func (r *Renderer) drawRow(st *Stage, c Canvas, text string, kind schema.LineKind, color string, y float64) {
	x := r.font.OriginX
	fg := LineColor(kind, color)
	if kind == schema.LineBoot {
		if idx := strings.LastIndex(text, OKSuffix); idx >= 0 {
			r.drawText(st, c, text[:idx], x, y, fg)
			okX := x + float64(utf8.RuneCountInString(text[:idx]))*r.font.CharWidth
			c.FillText(OKSuffix, okX, y, ColorOK)
			return
		}
	}
	r.drawText(st, c, text, x, y, fg)
}

// drawText paints text and registers the links it contains in one pass.
func (r *Renderer) drawText(st *Stage, c Canvas, text string, x, y float64, color string) {
	spans := scanLinks(text)
	st.links.record(spans, x, y, r.font.CharWidth, r.font.LineHeight)
	if len(spans) == 0 {
		if text != "" {
			c.FillText(text, x, y, color)
		}
		return
	}
	runes := []rune(text)
	cw := r.font.CharWidth
	col := 0
	for _, span := range spans {
		if span.start > col {
			c.FillText(string(runes[col:span.start]), x+float64(col)*cw, y, color)
		}
		startX := x + float64(span.start)*cw
		endX := x + float64(span.end)*cw
		c.FillText(span.url, startX, y, ColorLink)
		underline := y + r.font.LineHeight - 2
		c.StrokeLine(startX, underline, endX, underline, ColorLink)
		col = span.end
	}
	if col < len(runes) {
		c.FillText(string(runes[col:]), x+float64(col)*cw, y, color)
	}
}

func (r *Renderer) drawInput(st *Stage, c Canvas, y float64) {
	x := r.font.OriginX
	cw := r.font.CharWidth
	c.FillText(st.state.Prompt, x, y, ColorPrompt)
	inputX := x + float64(utf8.RuneCountInString(st.state.Prompt))*cw
	if st.state.Input != "" {
		c.FillText(st.state.Input, inputX, y, ColorText)
	}
	if st.blink {
		cursorX := inputX + float64(st.state.Cursor)*cw
		c.FillRect(cursorX, y-1, cursorWidth, r.font.LineHeight-6, ColorCursor)
	}
}

func (r *Renderer) drawScene(scene *Scene, c Canvas) {
	for i, line := range scene.Lines() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c.FillText(line, r.font.OriginX, r.font.OriginY+float64(i)*r.font.LineHeight, ColorText)
	}
}
