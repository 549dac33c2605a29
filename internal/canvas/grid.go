package canvas

import (
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/unilibs/uniwidth"

	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/schema"
)

type cell struct {
	text      string
	fg        colorful.Color
	bg        colorful.Color
	underline bool
	link      string
	// spacer marks the right half of a wide rune.
	spacer bool
}

// Grid maps pixel draw calls onto a character grid and serializes it as
// ANSI escape sequences. Positions snap to the nearest cell of the font
// metrics the grid was built with, so the render pass sees the same pixel
// space it would see in a browser.
type Grid struct {
	cols  int
	rows  int
	font  schema.FontMetrics
	bg    colorful.Color
	cells [][]cell
}

// NewGrid returns a grid of cols by rows cells. Zero font metrics select the
// browser defaults.
func NewGrid(cols, rows int, font schema.FontMetrics) *Grid {
	if font == (schema.FontMetrics{}) {
		font = schema.DefaultFontMetrics()
	}
	g := &Grid{font: font}
	g.Resize(cols, rows)
	return g
}

// Resize changes the grid dimensions and blanks every cell.
func (g *Grid) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g.cols = cols
	g.rows = rows
	g.cells = make([][]cell, rows)
	for i := range g.cells {
		g.cells[i] = make([]cell, cols)
	}
	g.Clear(core.ColorBackground)
}

// Cols returns the grid width in cells.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height in cells.
func (g *Grid) Rows() int { return g.rows }

// Size reports a pixel size that the renderer maps back to exactly
// cols by rows. The extra half cell absorbs float rounding.
func (g *Grid) Size() (width, height float64) {
	width = 2*g.font.OriginX + (float64(g.cols)+0.5)*g.font.CharWidth
	height = 2*g.font.OriginY + (float64(g.rows)+0.5)*g.font.LineHeight
	return width, height
}

// Clear blanks every cell with the given background.
func (g *Grid) Clear(color string) {
	g.bg = ParseColor(color)
	for r := range g.cells {
		for c := range g.cells[r] {
			g.cells[r][c] = cell{text: " ", fg: white, bg: g.bg}
		}
	}
}

// FillRect paints the background of every cell whose center lies in the
// rectangle. Rectangles thinner than a cell color the cell they sit in.
func (g *Grid) FillRect(x, y, w, h float64, color string) {
	fill := ParseColor(color)
	c0, c1 := g.colSpan(x, w)
	r0, r1 := g.rowSpan(y, h)
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			g.cells[r][c].bg = fill
		}
	}
}

// FillText writes text starting at the cell nearest (x, y). Wide runes take
// two cells; zero-width runes join the cell before them.
func (g *Grid) FillText(text string, x, y float64, color string) {
	row := g.row(y)
	if row < 0 || row >= g.rows {
		return
	}
	fg := ParseColor(color)
	col := g.col(x)
	last := -1
	for _, r := range text {
		width := uniwidth.RuneWidth(r)
		if width == 0 {
			if last >= 0 {
				g.cells[row][last].text += string(r)
			}
			continue
		}
		if col+width > g.cols {
			return
		}
		if col >= 0 {
			g.cells[row][col].text = string(r)
			g.cells[row][col].fg = fg
			g.cells[row][col].spacer = false
			if width == 2 {
				g.cells[row][col+1].text = ""
				g.cells[row][col+1].spacer = true
			}
			last = col
		}
		col += width
	}
}

// StrokeLine underlines the cells along a horizontal line. Underlines sit
// in the lower half of their row, so the row is taken half a line up.
// Other lines are ignored.
func (g *Grid) StrokeLine(x1, y1, x2, y2 float64, color string) {
	if y1 != y2 {
		return
	}
	row := g.row(y1 - g.font.LineHeight/2)
	if row < 0 || row >= g.rows {
		return
	}
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	c0 := max(g.col(x1), 0)
	c1 := min(g.col(x2), g.cols)
	for c := c0; c < c1; c++ {
		g.cells[row][c].underline = true
	}
}

// ApplyLinks tags the cells under each link rectangle with its URL so Frame
// can emit terminal hyperlinks.
func (g *Grid) ApplyLinks(links []core.LinkInfo) {
	for _, link := range links {
		row := g.row(link.Rect.Y)
		if row < 0 || row >= g.rows {
			continue
		}
		c0 := max(g.col(link.Rect.StartX), 0)
		c1 := min(g.col(link.Rect.EndX), g.cols)
		for c := c0; c < c1; c++ {
			g.cells[row][c].link = link.URL
		}
	}
}

// CellCenter returns the pixel center of a zero-based cell, the point a
// click on that cell resolves to.
func (g *Grid) CellCenter(col, row int) (x, y float64) {
	x = g.font.OriginX + (float64(col)+0.5)*g.font.CharWidth
	y = g.font.OriginY + (float64(row)+0.5)*g.font.LineHeight
	return x, y
}

// Text returns the plain characters of a row with trailing blanks removed.
func (g *Grid) Text(row int) string {
	if row < 0 || row >= g.rows {
		return ""
	}
	var b strings.Builder
	for _, c := range g.cells[row] {
		b.WriteString(c.text)
	}
	return strings.TrimRight(b.String(), " ")
}

// Frame serializes the grid as a full-screen redraw. The hardware cursor
// stays hidden; the render pass draws its own.
func (g *Grid) Frame() string {
	var b strings.Builder
	b.WriteString("\x1b[?25l\x1b[H")
	for r, row := range g.cells {
		if r > 0 {
			b.WriteString("\r\n")
		}
		var cur cell
		link := ""
		started := false
		for _, c := range row {
			if c.spacer {
				continue
			}
			if c.link != link {
				b.WriteString("\x1b]8;;" + c.link + "\x1b\\")
				link = c.link
			}
			if !started || c.fg != cur.fg || c.bg != cur.bg || c.underline != cur.underline {
				b.WriteString("\x1b[0m")
				b.WriteString(sgrFg(c.fg))
				b.WriteString(sgrBg(c.bg))
				if c.underline {
					b.WriteString("\x1b[4m")
				}
				cur = c
				started = true
			}
			b.WriteString(c.text)
		}
		if link != "" {
			b.WriteString("\x1b]8;;\x1b\\")
		}
		b.WriteString("\x1b[0m")
		b.WriteString(sgrBg(g.bg))
		b.WriteString("\x1b[K")
	}
	b.WriteString("\x1b[0m")
	return b.String()
}

func (g *Grid) col(x float64) int {
	return int(math.Round((x - g.font.OriginX) / g.font.CharWidth))
}

func (g *Grid) row(y float64) int {
	return int(math.Round((y - g.font.OriginY) / g.font.LineHeight))
}

func (g *Grid) colSpan(x, w float64) (int, int) {
	c0 := g.col(x)
	c1 := g.col(x + w)
	if c1 <= c0 {
		c0 = int(math.Floor((x + w/2 - g.font.OriginX) / g.font.CharWidth))
		c1 = c0 + 1
	}
	return max(c0, 0), min(c1, g.cols)
}

func (g *Grid) rowSpan(y, h float64) (int, int) {
	r0 := g.row(y)
	r1 := g.row(y + h)
	if r1 <= r0 {
		r0 = g.row(y + h/2 - g.font.LineHeight/2)
		r1 = r0 + 1
	}
	return max(r0, 0), min(r1, g.rows)
}

// String implements fmt.Stringer with the plain text of every row.
func (g *Grid) String() string {
	lines := make([]string, g.rows)
	for r := range lines {
		lines[r] = g.Text(r)
	}
	return strings.Join(lines, "\n")
}

var _ core.Canvas = (*Grid)(nil)
