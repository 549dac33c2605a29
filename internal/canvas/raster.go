package canvas

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/schema"
)

// Raster paints draw calls into an RGBA image using the 7x13 bitmap font.
// Glyphs are placed one per cell so columns line up with the font metrics
// the render pass assumes.
type Raster struct {
	img  *image.RGBA
	font schema.FontMetrics
	face font.Face
}

// NewRaster returns a width by height pixel surface.
func NewRaster(width, height int, metrics schema.FontMetrics) *Raster {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if metrics == (schema.FontMetrics{}) {
		metrics = schema.DefaultFontMetrics()
	}
	return &Raster{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		font: metrics,
		face: basicfont.Face7x13,
	}
}

// Image exposes the painted image.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (width, height float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Raster) Clear(color string) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(ParseColor(color)), image.Point{}, draw.Src)
}

func (r *Raster) FillRect(x, y, w, h float64, color string) {
	rect := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
	draw.Draw(r.img, rect.Intersect(r.img.Bounds()), image.NewUniform(ParseColor(color)), image.Point{}, draw.Src)
}

func (r *Raster) FillText(text string, x, y float64, color string) {
	baseline := int(math.Round(y)) + r.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(ParseColor(color)),
		Face: r.face,
	}
	i := 0
	for _, ch := range text {
		if ch != ' ' {
			d.Dot = fixed.P(int(math.Round(x+float64(i)*r.font.CharWidth)), baseline)
			d.DrawString(string(ch))
		}
		i++
	}
}

// StrokeLine draws a one pixel line.
func (r *Raster) StrokeLine(x1, y1, x2, y2 float64, color string) {
	c := ParseColor(color)
	dx := x2 - x1
	dy := y2 - y1
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		r.img.Set(int(math.Round(x1)), int(math.Round(y1)), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.img.Set(int(math.Round(x1+dx*t)), int(math.Round(y1+dy*t)), c)
	}
}

// EncodePNG writes the image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

var _ core.Canvas = (*Raster)(nil)
