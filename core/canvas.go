package core

// Canvas is the drawing surface a render pass paints on. Coordinates are
// device pixels; text is drawn with its top edge at y.
type Canvas interface {
	Size() (width, height float64)
	Clear(color string)
	FillRect(x, y, w, h float64, color string)
	FillText(text string, x, y float64, color string)
	StrokeLine(x1, y1, x2, y2 float64, color string)
}
