package canvas

import (
	"encoding/json"

	"pkt.systems/retroterm/core"
)

// Op is one recorded draw call.
type Op struct {
	Op    string  `json:"op"`
	Text  string  `json:"text,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	Color string  `json:"color"`
}

// Frame is a full render pass ready to be replayed on a browser canvas.
type Frame struct {
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Ops    []Op            `json:"ops"`
	Links  []core.LinkInfo `json:"links,omitempty"`
}

// Recorder captures draw calls instead of painting them.
type Recorder struct {
	width  float64
	height float64
	ops    []Op
}

// NewRecorder returns a recorder reporting the given canvas size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height}
}

// Resize changes the reported size.
func (r *Recorder) Resize(width, height float64) {
	r.width = width
	r.height = height
}

func (r *Recorder) Size() (width, height float64) { return r.width, r.height }

// Clear drops every earlier op; nothing drawn before it survives.
func (r *Recorder) Clear(color string) {
	r.ops = append(r.ops[:0], Op{Op: "clear", Color: color})
}

func (r *Recorder) FillRect(x, y, w, h float64, color string) {
	r.ops = append(r.ops, Op{Op: "rect", X: x, Y: y, W: w, H: h, Color: color})
}

func (r *Recorder) FillText(text string, x, y float64, color string) {
	r.ops = append(r.ops, Op{Op: "text", Text: text, X: x, Y: y, Color: color})
}

func (r *Recorder) StrokeLine(x1, y1, x2, y2 float64, color string) {
	r.ops = append(r.ops, Op{Op: "line", X: x1, Y: y1, X2: x2, Y2: y2, Color: color})
}

// Frame returns a copy of the ops recorded since the last Clear.
func (r *Recorder) Frame(links []core.LinkInfo) Frame {
	return Frame{
		Width:  r.width,
		Height: r.height,
		Ops:    append([]Op(nil), r.ops...),
		Links:  links,
	}
}

// MarshalFrame encodes a frame as JSON.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

var _ core.Canvas = (*Recorder)(nil)
