package core

import (
	"strings"

	"pkt.systems/retroterm/schema"
)

// BufferLine is one logical line of scrollback.
type BufferLine struct {
	Content string
	Kind    schema.LineKind
	// Color overrides the kind color when set.
	Color string
	// Wrapped caches the reflow for the last viewport width.
	Wrapped []string
}

// Rows returns the number of physical rows the line occupies.
func (l BufferLine) Rows() int {
	if len(l.Wrapped) == 0 {
		return 1
	}
	return len(l.Wrapped)
}

func (l BufferLine) row(i int) string {
	if len(l.Wrapped) == 0 {
		return l.Content
	}
	return l.Wrapped[i]
}

// Row is one physical (post-wrap) row handed to the renderer.
type Row struct {
	Text  string
	Kind  schema.LineKind
	Color string
}

// LineBuffer stores logical lines and the scroll state of the view.
// scrollOffset counts physical rows from the bottom; 0 means at bottom.
type LineBuffer struct {
	lines        []BufferLine
	maxLines     int
	scrollCap    int
	width        int
	height       int
	scrollOffset int
	follow       bool
}

// NewLineBuffer returns a buffer with the given retention cap and scroll cap.
// Non-positive values select the defaults.
func NewLineBuffer(maxLines, scrollCap int) *LineBuffer {
	if maxLines <= 0 {
		maxLines = schema.DefaultMaxLines
	}
	if scrollCap <= 0 {
		scrollCap = schema.DefaultScrollCap
	}
	return &LineBuffer{
		maxLines:  maxLines,
		scrollCap: scrollCap,
		width:     schema.DefaultViewportWidth,
		height:    schema.DefaultViewportHeight,
		follow:    true,
	}
}

// SetFollowOutput controls whether Append snaps the view to the bottom.
func (b *LineBuffer) SetFollowOutput(follow bool) {
	b.follow = follow
}

// Append wraps content to the viewport width and pushes it to the back,
// evicting the oldest lines past the retention cap.
func (b *LineBuffer) Append(content string, kind schema.LineKind, color string) {
	line := BufferLine{Content: content, Kind: kind, Color: color}
	line.Wrapped = Wrap(content, b.width)
	b.lines = append(b.lines, line)
	if len(b.lines) > b.maxLines {
		trim := len(b.lines) - b.maxLines
		// Zero the evicted entries so the backing array does not pin them.
		for i := 0; i < trim; i++ {
			b.lines[i] = BufferLine{}
		}
		b.lines = b.lines[trim:]
	}
	if b.follow {
		b.scrollOffset = 0
	}
}

// AppendMultiline appends one line per line of text, in order. Empty text
// appends nothing; a single trailing line break does not add an empty line.
func (b *LineBuffer) AppendMultiline(text string, kind schema.LineKind, color string) {
	if text == "" {
		return
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	for _, line := range strings.Split(text, "\n") {
		b.Append(line, kind, color)
	}
}

// SetViewportWidth re-wraps every line for the new width. Widths below 1 clamp to 1.
func (b *LineBuffer) SetViewportWidth(width int) {
	if width < 1 {
		width = 1
	}
	b.width = width
	for i := range b.lines {
		b.lines[i].Wrapped = Wrap(b.lines[i].Content, width)
	}
	b.scrollOffset = clampScroll(b.scrollOffset, b.MaxScrollOffset())
}

// SetViewportHeight sets the row count used for scroll limits. Heights below 1 clamp to 1.
func (b *LineBuffer) SetViewportHeight(height int) {
	if height < 1 {
		height = 1
	}
	b.height = height
	b.scrollOffset = clampScroll(b.scrollOffset, b.MaxScrollOffset())
}

func (b *LineBuffer) clone() *LineBuffer {
	cp := *b
	cp.lines = append([]BufferLine(nil), b.lines...)
	return &cp
}

// Width returns the current wrap width.
func (b *LineBuffer) Width() int { return b.width }

// Height returns the current viewport height.
func (b *LineBuffer) Height() int { return b.height }

// Len returns the number of logical lines.
func (b *LineBuffer) Len() int { return len(b.lines) }

// PhysicalLines returns the total number of rows after wrapping.
func (b *LineBuffer) PhysicalLines() int {
	total := 0
	for _, line := range b.lines {
		total += line.Rows()
	}
	return total
}

// Lines returns a copy of the logical lines, oldest first.
func (b *LineBuffer) Lines() []BufferLine {
	out := make([]BufferLine, len(b.lines))
	for i, line := range b.lines {
		line.Wrapped = append([]string(nil), line.Wrapped...)
		out[i] = line
	}
	return out
}

// VisibleWindow returns the trailing physical rows needed to fill
// maxRows+scrollOffset rows, oldest first.
func (b *LineBuffer) VisibleWindow(maxRows int) []Row {
	if maxRows < 0 {
		maxRows = 0
	}
	budget := maxRows + b.scrollOffset
	var rev []Row
	for i := len(b.lines) - 1; i >= 0 && len(rev) < budget; i-- {
		line := b.lines[i]
		for r := line.Rows() - 1; r >= 0 && len(rev) < budget; r-- {
			rev = append(rev, Row{
				Text:  line.row(r),
				Kind:  line.Kind,
				Color: line.Color,
			})
		}
	}
	rows := make([]Row, len(rev))
	for i, row := range rev {
		rows[len(rev)-1-i] = row
	}
	return rows
}

// ScrollOffset returns the current offset from the bottom.
func (b *LineBuffer) ScrollOffset() int { return b.scrollOffset }

// MaxScrollOffset returns the furthest the view may scroll up.
func (b *LineBuffer) MaxScrollOffset() int {
	return maxScroll(b.PhysicalLines(), b.height, b.scrollCap)
}

// ScrollUp moves the view toward older rows and reports whether it moved.
func (b *LineBuffer) ScrollUp(n int) bool {
	return b.setScroll(clampScroll(b.scrollOffset+n, b.MaxScrollOffset()))
}

// ScrollDown moves the view toward newer rows and reports whether it moved.
func (b *LineBuffer) ScrollDown(n int) bool {
	return b.setScroll(clampScroll(b.scrollOffset-n, b.MaxScrollOffset()))
}

// ResetScroll returns the view to the bottom.
func (b *LineBuffer) ResetScroll() {
	b.scrollOffset = 0
}

// AutoScroll is the explicit follow request issued once a line of output is complete.
func (b *LineBuffer) AutoScroll() {
	b.ResetScroll()
}

// Clear drops every line and returns the view to the bottom.
func (b *LineBuffer) Clear() {
	b.lines = nil
	b.scrollOffset = 0
}

// Snapshot returns a copy of the visible state for the given row count.
func (b *LineBuffer) Snapshot(maxRows int) schema.BufferSnapshot {
	window := b.VisibleWindow(maxRows)
	if len(window) > maxRows {
		window = window[:maxRows]
	}
	lines := make([]string, len(window))
	for i, row := range window {
		lines[i] = row.Text
	}
	return schema.BufferSnapshot{
		Lines:         lines,
		TotalLines:    len(b.lines),
		PhysicalLines: b.PhysicalLines(),
		ScrollOffset:  b.scrollOffset,
		AtBottom:      b.scrollOffset == 0,
	}
}

func (b *LineBuffer) setScroll(offset int) bool {
	if offset == b.scrollOffset {
		return false
	}
	b.scrollOffset = offset
	return true
}

func maxScroll(total, limit, scrollCap int) int {
	if total <= 0 || limit <= 0 || total <= limit {
		return 0
	}
	max := total - limit
	if scrollCap > 0 && max > scrollCap {
		max = scrollCap
	}
	return max
}

func clampScroll(offset, max int) int {
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}
