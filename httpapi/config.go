package httpapi

import (
	"time"

	"pkt.systems/retroterm/schema"
)

// Config defines HTTP API and UI settings.
type Config struct {
	Addr     string
	BasePath string
	// SessionTTL is how long a session may go without requests or an open
	// stream before it is closed.
	SessionTTL time.Duration
	// Font is sent to clients so the browser canvas uses the same grid as
	// the render pass.
	Font schema.FontMetrics
	// CanvasWidth and CanvasHeight size sessions whose client did not
	// report a viewport.
	CanvasWidth  int
	CanvasHeight int
}

func (c Config) normalized() Config {
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Hour
	}
	if c.Font == (schema.FontMetrics{}) {
		c.Font = schema.DefaultFontMetrics()
	}
	if c.CanvasWidth <= 0 {
		c.CanvasWidth = schema.DefaultCanvasWidth
	}
	if c.CanvasHeight <= 0 {
		c.CanvasHeight = schema.DefaultCanvasHeight
	}
	return c
}
