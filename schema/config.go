package schema

import "time"

// FontMetrics describes the monospace grid the renderer draws on, in device pixels.
type FontMetrics struct {
	FontSize   float64
	LineHeight float64
	CharWidth  float64
	OriginX    float64
	OriginY    float64
}

// TerminalConfig defines defaults and limits for a terminal session.
type TerminalConfig struct {
	MaxLines  int
	ScrollCap int
	// FollowOutput snaps the view to the bottom on every append.
	FollowOutput bool
	User         string
	Hostname     string
	// Prompt overrides the user@host:cwd$ prompt when set.
	Prompt         string
	SkipBoot       bool
	HistoryMax     int
	Font           FontMetrics
	CursorBlink    time.Duration
	ScrollStep     int
	CanvasWidth    int
	CanvasHeight   int
	ViewportWidth  int
	ViewportHeight int
}

const (
	// DefaultMaxLines is the retention cap for the line buffer.
	DefaultMaxLines = 1000
	// DefaultScrollCap bounds how far the view may scroll up.
	DefaultScrollCap = 100
	// DefaultHistoryMax bounds the command history.
	DefaultHistoryMax = 200
	// DefaultScrollStep is the number of rows a wheel or page key scrolls.
	DefaultScrollStep = 3
	// DefaultCursorBlink is the cursor blink half period.
	DefaultCursorBlink = 500 * time.Millisecond
	// DefaultUser is the user shown in the prompt.
	DefaultUser = "objz"
	// DefaultHostname is the host shown in the prompt.
	DefaultHostname = "portfolio"
	// DefaultViewportWidth is the wrap width before the first render.
	DefaultViewportWidth = 80
	// DefaultViewportHeight is the row count before the first render.
	DefaultViewportHeight = 25
	// DefaultCanvasWidth is the raster width used by headless renders.
	DefaultCanvasWidth = 1024
	// DefaultCanvasHeight is the raster height used by headless renders.
	DefaultCanvasHeight = 640
)

// DefaultFontMetrics returns the 14px grid used by the browser canvas.
func DefaultFontMetrics() FontMetrics {
	return FontMetrics{
		FontSize:   14,
		LineHeight: 20,
		CharWidth:  8.4,
		OriginX:    10,
		OriginY:    20,
	}
}

// DefaultTerminalConfig returns a config with every default applied.
func DefaultTerminalConfig() TerminalConfig {
	cfg, _ := NormalizeTerminalConfig(TerminalConfig{FollowOutput: true})
	return cfg
}

// NormalizeTerminalConfig applies defaults and validates the config.
func NormalizeTerminalConfig(cfg TerminalConfig) (TerminalConfig, error) {
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultMaxLines
	}
	if cfg.ScrollCap <= 0 {
		cfg.ScrollCap = DefaultScrollCap
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultHistoryMax
	}
	if cfg.ScrollStep <= 0 {
		cfg.ScrollStep = DefaultScrollStep
	}
	if cfg.CursorBlink <= 0 {
		cfg.CursorBlink = DefaultCursorBlink
	}
	if cfg.User == "" {
		cfg.User = DefaultUser
	}
	if cfg.Hostname == "" {
		cfg.Hostname = DefaultHostname
	}
	if err := ValidateUser(cfg.User); err != nil {
		return TerminalConfig{}, err
	}
	if err := ValidateHostname(cfg.Hostname); err != nil {
		return TerminalConfig{}, err
	}
	def := DefaultFontMetrics()
	if cfg.Font.FontSize <= 0 {
		cfg.Font.FontSize = def.FontSize
	}
	if cfg.Font.LineHeight <= 0 {
		cfg.Font.LineHeight = def.LineHeight
	}
	if cfg.Font.CharWidth <= 0 {
		cfg.Font.CharWidth = def.CharWidth
	}
	if cfg.Font.OriginX <= 0 {
		cfg.Font.OriginX = def.OriginX
	}
	if cfg.Font.OriginY <= 0 {
		cfg.Font.OriginY = def.OriginY
	}
	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = DefaultCanvasWidth
	}
	if cfg.CanvasHeight <= 0 {
		cfg.CanvasHeight = DefaultCanvasHeight
	}
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = DefaultViewportWidth
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = DefaultViewportHeight
	}
	return cfg, nil
}
