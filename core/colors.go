package core

import (
	"strings"

	"pkt.systems/retroterm/schema"
)

// Canonical colors used by the renderer.
const (
	ColorBackground = "#000000"
	ColorText       = "#ffffff"
	ColorPrompt     = "#00ffff"
	ColorLink       = "#00ffff"
	ColorOK         = "#00ff00"
	ColorSystem     = "#ffff00"
	ColorCursor     = "#ffffff"
)

var namedColors = map[string]string{
	"red":         "#ff0000",
	"green":       "#00ff00",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"cyan":        "#00ffff",
	"magenta":     "#ff00ff",
	"white":       "#ffffff",
	"gray":        "#808080",
	"grey":        "#808080",
	"boot-line":   "#ffffff",
	"typing-line": "#ffffff",
	"command":     "#8be9fd",
	"completion":  "#f8f8f2",
	"error":       "#ff4444",
	"success":     "#44ff44",
	"warning":     "#ffaa00",
}

// ColorValue maps a color name to its canonical value. Hex and rgb() values
// pass through; anything unrecognized is white.
func ColorValue(name string) string {
	if v, ok := namedColors[name]; ok {
		return v
	}
	if strings.HasPrefix(name, "#") || strings.HasPrefix(name, "rgb") {
		return name
	}
	return ColorText
}

// LineColor returns the draw color for a line of the given kind.
func LineColor(kind schema.LineKind, override string) string {
	if override != "" {
		return ColorValue(override)
	}
	switch kind {
	case schema.LineCommand:
		return ColorPrompt
	case schema.LineSystem:
		return ColorSystem
	default:
		return ColorText
	}
}
