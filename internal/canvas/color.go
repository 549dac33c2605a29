// Package canvas provides draw surfaces for the render pass outside a
// browser: an ANSI cell grid for terminals, a raster image for
// screenshots and a recorder that replays draw calls to web clients.
package canvas

import (
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	black = colorful.Color{}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// ParseColor decodes the color strings the renderer emits: #rgb, #rrggbb
// and rgb(r, g, b). Anything else is white.
func ParseColor(s string) colorful.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if c, err := colorful.Hex(strings.ToLower(s)); err == nil {
			return c
		}
		return white
	}
	if inner, ok := strings.CutPrefix(s, "rgb("); ok {
		inner = strings.TrimSuffix(inner, ")")
		parts := strings.Split(inner, ",")
		if len(parts) != 3 {
			return white
		}
		var rgb [3]uint8
		for i, part := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || v < 0 || v > 255 {
				return white
			}
			rgb[i] = uint8(v)
		}
		return colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
	}
	return white
}

func sgrFg(c colorful.Color) string {
	r, g, b := c.RGB255()
	return "\x1b[38;2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m"
}

func sgrBg(c colorful.Color) string {
	r, g, b := c.RGB255()
	return "\x1b[48;2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m"
}
