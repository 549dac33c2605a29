package core

import (
	"strings"
	"unicode"
)

// LinkRect is an axis-aligned hit box in device pixels.
type LinkRect struct {
	StartX     float64 `json:"startX"`
	EndX       float64 `json:"endX"`
	Y          float64 `json:"y"`
	LineHeight float64 `json:"lineHeight"`
}

// Contains reports whether the point lies inside the rectangle, bounds included.
func (r LinkRect) Contains(x, y float64) bool {
	return x >= r.StartX && x <= r.EndX && y >= r.Y && y <= r.Y+r.LineHeight
}

// LinkInfo maps a drawn URL to the rectangle it occupies.
type LinkInfo struct {
	ID   int      `json:"id"`
	URL  string   `json:"url"`
	Rect LinkRect `json:"rect"`
}

// linkSpan is a URL found in a text, in rune columns.
type linkSpan struct {
	start int
	end   int
	url   string
}

// LinkIndex holds the links painted by the last full render, in paint order.
type LinkIndex struct {
	links  []LinkInfo
	nextID int
}

// DetectLinks scans text drawn at (originX, originY) and records every URL it
// contains. All links of one call share the returned id.
func (x *LinkIndex) DetectLinks(text string, originX, originY, cellWidth, lineHeight float64) int {
	return x.record(scanLinks(text), originX, originY, cellWidth, lineHeight)
}

func (x *LinkIndex) record(spans []linkSpan, originX, originY, cellWidth, lineHeight float64) int {
	id := x.nextID
	x.nextID++
	for _, span := range spans {
		startX := originX + float64(span.start)*cellWidth
		x.links = append(x.links, LinkInfo{
			ID:  id,
			URL: span.url,
			Rect: LinkRect{
				StartX:     startX,
				EndX:       startX + float64(span.end-span.start)*cellWidth,
				Y:          originY,
				LineHeight: lineHeight,
			},
		})
	}
	return id
}

// FindLink returns the URL of the first indexed rectangle containing (px, py).
// Overlaps resolve to the earliest inserted link.
func (x *LinkIndex) FindLink(px, py float64) (string, bool) {
	for _, link := range x.links {
		if link.Rect.Contains(px, py) {
			return link.URL, true
		}
	}
	return "", false
}

// Links returns a copy of the indexed links.
func (x *LinkIndex) Links() []LinkInfo {
	return append([]LinkInfo(nil), x.links...)
}

// Clear drops all entries and restarts id allocation.
func (x *LinkIndex) Clear() {
	x.links = x.links[:0]
	x.nextID = 0
}

// scanLinks finds http:// and https:// runs terminated by whitespace or ']'.
// A bare "http" that is not a scheme is skipped one rune at a time.
func scanLinks(text string) []linkSpan {
	if !strings.Contains(text, "http") {
		return nil
	}
	runes := []rune(text)
	var spans []linkSpan
	for i := 0; i < len(runes); {
		if !hasPrefixAt(runes, i, "http") {
			i++
			continue
		}
		end := i
		for end < len(runes) && !isLinkTerminator(runes[end]) {
			end++
		}
		candidate := string(runes[i:end])
		scheme := ""
		switch {
		case strings.HasPrefix(candidate, "https://"):
			scheme = "https://"
		case strings.HasPrefix(candidate, "http://"):
			scheme = "http://"
		}
		if scheme == "" || len(candidate) == len(scheme) {
			i++
			continue
		}
		spans = append(spans, linkSpan{start: i, end: end, url: candidate})
		i = end
	}
	return spans
}

func hasPrefixAt(runes []rune, at int, prefix string) bool {
	for _, r := range prefix {
		if at >= len(runes) || runes[at] != r {
			return false
		}
		at++
	}
	return true
}

func isLinkTerminator(r rune) bool {
	return unicode.IsSpace(r) || r == ']'
}
