package command

import (
	"strings"
)

// Command represents a parsed shell line.
type Command struct {
	Name      string
	Args      []string
	Raw       string
	Remainder string
}

// Parse splits a shell line into a command name and arguments. Blank lines
// are rejected.
func Parse(input string) (Command, bool) {
	raw := strings.TrimSpace(input)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		Name:      fields[0],
		Args:      fields[1:],
		Raw:       raw,
		Remainder: remainderAfterTokens(raw, 1),
	}, true
}

func remainderAfterTokens(raw string, count int) string {
	i := 0
	remaining := count
	for remaining > 0 && i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		for i < len(raw) && !isSpace(raw[i]) {
			i++
		}
		remaining--
	}
	if i >= len(raw) {
		return ""
	}
	return strings.TrimSpace(raw[i:])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
