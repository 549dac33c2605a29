package command

import (
	"strings"
	"unicode/utf8"
)

// pathCommands complete their arguments against the filesystem.
var pathCommands = map[string]bool{
	"cd": true, "ls": true, "ll": true, "cat": true, "tree": true,
	"rm": true, "mkdir": true, "touch": true, "ln": true,
}

// Complete proposes completions for the last word of line. The first word
// completes against command names; arguments of path commands complete
// against the filesystem, directories only for cd. start is the rune offset
// of the word being completed.
func (h *Handler) Complete(line string) (int, []string) {
	if strings.TrimSpace(line) == "" {
		return 0, nil
	}
	wordStart := strings.LastIndexAny(line, " \t") + 1
	word := line[wordStart:]
	start := utf8.RuneCountInString(line[:wordStart])
	fields := strings.Fields(line[:wordStart])
	if len(fields) == 0 {
		return start, matchPrefix(Names(), word)
	}
	if !pathCommands[fields[0]] {
		return start, nil
	}
	return start, h.completePath(word, fields[0] == "cd")
}

func (h *Handler) completePath(partial string, dirsOnly bool) []string {
	dirPart, prefix := "", partial
	if idx := strings.LastIndex(partial, "/"); idx >= 0 {
		dirPart, prefix = partial[:idx+1], partial[idx+1:]
	}
	path := h.fs.Cwd()
	if dirPart != "" {
		path = h.fs.Normalize(dirPart)
	}
	entries, err := h.fs.List(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if dirsOnly && entry.Node.Kind != NodeDir {
			continue
		}
		if strings.HasPrefix(entry.Name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(entry.Name, prefix) {
			continue
		}
		name := entry.Name
		if entry.Node.Kind == NodeDir {
			name += "/"
		}
		out = append(out, dirPart+name)
	}
	return out
}

func matchPrefix(words []string, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
