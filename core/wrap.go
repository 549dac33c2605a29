package core

// Wrap reflows content into chunks of at most maxWidth codepoints.
// A break taken on a space consumes that space; a chunk without a space
// is hard cut at maxWidth and keeps every character.
func Wrap(content string, maxWidth int) []string {
	if maxWidth < 1 {
		maxWidth = 1
	}
	runes := []rune(content)
	if len(runes) <= maxWidth {
		return []string{content}
	}

	var chunks []string
	start := 0
	for len(runes)-start > maxWidth {
		end := start + maxWidth
		// A space exactly at the boundary is usable unless it is the last rune.
		scan := end
		if scan == len(runes)-1 {
			scan--
		}
		brk := -1
		for i := scan; i > start; i-- {
			if runes[i] == ' ' {
				brk = i
				break
			}
		}
		if brk < 0 {
			chunks = append(chunks, string(runes[start:end]))
			start = end
			continue
		}
		chunks = append(chunks, string(runes[start:brk]))
		start = brk + 1
	}
	chunks = append(chunks, string(runes[start:]))
	return chunks
}
