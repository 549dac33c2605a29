package core

import "strings"

// History is the command history with shell style navigation. index is the
// entry being shown, or -1 when the user is editing a fresh line.
type History struct {
	entries []string
	max     int
	index   int
	draft   string
}

// NewHistory returns a history holding at most max entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = defaultHistoryMax
	}
	return &History{max: max, index: -1}
}

const defaultHistoryMax = 200

// Add records entry unless it is blank or repeats the previous entry, and
// ends any navigation in progress.
func (h *History) Add(entry string) bool {
	h.index = -1
	h.draft = ""
	if strings.TrimSpace(entry) == "" {
		return false
	}
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		return false
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	return true
}

// Prev steps to the previous entry. current is remembered as the draft when
// navigation starts. At the oldest entry it stays put.
func (h *History) Prev(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.index < 0:
		h.draft = current
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	}
	return h.entries[h.index], true
}

// Next steps toward newer entries. Past the newest it returns the draft and
// leaves navigation.
func (h *History) Next() (string, bool) {
	if h.index < 0 {
		return "", false
	}
	if h.index >= len(h.entries)-1 {
		h.index = -1
		return h.draft, true
	}
	h.index++
	return h.entries[h.index], true
}

// Entries returns a copy of the recorded entries, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}
