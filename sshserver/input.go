package sshserver

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"pkt.systems/retroterm/core"
)

type inputKind int

const (
	inputKey inputKind = iota
	inputClick
	inputWheel
	inputEOF
)

// inputEvent is one decoded unit of client input. Click cells are zero-based.
type inputEvent struct {
	kind  inputKind
	key   core.Key
	col   int
	row   int
	delta int
}

func keyEvent(kind core.KeyKind) inputEvent {
	return inputEvent{kind: inputKey, key: core.Key{Kind: kind}}
}

var controlKeys = map[byte]core.KeyKind{
	'\r': core.KeyEnter,
	'\n': core.KeyEnter,
	0x7f: core.KeyBackspace,
	0x08: core.KeyBackspace,
	0x09: core.KeyTab,
	0x01: core.KeyCtrlA,
	0x03: core.KeyCtrlC,
	0x05: core.KeyCtrlE,
	0x0b: core.KeyCtrlK,
	0x0c: core.KeyCtrlL,
	0x15: core.KeyCtrlU,
	0x17: core.KeyCtrlW,
}

var csiKeys = map[string]core.KeyKind{
	"A":  core.KeyUp,
	"B":  core.KeyDown,
	"C":  core.KeyRight,
	"D":  core.KeyLeft,
	"H":  core.KeyHome,
	"F":  core.KeyEnd,
	"1~": core.KeyHome,
	"7~": core.KeyHome,
	"4~": core.KeyEnd,
	"8~": core.KeyEnd,
	"3~": core.KeyDelete,
	"5~": core.KeyPageUp,
	"6~": core.KeyPageDown,
}

var ss3Keys = map[byte]core.KeyKind{
	'A': core.KeyUp,
	'B': core.KeyDown,
	'C': core.KeyRight,
	'D': core.KeyLeft,
	'H': core.KeyHome,
	'F': core.KeyEnd,
}

// readInput decodes keys and SGR mouse reports until r fails. The channel is
// closed on return.
func readInput(r io.Reader, out chan<- inputEvent) {
	defer close(out)
	br := bufio.NewReader(r)
	lastWasCR := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		if b == 0x1b {
			readEscape(br, out)
			continue
		}
		if b == 0x04 {
			out <- inputEvent{kind: inputEOF}
			continue
		}
		if kind, ok := controlKeys[b]; ok {
			out <- keyEvent(kind)
			lastWasCR = b == '\r'
			continue
		}
		if b < 0x20 {
			continue
		}
		if b < utf8.RuneSelf {
			out <- inputEvent{kind: inputKey, key: core.RuneKey(rune(b))}
			continue
		}
		_ = br.UnreadByte()
		rn, _, err := br.ReadRune()
		if err != nil {
			return
		}
		out <- inputEvent{kind: inputKey, key: core.RuneKey(rn)}
	}
}

func readEscape(br *bufio.Reader, out chan<- inputEvent) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case '[':
		readCSI(br, out)
	case 'O':
		next, err := br.ReadByte()
		if err != nil {
			return
		}
		if kind, ok := ss3Keys[next]; ok {
			out <- keyEvent(kind)
		}
	}
}

func readCSI(br *bufio.Reader, out chan<- inputEvent) {
	seq := []byte{}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 16 {
			return
		}
	}
	s := string(seq)
	if strings.HasPrefix(s, "<") {
		if ev, ok := parseSGRMouse(s); ok {
			out <- ev
		}
		return
	}
	if kind, ok := csiKeys[s]; ok {
		out <- keyEvent(kind)
	}
}

// parseSGRMouse decodes "<b;x;yM" press and "<b;x;ym" release reports.
// Only left presses and wheel motion produce events.
func parseSGRMouse(s string) (inputEvent, bool) {
	final := s[len(s)-1]
	fields := strings.Split(s[1:len(s)-1], ";")
	if len(fields) != 3 || final != 'M' {
		return inputEvent{}, false
	}
	var vals [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return inputEvent{}, false
		}
		vals[i] = v
	}
	button, col, row := vals[0], vals[1]-1, vals[2]-1
	switch {
	case button&64 != 0:
		delta := -1
		if button&1 != 0 {
			delta = 1
		}
		return inputEvent{kind: inputWheel, delta: delta}, true
	case button&3 == 0 && button&32 == 0:
		return inputEvent{kind: inputClick, col: col, row: row}, true
	}
	return inputEvent{}, false
}
