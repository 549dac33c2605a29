package core

// KeyKind identifies a decoded key press.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyTab
	KeyCtrlC
	KeyCtrlL
	KeyCtrlA
	KeyCtrlE
	KeyCtrlU
	KeyCtrlK
	KeyCtrlW
)

var keyNames = map[string]KeyKind{
	"Enter":      KeyEnter,
	"Backspace":  KeyBackspace,
	"Delete":     KeyDelete,
	"ArrowLeft":  KeyLeft,
	"ArrowRight": KeyRight,
	"ArrowUp":    KeyUp,
	"ArrowDown":  KeyDown,
	"Home":       KeyHome,
	"End":        KeyEnd,
	"PageUp":     KeyPageUp,
	"PageDown":   KeyPageDown,
	"Tab":        KeyTab,
}

var ctrlKeys = map[string]KeyKind{
	"c": KeyCtrlC,
	"l": KeyCtrlL,
	"a": KeyCtrlA,
	"e": KeyCtrlE,
	"u": KeyCtrlU,
	"k": KeyCtrlK,
	"w": KeyCtrlW,
}

// Key is one key press. Rune is set for KeyRune only.
type Key struct {
	Kind KeyKind
	Rune rune
}

// RuneKey returns a printable key press.
func RuneKey(r rune) Key { return Key{Kind: KeyRune, Rune: r} }

// ParseKey maps a browser KeyboardEvent.key value to a Key. ctrl reports
// whether the Control modifier was held. Unknown names are rejected.
func ParseKey(name string, ctrl bool) (Key, bool) {
	if ctrl {
		kind, ok := ctrlKeys[name]
		return Key{Kind: kind}, ok
	}
	if kind, ok := keyNames[name]; ok {
		return Key{Kind: kind}, true
	}
	runes := []rune(name)
	if len(runes) == 1 && runes[0] >= 0x20 && runes[0] != 0x7f {
		return RuneKey(runes[0]), true
	}
	return Key{}, false
}
