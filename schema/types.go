package schema

import "fmt"

// LineKind classifies a buffered line and selects its default color.
type LineKind int

const (
	// LineNormal is plain text committed by an instant routine.
	LineNormal LineKind = iota
	// LineCommand echoes a submitted command line.
	LineCommand
	// LineOutput is command output.
	LineOutput
	// LineBoot is a finished boot task ending in " [OK]".
	LineBoot
	// LineTyping is a line revealed by the typewriter routine.
	LineTyping
	// LineSystem is a message from the terminal itself.
	LineSystem
)

func (k LineKind) String() string {
	switch k {
	case LineNormal:
		return "normal"
	case LineCommand:
		return "command"
	case LineOutput:
		return "output"
	case LineBoot:
		return "boot"
	case LineTyping:
		return "typing"
	case LineSystem:
		return "system"
	default:
		return "unknown"
	}
}

// InputMode gates whether the input line is drawn and keystrokes accepted.
type InputMode int

const (
	// InputNormal accepts keystrokes and draws the prompt.
	InputNormal InputMode = iota
	// InputProcessing is set while a submitted line is being handled.
	InputProcessing
	// InputDisabled is set for the full duration of an animation.
	InputDisabled
)

func (m InputMode) String() string {
	switch m {
	case InputNormal:
		return "normal"
	case InputProcessing:
		return "processing"
	case InputDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// SessionID identifies a terminal session owned by a host.
type SessionID string

// MarshalText encodes the mode by name.
func (m InputMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name written by MarshalText.
func (m *InputMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal":
		*m = InputNormal
	case "processing":
		*m = InputProcessing
	case "disabled":
		*m = InputDisabled
	default:
		return fmt.Errorf("unknown input mode %q", text)
	}
	return nil
}
