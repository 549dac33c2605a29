package schema

// TerminalState is the input and scroll state of one terminal session.
type TerminalState struct {
	Input        string    `json:"input"`
	Cursor       int       `json:"cursor"`
	Prompt       string    `json:"prompt"`
	Mode         InputMode `json:"mode"`
	ScrollOffset int       `json:"scrollOffset"`
}

// BufferSnapshot is a read-only view of the scrollback for transports and tests.
type BufferSnapshot struct {
	Lines         []string
	TotalLines    int
	PhysicalLines int
	ScrollOffset  int
	AtBottom      bool
}
