package core

import (
	"strings"
	"time"
)

const (
	panicTypingDelay = 20 * time.Millisecond
	panicLineGap     = 700 * time.Millisecond
	panicFinalPause  = 1000 * time.Millisecond
)

var panicScript = []struct {
	text  string
	color string
}{
	{"CRITICAL SYSTEM ERROR", "error"},
	{"", ""},
	{"Deleting root filesystem...", "warning"},
	{"rm: removing /usr... ████████████░░░░ 75%", "warning"},
	{"rm: removing /var... ██████████████░░ 87%", "warning"},
	{"rm: removing /etc... ████████████████ 100%", "warning"},
	{"", ""},
	{"Filesystem table corrupted.", "error"},
	{"Kernel panic: Attempted to kill init!", "error"},
	{"System halt issued.", "error"},
	{"", ""},
	{"Emergency shutdown in 3...", "warning"},
	{"Emergency shutdown in 2...", "warning"},
	{"Emergency shutdown in 1...", "warning"},
	{"", ""},
	{"Shutdown failed. Recovery was possible.", "success"},
}

// PanicRoutine clears the screen, types a fake kernel panic and clears again.
func PanicRoutine() Routine {
	steps := []Routine{ClearScreen()}
	for _, line := range panicScript {
		if strings.HasPrefix(line.text, "rm: removing") {
			steps = append(steps, InstantLine(line.text, line.color))
		} else {
			steps = append(steps, TypeLine(line.text, panicTypingDelay, line.color))
		}
		steps = append(steps, Pause(panicLineGap))
	}
	steps = append(steps, Pause(panicFinalPause), ClearScreen())
	return Sequence(steps...)
}

// ShouldPanic reports whether a command line asks to remove the root
// filesystem with a recursive force flag, e.g. "sudo rm -rf /".
// cwdIsRoot lets "./" style targets count when the shell sits at "/".
func ShouldPanic(line string, cwdIsRoot bool) bool {
	parts := strings.Fields(line)
	if len(parts) < 4 || parts[0] != "sudo" || parts[1] != "rm" {
		return false
	}
	var recursive, force bool
	for _, part := range parts[2:] {
		if !strings.HasPrefix(part, "-") || strings.HasPrefix(part, "--") {
			continue
		}
		recursive = recursive || strings.ContainsAny(part, "rR")
		force = force || strings.Contains(part, "f")
	}
	if !recursive || !force {
		return false
	}
	for _, target := range parts[3:] {
		switch {
		case target == "/" || target == "/*":
			return true
		case (target == "./" || strings.HasPrefix(target, "./")) && cwdIsRoot:
			return true
		}
	}
	return false
}
