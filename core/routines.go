package core

import (
	"time"

	"pkt.systems/retroterm/schema"
)

// Timings used by the line routines.
const (
	SpinnerInterval = 60 * time.Millisecond
	BootLineGap     = 15 * time.Millisecond
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸"}

// OKSuffix marks a finished boot task.
const OKSuffix = " [OK]"

type bootPhase int

const (
	bootSpinning bootPhase = iota
	bootFinalizing
	bootDone
)

type bootLine struct {
	task  string
	color string
	phase bootPhase
	frame int
}

// BootLine spins a four frame spinner next to task, then commits "task [OK]".
func BootLine(task, color string) Routine {
	return &bootLine{task: task, color: color}
}

func (b *bootLine) Step(stage *Stage) Step {
	switch b.phase {
	case bootSpinning:
		stage.SetLive(b.task+" "+spinnerFrames[b.frame], schema.LineBoot, b.color)
		b.frame++
		if b.frame == len(spinnerFrames) {
			b.phase = bootFinalizing
		}
		return Sleep(SpinnerInterval)
	case bootFinalizing:
		stage.ClearLive()
		stage.Commit(b.task+OKSuffix, schema.LineBoot, b.color)
		b.phase = bootDone
	}
	return Finished()
}

type typingLine struct {
	text  []rune
	delay time.Duration
	color string
	shown int
	done  bool
}

// TypeLine reveals text one codepoint per delay and commits it after the last one.
func TypeLine(text string, delay time.Duration, color string) Routine {
	return &typingLine{text: []rune(text), delay: delay, color: color}
}

func (t *typingLine) Step(stage *Stage) Step {
	if t.done {
		return Finished()
	}
	if t.shown < len(t.text) {
		t.shown++
		stage.SetLive(string(t.text[:t.shown]), schema.LineTyping, t.color)
		return Sleep(t.delay)
	}
	stage.ClearLive()
	stage.Commit(string(t.text), schema.LineTyping, t.color)
	t.done = true
	return Finished()
}

// InstantLine commits text in a single step.
func InstantLine(text, color string) Routine {
	return RoutineFunc(func(stage *Stage) {
		stage.Commit(text, schema.LineNormal, color)
	})
}

// ClearScreen empties the buffer in a single step.
func ClearScreen() Routine {
	return RoutineFunc(func(stage *Stage) {
		stage.ClearScreen()
	})
}

type pause struct {
	d     time.Duration
	slept bool
}

// Pause suspends for d.
func Pause(d time.Duration) Routine {
	return &pause{d: d}
}

func (p *pause) Step(*Stage) Step {
	if p.slept {
		return Finished()
	}
	p.slept = true
	return Sleep(p.d)
}

type sequence struct {
	routines []Routine
	next     int
}

// Sequence plays routines back to back. Finished routines roll straight
// into the next one within the same step.
func Sequence(routines ...Routine) Routine {
	return &sequence{routines: routines}
}

func (s *sequence) Step(stage *Stage) Step {
	for s.next < len(s.routines) {
		step := s.routines[s.next].Step(stage)
		if !step.Done {
			return step
		}
		s.next++
	}
	return Finished()
}
