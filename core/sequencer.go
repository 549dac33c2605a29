package core

import (
	"context"
	"sync"
	"time"

	"pkt.systems/retroterm/schema"
)

// Step is the outcome of one atomic routine step.
type Step struct {
	Delay time.Duration
	Done  bool
}

// Sleep suspends the routine for d before its next step.
func Sleep(d time.Duration) Step { return Step{Delay: d} }

// Finished ends the routine.
func Finished() Step { return Step{Done: true} }

// Routine is a cooperative animation expressed as a state machine. Step is
// called with the session lock held and must not block.
type Routine interface {
	Step(stage *Stage) Step
}

// RoutineFunc adapts a function to a single step routine.
type RoutineFunc func(stage *Stage)

// Step runs the function once and finishes.
func (f RoutineFunc) Step(stage *Stage) Step {
	f(stage)
	return Finished()
}

// Sequencer plays one routine at a time on a stage. Steps run under lock;
// the lock is released while the routine sleeps.
type Sequencer struct {
	clock  Clock
	lock   sync.Locker
	stage  *Stage
	active bool

	// onStep runs after every step with the lock released.
	onStep func()
	// onDone runs with the lock held once the routine ends.
	onDone func(stage *Stage)
}

// NewSequencer returns a sequencer guarding stage with lock.
func NewSequencer(clock Clock, lock sync.Locker, stage *Stage) *Sequencer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Sequencer{clock: clock, lock: lock, stage: stage}
}

// Active reports whether a routine is in flight. Callers hold the lock.
func (q *Sequencer) Active() bool { return q.active }

// Run plays r to completion. Input stays disabled for the whole run. A
// second Run while one is active fails with ErrAnimationActive. A done ctx
// abandons the routine between steps.
func (q *Sequencer) Run(ctx context.Context, r Routine) error {
	q.lock.Lock()
	if q.active {
		q.lock.Unlock()
		return schema.ErrAnimationActive
	}
	q.active = true
	q.stage.SetInputMode(schema.InputDisabled)
	q.lock.Unlock()

	defer func() {
		q.lock.Lock()
		q.active = false
		q.stage.ClearLive()
		q.stage.SetScene(nil)
		if q.onDone != nil {
			q.onDone(q.stage)
		}
		q.lock.Unlock()
		if q.onStep != nil {
			q.onStep()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.lock.Lock()
		step := r.Step(q.stage)
		q.stage.SetInputMode(schema.InputDisabled)
		q.lock.Unlock()
		if q.onStep != nil {
			q.onStep()
		}
		if step.Done {
			return nil
		}
		if err := q.clock.Sleep(ctx, step.Delay); err != nil {
			return err
		}
	}
}
