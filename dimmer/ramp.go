package dimmer

import (
	"context"
	"time"

	"lautenbacher.net/godimmer/hal"
)

// Outcome is how a ramp ended.
type Outcome int

const (
	// Completed: full duty reached, power is on.
	Completed Outcome = iota
	// Aborted: a toggle request (or shutdown) interrupted the ramp. The
	// request is left pending for the control loop.
	Aborted
	// Cancelled: the start button was pressed again. Everything is off.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// RampState is the progress of a running ramp.
type RampState struct {
	DutyStep    int
	CycleRepeat int
}

// Engine bit-bangs the soft-start ramp on the PWM line.
type Engine struct {
	dev      *Device
	out      *outputs
	progress *ProgressIndicator
	cancel   *Debouncer
	timing   Timing
	delay    hal.Delayer

	// onStep is called after each duty step has run all its repeats.
	onStep func(RampState)
}

// Run ramps the duty cycle from 0 to (Steps-1)/Steps, lighting the progress
// bar as it goes, and finally drives the PWM line and the completion LED
// high. Between any two sub-cycles it checks for a toggle request and for a
// fresh press of the start button.
func (e *Engine) Run(ctx context.Context) Outcome {
	repeats := e.timing.RepeatCount(e.dev.Selected)

	for step := 0; step < e.timing.Steps; step++ {
		state := RampState{DutyStep: step, CycleRepeat: repeats}
		high, low := e.timing.SubCycle(step)
		for ; state.CycleRepeat > 0; state.CycleRepeat-- {
			if outcome, stop := e.interrupted(ctx); stop {
				return outcome
			}
			e.pulse(high, low)
		}
		e.progress.Update(step)
		if e.onStep != nil {
			e.onStep(state)
		}
	}
	if outcome, stop := e.interrupted(ctx); stop {
		return outcome
	}

	e.out.set(completeIndex, hal.High)
	e.out.set(pwmIndex, hal.High)
	e.dev.Power = true
	return Completed
}

func (e *Engine) pulse(high, low time.Duration) {
	if high > 0 {
		e.out.set(pwmIndex, hal.High)
		e.delay.Delay(high)
	}
	e.out.set(pwmIndex, hal.Low)
	e.delay.Delay(low)
}

func (e *Engine) interrupted(ctx context.Context) (Outcome, bool) {
	if e.dev.TogglePending() || ctx.Err() != nil {
		return Aborted, true
	}
	if e.cancel.Read() == Pressed {
		e.out.all(hal.Low)
		return Cancelled, true
	}
	return Completed, false
}
