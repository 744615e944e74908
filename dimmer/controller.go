// Package dimmer implements a single-channel LED soft-start: a software PWM
// ramp, a four-preset duration selector, and a toggle line that can preempt
// either of them.
package dimmer

import (
	"context"
	"fmt"
	"log/slog"

	"lautenbacher.net/godimmer/hal"
	"lautenbacher.net/godimmer/util"
)

// Controller is the dimmer's control loop. Everything except the toggle
// handler runs on the goroutine that calls Run or Poll.
type Controller struct {
	dev      *Device
	out      *outputs
	timing   Timing
	delay    hal.Delayer
	start    *Debouncer
	cycle    *Debouncer
	selector *Selector
	engine   *Engine
	toggle   *ToggleHandler
	status   *util.AtomicEvent[Status]

	ramping     bool
	step        int
	lastOutcome string
}

// New wires a controller to pins. All outputs are driven low.
func New(pins hal.Pins, timing Timing, delay hal.Delayer) (*Controller, error) {
	if err := timing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing: %w", err)
	}
	if err := pins.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pins: %w", err)
	}

	dev := &Device{Selected: T1}
	out := newOutputs(pins)
	c := &Controller{
		dev:    dev,
		out:    out,
		timing: timing,
		delay:  delay,
		start:  NewDebouncer("start", pins.Start, timing.DebounceSettle, delay),
		cycle:  NewDebouncer("cycle", pins.Cycle, timing.DebounceSettle, delay),
		toggle: NewToggleHandler(pins.Toggle, dev, timing.ToggleSettle, hal.SleepDelay),
		status: util.NewAtomicEvent[Status](),
	}
	c.selector = &Selector{dev: dev, out: out, timing: timing, delay: delay}
	c.engine = &Engine{
		dev:      dev,
		out:      out,
		progress: &ProgressIndicator{out: out, steps: timing.Steps},
		cancel:   c.start,
		timing:   timing,
		delay:    delay,
		onStep:   c.rampStep,
	}

	out.all(hal.Low)
	c.publish()
	return c, nil
}

// EdgeHandler returns the function the platform must call on every falling
// edge of the toggle line.
func (c *Controller) EdgeHandler() func() {
	return c.toggle.OnFallingEdge
}

// Status returns the stream of status snapshots.
func (c *Controller) Status() *util.AtomicEvent[Status] {
	return c.status
}

// Run polls until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	slog.Info("Dimmer control loop started", "steps", c.timing.Steps, "unit", c.timing.Unit, "selected", c.dev.Selected)
	for ctx.Err() == nil {
		c.Poll(ctx)
	}
	slog.Info("Dimmer control loop stopped")
}

// Poll runs one iteration of the control loop. A pending toggle is always
// serviced first; otherwise the start and cycle buttons are checked.
func (c *Controller) Poll(ctx context.Context) {
	if c.dev.ConsumeToggle() {
		c.togglePower()
		return
	}
	if c.start.Read() == Pressed {
		c.startPressed(ctx)
		return
	}
	if c.cycle.Read() == Pressed {
		c.selector.Cycle(ctx)
		c.publish()
		return
	}
	c.delay.Delay(c.timing.PollInterval)
}

func (c *Controller) togglePower() {
	c.dev.Power = !c.dev.Power
	c.out.all(hal.Level(c.dev.Power))
	slog.Info("Power toggled", "power", c.dev.Power)
	c.publish()
	c.delay.Delay(c.timing.ToggleHold)
}

func (c *Controller) startPressed(ctx context.Context) {
	if c.dev.Power {
		c.out.all(hal.Low)
		c.dev.Power = false
		slog.Info("Switched off")
		c.publish()
		return
	}

	slog.Info("Soft-start begins", "level", c.dev.Selected, "nominal", c.timing.Durations[c.dev.Selected], "repeats", c.timing.RepeatCount(c.dev.Selected))
	c.ramping = true
	c.step = 0
	c.publish()

	outcome := c.engine.Run(ctx)

	c.ramping = false
	c.lastOutcome = outcome.String()
	slog.Info("Soft-start ended", "outcome", outcome, "power", c.dev.Power)
	c.publish()
}

func (c *Controller) rampStep(state RampState) {
	c.step = state.DutyStep + 1
	c.publish()
}

func (c *Controller) publish() {
	st := Status{
		Level:       c.dev.Selected.String(),
		Nominal:     c.timing.Durations[c.dev.Selected].String(),
		Power:       c.dev.Power,
		Ramping:     c.ramping,
		Step:        c.step,
		Steps:       c.timing.Steps,
		LastOutcome: c.lastOutcome,
	}
	if c.dev.Power {
		st.Progress = 100
	} else if c.ramping {
		st.Progress = c.step * 100 / c.timing.Steps
	}
	c.status.Send(st)
}
