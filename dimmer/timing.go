package dimmer

import (
	"errors"
	"fmt"
	"time"
)

// Timing holds every constant the dimmer runs on. All waits go through the
// Delayer, so precision is that of the delay primitive plus loop overhead.
type Timing struct {
	// Steps is the ramp resolution. One PWM period lasts Steps units and the
	// duty cycle grows by one unit per step.
	Steps int
	// Unit is the PWM time unit.
	Unit time.Duration
	// Durations are the nominal total ramp times of T1..T4.
	Durations [NumLevels]time.Duration

	DebounceSettle time.Duration
	FeedbackHold   time.Duration
	ToggleSettle   time.Duration
	ToggleHold     time.Duration
	PollInterval   time.Duration
}

// DefaultTiming returns 20 steps of 1ms and presets of 5, 8, 11 and 14s.
func DefaultTiming() Timing {
	return Timing{
		Steps:          20,
		Unit:           time.Millisecond,
		Durations:      [NumLevels]time.Duration{5 * time.Second, 8 * time.Second, 11 * time.Second, 14 * time.Second},
		DebounceSettle: 10 * time.Millisecond,
		FeedbackHold:   time.Second,
		ToggleSettle:   10 * time.Millisecond,
		ToggleHold:     500 * time.Millisecond,
		PollInterval:   time.Millisecond,
	}
}

// Validate rejects configurations the ramp cannot run with.
func (t Timing) Validate() error {
	if t.Steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", t.Steps)
	}
	if t.Unit <= 0 {
		return fmt.Errorf("time unit must be positive, got %s", t.Unit)
	}
	var errs []error
	for i, d := range t.Durations {
		level := DurationLevel(i)
		if d < t.rampQuantum() {
			errs = append(errs, fmt.Errorf("duration %s (%s) is shorter than one pass of the ramp (%s)", level, d, t.rampQuantum()))
		}
	}
	if t.DebounceSettle < 0 || t.ToggleSettle < 0 {
		errs = append(errs, errors.New("settle intervals must not be negative"))
	}
	if t.FeedbackHold < 0 || t.ToggleHold < 0 {
		errs = append(errs, errors.New("hold intervals must not be negative"))
	}
	if t.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", t.PollInterval))
	}
	return errors.Join(errs...)
}

// Period is the length of one PWM sub-cycle.
func (t Timing) Period() time.Duration {
	return time.Duration(t.Steps) * t.Unit
}

// rampQuantum is the time the ramp takes with a repeat count of one.
func (t Timing) rampQuantum() time.Duration {
	return time.Duration(t.Steps) * t.Period()
}

// RepeatCount is how often each duty step's sub-cycle is repeated so that
// the whole ramp takes roughly the nominal duration of l.
func (t Timing) RepeatCount(l DurationLevel) int {
	return int(t.Durations[l] / t.rampQuantum())
}

// SubCycle returns the high and low time of one period at the given step.
// They always add up to Period.
func (t Timing) SubCycle(step int) (high, low time.Duration) {
	high = time.Duration(step) * t.Unit
	low = time.Duration(t.Steps-step) * t.Unit
	return high, low
}
