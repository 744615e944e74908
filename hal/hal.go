// Package hal is the thin boundary between the dimmer logic and whatever
// drives the pins: periph.io, go-rpio, or the terminal simulation.
package hal

import (
	"errors"
	"fmt"
	"time"
)

// Level is the logic level of a digital line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "High"
	}
	return "Low"
}

// InputPin is a digital line the dimmer samples. All inputs are active-low
// with pull-ups, so an idle line reads High.
type InputPin interface {
	Read() Level
}

// OutputPin is a digital line the dimmer drives.
type OutputPin interface {
	Out(l Level)
}

// Delayer is the trusted blocking delay. Implementations must not return
// early; lateness is tolerated and not corrected by callers.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayFunc adapts a plain function to Delayer.
type DelayFunc func(time.Duration)

func (f DelayFunc) Delay(d time.Duration) { f(d) }

// NumProgress is the number of LEDs in the progress bar.
const NumProgress = 4

// Pins bundles every line the dimmer uses.
type Pins struct {
	Start    InputPin
	Cycle    InputPin
	Toggle   InputPin
	Progress [NumProgress]OutputPin
	Complete OutputPin
	PWM      OutputPin
}

// Validate checks that every line is wired.
func (p Pins) Validate() error {
	var errs []error
	if p.Start == nil {
		errs = append(errs, errors.New("start input is not wired"))
	}
	if p.Cycle == nil {
		errs = append(errs, errors.New("cycle input is not wired"))
	}
	if p.Toggle == nil {
		errs = append(errs, errors.New("toggle input is not wired"))
	}
	for i, out := range p.Progress {
		if out == nil {
			errs = append(errs, fmt.Errorf("progress output %d is not wired", i+1))
		}
	}
	if p.Complete == nil {
		errs = append(errs, errors.New("complete output is not wired"))
	}
	if p.PWM == nil {
		errs = append(errs, errors.New("pwm output is not wired"))
	}
	return errors.Join(errs...)
}
