package dimmer

import (
	"log/slog"
	"time"

	"lautenbacher.net/godimmer/hal"
)

// Event is what a debounced read reports.
type Event int

const (
	Released Event = iota
	Pressed
)

func (e Event) String() string {
	if e == Pressed {
		return "Pressed"
	}
	return "Released"
}

// Debouncer turns an active-low button into press edges. A low sample is
// only believed if the line is still low after the settle interval, and a
// press is reported once until the line is seen high again.
type Debouncer struct {
	name   string
	pin    hal.InputPin
	settle time.Duration
	delay  hal.Delayer
	held   bool
}

func NewDebouncer(name string, pin hal.InputPin, settle time.Duration, delay hal.Delayer) *Debouncer {
	return &Debouncer{
		name:   name,
		pin:    pin,
		settle: settle,
		delay:  delay,
	}
}

// Read samples the button. It blocks for the settle interval only when the
// line reads active and no press is outstanding.
func (d *Debouncer) Read() Event {
	if d.pin.Read() == hal.High {
		d.held = false
		return Released
	}
	if d.held {
		return Released
	}
	d.delay.Delay(d.settle)
	if d.pin.Read() == hal.High {
		slog.Debug("Rejected bounce", "button", d.name)
		return Released
	}
	d.held = true
	slog.Debug("Button pressed", "button", d.name)
	return Pressed
}
