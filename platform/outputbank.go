package platform

import (
	"sync"
	"time"

	"lautenbacher.net/godimmer/hal"
	"lautenbacher.net/godimmer/util"
)

var outputNames = [...]string{"LED1", "LED2", "LED3", "LED4", "LED5", "PWM"}

const (
	bankComplete = hal.NumProgress
	bankPWM      = hal.NumProgress + 1
)

// bankSnapshot is what the simulation renders.
type bankSnapshot struct {
	Levels [len(outputNames)]hal.Level
	Duty   float64
}

// outputBank backs the simulated output lines. It measures the duty cycle
// of the PWM line from its edges and publishes a snapshot on every change.
type outputBank struct {
	mu       sync.Mutex
	pins     [len(outputNames)]*hal.SimPin
	levels   [len(outputNames)]hal.Level
	lastRise time.Time
	lastFall time.Time
	high     time.Duration
	period   time.Duration
	now      func() time.Time
	events   *util.AtomicEvent[bankSnapshot]
}

func newOutputBank() *outputBank {
	b := &outputBank{
		now:    time.Now,
		events: util.NewAtomicEvent[bankSnapshot](),
	}
	for i, name := range outputNames {
		idx := i
		b.pins[i] = hal.NewSimOutput(name)
		b.pins[i].OnChange(func(_ string, l hal.Level) { b.changed(idx, l) })
	}
	return b
}

func (b *outputBank) wire(pins *hal.Pins) {
	for i := range pins.Progress {
		pins.Progress[i] = b.pins[i]
	}
	pins.Complete = b.pins[bankComplete]
	pins.PWM = b.pins[bankPWM]
}

func (b *outputBank) changed(idx int, l hal.Level) {
	b.mu.Lock()
	b.levels[idx] = l
	if idx == bankPWM {
		t := b.now()
		if l == hal.High {
			if !b.lastRise.IsZero() {
				b.period = t.Sub(b.lastRise)
			}
			b.lastRise = t
		} else {
			if !b.lastRise.IsZero() {
				b.high = t.Sub(b.lastRise)
			}
			b.lastFall = t
		}
	}
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.events.Send(snap)
}

func (b *outputBank) snapshot() bankSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// snapshotLocked treats a PWM line that has not moved for two periods as
// steady at 0% or 100%.
func (b *outputBank) snapshotLocked() bankSnapshot {
	snap := bankSnapshot{Levels: b.levels}
	t := b.now()
	pwm := b.levels[bankPWM]
	switch {
	case b.period <= 0:
		if pwm == hal.High {
			snap.Duty = 1
		}
	case pwm == hal.High && t.Sub(b.lastRise) > 2*b.period:
		snap.Duty = 1
	case pwm == hal.Low && t.Sub(b.lastFall) > 2*b.period:
		snap.Duty = 0
	default:
		snap.Duty = min(float64(b.high)/float64(b.period), 1)
	}
	return snap
}
