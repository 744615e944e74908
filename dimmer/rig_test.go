package dimmer

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lautenbacher.net/godimmer/hal"
)

// virtualClock is a Delayer that advances a counter instead of sleeping and
// runs scheduled actions at their virtual time, in the middle of whatever
// delay spans them. That is how the edge context preempts a busy-wait.
type virtualClock struct {
	now    time.Duration
	events []scheduledAction
	calls  int
}

type scheduledAction struct {
	at time.Duration
	fn func()
}

func (c *virtualClock) Delay(d time.Duration) {
	c.calls++
	target := c.now + d
	for len(c.events) > 0 && c.events[0].at <= target {
		ev := c.events[0]
		c.events = c.events[1:]
		if ev.at > c.now {
			c.now = ev.at
		}
		ev.fn()
	}
	c.now = target
}

// At schedules fn at virtual time at.
func (c *virtualClock) At(at time.Duration, fn func()) {
	c.events = append(c.events, scheduledAction{at: at, fn: fn})
	sort.SliceStable(c.events, func(i, j int) bool { return c.events[i].at < c.events[j].at })
}

type levelChange struct {
	at    time.Duration
	level hal.Level
}

// rig is a controller on simulated pins with a virtual clock.
type rig struct {
	clock    *virtualClock
	start    *hal.SimPin
	cycle    *hal.SimPin
	toggle   *hal.SimPin
	progress [hal.NumProgress]*hal.SimPin
	complete *hal.SimPin
	pwm      *hal.SimPin
	pwmTrace []levelChange
	ctrl     *Controller
}

func newRig(t *testing.T, timing Timing) *rig {
	t.Helper()
	r := &rig{
		clock:    &virtualClock{},
		start:    hal.NewSimInput("start"),
		cycle:    hal.NewSimInput("cycle"),
		toggle:   hal.NewSimInput("toggle"),
		complete: hal.NewSimOutput("complete"),
		pwm:      hal.NewSimOutput("pwm"),
	}
	pins := hal.Pins{
		Start:    r.start,
		Cycle:    r.cycle,
		Toggle:   r.toggle,
		Complete: r.complete,
		PWM:      r.pwm,
	}
	for i := range r.progress {
		r.progress[i] = hal.NewSimOutput("progress")
		pins.Progress[i] = r.progress[i]
	}
	r.pwm.OnChange(func(_ string, l hal.Level) {
		r.pwmTrace = append(r.pwmTrace, levelChange{at: r.clock.now, level: l})
	})

	ctrl, err := New(pins, timing, r.clock)
	require.NoError(t, err)
	// The edge context does not share the control loop's clock.
	ctrl.toggle = NewToggleHandler(r.toggle, ctrl.dev, timing.ToggleSettle, hal.DelayFunc(func(time.Duration) {}))
	r.ctrl = ctrl
	return r
}

// pressAt holds the button down from at for length.
func (r *rig) pressAt(pin *hal.SimPin, at, length time.Duration) {
	r.clock.At(at, pin.Press)
	r.clock.At(at+length, pin.Release)
}

// toggleAt produces a clean falling edge on the toggle line at the given
// virtual time, as the platform's edge goroutine would.
func (r *rig) toggleAt(at time.Duration) {
	r.clock.At(at, func() {
		r.toggle.Press()
		r.ctrl.EdgeHandler()()
	})
	r.clock.At(at+50*time.Millisecond, r.toggle.Release)
}

func (r *rig) progressLevels() [hal.NumProgress]hal.Level {
	var levels [hal.NumProgress]hal.Level
	for i, p := range r.progress {
		levels[i] = p.Read()
	}
	return levels
}

func (r *rig) allOutputs() []hal.Level {
	levels := r.progressLevels()
	return append(levels[:], r.complete.Read(), r.pwm.Read())
}
