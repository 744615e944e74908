package dimmer

import "lautenbacher.net/godimmer/hal"

const (
	completeIndex = hal.NumProgress
	pwmIndex      = hal.NumProgress + 1
	numOutputs    = hal.NumProgress + 2
)

// outputs latches the level of every output line so individual lines can
// be inverted without reading them back.
type outputs struct {
	pins   [numOutputs]hal.OutputPin
	levels [numOutputs]hal.Level
}

func newOutputs(p hal.Pins) *outputs {
	o := &outputs{}
	copy(o.pins[:], p.Progress[:])
	o.pins[completeIndex] = p.Complete
	o.pins[pwmIndex] = p.PWM
	return o
}

func (o *outputs) set(i int, l hal.Level) {
	o.levels[i] = l
	o.pins[i].Out(l)
}

func (o *outputs) invert(i int) {
	o.set(i, !o.levels[i])
}

func (o *outputs) all(l hal.Level) {
	for i := range o.pins {
		o.set(i, l)
	}
}

// indicator converts a 1-based indicator number (1-4 progress, 5 complete)
// to an output index.
func indicator(n int) int {
	return n - 1
}
