package dimmer

import "lautenbacher.net/godimmer/hal"

// Quartile returns which progress LED (0-3) belongs to step out of steps.
func Quartile(step, steps int) int {
	q := step * hal.NumProgress / steps
	return min(max(q, 0), hal.NumProgress-1)
}

// ProgressIndicator fills the progress bar from left to right. It only ever
// switches LEDs on.
type ProgressIndicator struct {
	out   *outputs
	steps int
}

func (p *ProgressIndicator) Update(step int) {
	p.out.set(Quartile(step, p.steps), hal.High)
}
