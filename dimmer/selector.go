package dimmer

import (
	"context"
	"log/slog"

	"lautenbacher.net/godimmer/hal"
)

// Selector cycles the selected ramp duration and acknowledges each change
// by flashing one indicator.
type Selector struct {
	dev    *Device
	out    *outputs
	timing Timing
	delay  hal.Delayer
}

// Cycle moves to the next duration. The flash inverts the indicator keyed by
// the level being left, holds, and inverts it back. A toggle request cuts the
// hold short and leaves the indicator as it is; the new level is committed
// either way. Cycle reports whether the acknowledgment ran to completion.
func (s *Selector) Cycle(ctx context.Context) bool {
	prev := s.dev.Selected
	next := Advance(prev)
	led := indicator(feedbackIndicator(prev))

	s.out.invert(led)
	completed := holdUnlessToggled(ctx, s.dev, s.delay, s.timing.FeedbackHold, s.timing.PollInterval)
	if completed {
		s.out.invert(led)
	}
	s.dev.Selected = next

	slog.Info("Duration changed", "from", prev, "to", next, "nominal", s.timing.Durations[next], "acknowledged", completed)
	return completed
}
