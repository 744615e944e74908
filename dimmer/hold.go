package dimmer

import (
	"context"
	"time"

	"lautenbacher.net/godimmer/hal"
)

// holdUnlessToggled waits d in slices, giving up as soon as a toggle is
// pending or ctx is done. It reports whether the full interval elapsed.
func holdUnlessToggled(ctx context.Context, dev *Device, delay hal.Delayer, d, slice time.Duration) bool {
	for waited := time.Duration(0); waited < d; {
		if dev.TogglePending() || ctx.Err() != nil {
			return false
		}
		step := min(slice, d-waited)
		delay.Delay(step)
		waited += step
	}
	return true
}
