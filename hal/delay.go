package hal

import (
	"runtime"
	"time"
)

// spinThreshold is the remaining time below which PreciseDelay stops
// sleeping and spins. The scheduler on a Raspberry Pi routinely oversleeps
// by well over 100µs.
const spinThreshold = 2 * time.Millisecond

// PreciseDelay sleeps for the bulk of d and busy-waits the remainder.
// It is the delay primitive used on real hardware.
var PreciseDelay Delayer = DelayFunc(preciseDelay)

// SleepDelay is a plain time.Sleep, good enough for the simulation.
var SleepDelay Delayer = DelayFunc(time.Sleep)

func preciseDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	if d > spinThreshold {
		time.Sleep(d - spinThreshold)
	}
	for time.Now().Before(deadline) {
		runtime.Gosched()
	}
}
