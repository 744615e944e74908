package dimmer

import "fmt"

// DurationLevel selects one of the four total ramp durations.
type DurationLevel int

const (
	T1 DurationLevel = iota
	T2
	T3
	T4
)

// NumLevels is the number of duration presets.
const NumLevels = 4

func (l DurationLevel) String() string {
	if l < T1 || l > T4 {
		return fmt.Sprintf("DurationLevel(%d)", int(l))
	}
	return fmt.Sprintf("T%d", int(l)+1)
}

// Next returns the level after l; T4 wraps to T1.
func (l DurationLevel) Next() DurationLevel {
	return (l + 1) % NumLevels
}

// Advance is the cycle T1 -> T2 -> T3 -> T4 -> T1.
func Advance(l DurationLevel) DurationLevel {
	return l.Next()
}

// feedbackIndicators maps the level being left to the 1-based indicator
// that acknowledges the change.
var feedbackIndicators = [NumLevels]int{
	T1: 3,
	T2: 4,
	T3: 5,
	T4: 2,
}

func feedbackIndicator(prev DurationLevel) int {
	return feedbackIndicators[prev]
}
