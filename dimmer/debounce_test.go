package dimmer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lautenbacher.net/godimmer/hal"
)

func TestDebouncerIdleDoesNotWait(t *testing.T) {
	clock := &virtualClock{}
	pin := hal.NewSimInput("b")
	d := NewDebouncer("b", pin, 10*time.Millisecond, clock)

	assert.Equal(t, Released, d.Read())
	assert.Equal(t, 0, clock.calls, "an idle line must not cost a settle delay")
}

func TestDebouncerOnePressPerHold(t *testing.T) {
	clock := &virtualClock{}
	pin := hal.NewSimInput("b")
	d := NewDebouncer("b", pin, 10*time.Millisecond, clock)

	pin.Press()
	assert.Equal(t, Pressed, d.Read())
	assert.Equal(t, 10*time.Millisecond, clock.now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, Released, d.Read(), "holding the button must not repeat the press")
	}

	pin.Release()
	assert.Equal(t, Released, d.Read())
	pin.Press()
	assert.Equal(t, Pressed, d.Read(), "a new press after release is reported")
}

func TestDebouncerRejectsShortGlitch(t *testing.T) {
	clock := &virtualClock{}
	pin := hal.NewSimInput("b")
	d := NewDebouncer("b", pin, 10*time.Millisecond, clock)

	pin.Press()
	clock.At(4*time.Millisecond, pin.Release)
	assert.Equal(t, Released, d.Read())
	assert.Equal(t, Released, d.Read())
}

func TestDebouncerBouncyPressCountsOnce(t *testing.T) {
	clock := &virtualClock{}
	pin := hal.NewSimInput("b")
	d := NewDebouncer("b", pin, 10*time.Millisecond, clock)

	// Contact bounce on make, a firm hold, then bounce on break.
	pin.Press()
	clock.At(2*time.Millisecond, pin.Release)
	clock.At(4*time.Millisecond, pin.Press)
	clock.At(6*time.Millisecond, pin.Release)
	clock.At(8*time.Millisecond, pin.Press)
	clock.At(150*time.Millisecond, pin.Release)
	clock.At(151*time.Millisecond, pin.Press)
	clock.At(153*time.Millisecond, pin.Release)

	presses := 0
	for clock.now < 300*time.Millisecond {
		if d.Read() == Pressed {
			presses++
		}
		clock.Delay(time.Millisecond)
	}
	assert.Equal(t, 1, presses)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "Pressed", Pressed.String())
	assert.Equal(t, "Released", Released.String())
}
