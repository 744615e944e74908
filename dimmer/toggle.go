package dimmer

import (
	"sync/atomic"
	"time"

	"lautenbacher.net/godimmer/hal"
)

// ToggleHandler runs in the edge context of the toggle line. After a falling
// edge it lets the line settle, and if the line is still active it raises
// the device's toggle request. It touches nothing else.
type ToggleHandler struct {
	line   hal.InputPin
	dev    *Device
	settle time.Duration
	delay  hal.Delayer
	busy   atomic.Bool
}

func NewToggleHandler(line hal.InputPin, dev *Device, settle time.Duration, delay hal.Delayer) *ToggleHandler {
	return &ToggleHandler{
		line:   line,
		dev:    dev,
		settle: settle,
		delay:  delay,
	}
}

// OnFallingEdge must be called for every falling edge on the toggle line.
// Edges arriving while a previous one is still settling are dropped.
func (h *ToggleHandler) OnFallingEdge() {
	if !h.busy.CompareAndSwap(false, true) {
		return
	}
	defer h.busy.Store(false)

	h.delay.Delay(h.settle)
	if h.line.Read() == hal.Low {
		h.dev.RequestToggle()
	}
}
