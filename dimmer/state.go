package dimmer

import "lautenbacher.net/godimmer/util"

// Device is the dimmer's process-wide state. Selected and Power belong to
// the control loop alone; the toggle request is the one field an edge
// handler may touch, and only through RequestToggle.
type Device struct {
	Selected DurationLevel
	Power    bool

	toggle util.Flag
}

// RequestToggle asks the control loop to flip the power state. It is the
// only method that may be called from the edge context.
func (d *Device) RequestToggle() {
	d.toggle.Set()
}

// ConsumeToggle reads and clears the toggle request.
func (d *Device) ConsumeToggle() bool {
	return d.toggle.Consume()
}

// TogglePending reports a toggle request without consuming it, so that
// long-running steps can bail out and leave the request for the loop.
func (d *Device) TogglePending() bool {
	return d.toggle.Pending()
}
