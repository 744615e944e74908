package platform

import (
	"lautenbacher.net/godimmer/hal"
)

// Platform abstracts the real hardware away from the terminal simulation.
type Platform interface {
	// Start opens the GPIO lines (or starts the TUI).
	Start() error

	// Stop releases all platform resources and drives the outputs low.
	Stop()

	// Ready is closed once the platform can be used.
	Ready() <-chan bool

	// Pins returns the dimmer's lines. Only valid after Start.
	Pins() hal.Pins

	// SetEdgeHandler registers the function called from the platform's edge
	// goroutine on every falling edge of the toggle line.
	SetEdgeHandler(fn func())
}
