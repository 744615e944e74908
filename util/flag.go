package util

import "sync/atomic"

// Flag is a boolean that is set from one goroutine and consumed from
// another. It is the only kind of state allowed to cross from an edge
// handler into the control loop.
//
// Any number of Set calls before a Consume collapse into a single true.
type Flag struct {
	v atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() {
	f.v.Store(true)
}

// Pending reports whether the flag is raised without clearing it.
func (f *Flag) Pending() bool {
	return f.v.Load()
}

// Consume clears the flag and reports whether it was raised.
func (f *Flag) Consume() bool {
	return f.v.Swap(false)
}
