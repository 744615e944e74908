package hal

import (
	"sync"
	"sync/atomic"
)

// SimPin is an in-memory line usable both as input and output. The
// terminal simulation drives the inputs from key presses and renders the
// outputs; tests use it to script button presses.
type SimPin struct {
	name  string
	level atomic.Bool

	mu       sync.Mutex
	onChange func(name string, l Level)
}

// NewSimInput returns an idle, pulled-up input.
func NewSimInput(name string) *SimPin {
	p := &SimPin{name: name}
	p.level.Store(bool(High))
	return p
}

// NewSimOutput returns an output that starts Low.
func NewSimOutput(name string) *SimPin {
	return &SimPin{name: name}
}

func (p *SimPin) Name() string {
	return p.name
}

func (p *SimPin) Read() Level {
	return Level(p.level.Load())
}

// Out drives the line and reports real level changes to the change hook.
func (p *SimPin) Out(l Level) {
	if Level(p.level.Swap(bool(l))) == l {
		return
	}
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn(p.name, l)
	}
}

// Press pulls an active-low input down.
func (p *SimPin) Press() {
	p.Out(Low)
}

// Release lets an active-low input float back up.
func (p *SimPin) Release() {
	p.Out(High)
}

// OnChange installs fn to be called after every level change.
func (p *SimPin) OnChange(fn func(name string, l Level)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}
