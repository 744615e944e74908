package platform

import (
	"log/slog"
	"sync"

	c "lautenbacher.net/godimmer/config"
	"lautenbacher.net/godimmer/hal"
)

// AbstractPlatform carries what the real and the simulated platform share:
// the edge handler, the stop signal for their goroutines and the shutdown
// guard.
type AbstractPlatform struct {
	config         *c.Config
	pins           hal.Pins
	edgeHandler    func()
	stopChan       chan struct{}
	wg             sync.WaitGroup
	readyChan      chan bool
	shutdownMutex  sync.RWMutex
	isShuttingDown bool
}

func newAbstractPlatform(conf *c.Config) *AbstractPlatform {
	return &AbstractPlatform{
		config:    conf,
		stopChan:  make(chan struct{}),
		readyChan: make(chan bool),
	}
}

func (s *AbstractPlatform) Ready() <-chan bool {
	return s.readyChan
}

func (s *AbstractPlatform) Pins() hal.Pins {
	return s.pins
}

// SetEdgeHandler may be called before or after Start.
func (s *AbstractPlatform) SetEdgeHandler(fn func()) {
	s.shutdownMutex.Lock()
	s.edgeHandler = fn
	s.shutdownMutex.Unlock()
}

// fireEdge runs the edge handler unless the platform is going down.
func (s *AbstractPlatform) fireEdge() {
	s.shutdownMutex.RLock()
	defer s.shutdownMutex.RUnlock()
	if s.isShuttingDown || s.edgeHandler == nil {
		return
	}
	slog.Debug("Falling edge on toggle line")
	s.edgeHandler()
}

func (s *AbstractPlatform) setInShutdown() {
	s.shutdownMutex.Lock()
	s.isShuttingDown = true
	s.shutdownMutex.Unlock()
}

// stopGoroutines signals every platform goroutine and waits for them.
func (s *AbstractPlatform) stopGoroutines() {
	s.setInShutdown()
	close(s.stopChan)
	s.wg.Wait()
}

// outputsLow drives every output line low.
func (s *AbstractPlatform) outputsLow() {
	for _, out := range s.pins.Progress {
		if out != nil {
			out.Out(hal.Low)
		}
	}
	for _, out := range []hal.OutputPin{s.pins.Complete, s.pins.PWM} {
		if out != nil {
			out.Out(hal.Low)
		}
	}
}
