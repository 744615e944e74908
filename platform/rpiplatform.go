package platform

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"lautenbacher.net/godimmer/config"
	"lautenbacher.net/godimmer/hal"
)

// edgeWaitTimeout bounds how long the periph edge goroutine blocks before
// it looks at the stop channel again.
const edgeWaitTimeout = 100 * time.Millisecond

// rpioEdgePoll is how often the go-rpio edge register is checked.
const rpioEdgePoll = time.Millisecond

// RaspberryPiPlatform drives the dimmer's lines on a Raspberry Pi, either
// through periph.io or through go-rpio.
type RaspberryPiPlatform struct {
	*AbstractPlatform
	periphPins []gpio.PinIO
	rpioToggle *rpio.Pin
}

func NewRaspberryPiPlatform(conf *config.Config) *RaspberryPiPlatform {
	return &RaspberryPiPlatform{
		AbstractPlatform: newAbstractPlatform(conf),
	}
}

func (s *RaspberryPiPlatform) Start() error {
	hw := s.config.Hardware
	slog.Info("Initialise GPIO...", "library", hw.GPIOLibrary)

	var err error
	switch hw.GPIOLibrary {
	case config.GPIOPeriph:
		err = s.startPeriph(hw)
	case config.GPIORpio:
		err = s.startRpio(hw)
	default:
		err = fmt.Errorf("unknown GPIO library: %s", hw.GPIOLibrary)
	}
	if err != nil {
		return err
	}

	close(s.readyChan) // For RPi, we are ready immediately.
	return nil
}

func (s *RaspberryPiPlatform) Stop() {
	s.stopGoroutines()
	s.outputsLow()

	for _, pin := range s.periphPins {
		if err := pin.Halt(); err != nil {
			slog.Error("Error halting pin", "pin", pin.Name(), "error", err)
		}
	}
	s.periphPins = nil

	if s.rpioToggle != nil {
		s.rpioToggle.Detect(rpio.NoEdge)
		if err := rpio.Close(); err != nil {
			slog.Error("Error closing rpio", "error", err)
		}
		s.rpioToggle = nil
	}
}

// periph.io backend

type periphIn struct {
	pin gpio.PinIO
}

func (p periphIn) Read() hal.Level {
	return hal.Level(p.pin.Read())
}

type periphOut struct {
	pin gpio.PinIO
}

func (p periphOut) Out(l hal.Level) {
	if err := p.pin.Out(gpio.Level(l)); err != nil {
		slog.Error("Failed to drive pin", "pin", p.pin.Name(), "level", l, "error", err)
	}
}

func (s *RaspberryPiPlatform) periphPin(bcm int) (gpio.PinIO, error) {
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", bcm))
	if pin == nil {
		return nil, fmt.Errorf("failed to find pin GPIO%d", bcm)
	}
	s.periphPins = append(s.periphPins, pin)
	return pin, nil
}

func (s *RaspberryPiPlatform) periphInput(bcm int, edge gpio.Edge) (gpio.PinIO, error) {
	pin, err := s.periphPin(bcm)
	if err != nil {
		return nil, err
	}
	if err := pin.In(gpio.PullUp, edge); err != nil {
		return nil, fmt.Errorf("failed to set pin %d to input: %w", bcm, err)
	}
	return pin, nil
}

func (s *RaspberryPiPlatform) periphOutput(bcm int) (hal.OutputPin, error) {
	pin, err := s.periphPin(bcm)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to set pin %d to output: %w", bcm, err)
	}
	return periphOut{pin}, nil
}

func (s *RaspberryPiPlatform) startPeriph(hw config.HardwareConfig) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to init periph: %w", err)
	}

	start, err := s.periphInput(hw.Inputs.Start, gpio.NoEdge)
	if err != nil {
		return err
	}
	cycle, err := s.periphInput(hw.Inputs.Cycle, gpio.NoEdge)
	if err != nil {
		return err
	}
	toggle, err := s.periphInput(hw.Inputs.Toggle, gpio.FallingEdge)
	if err != nil {
		return err
	}
	s.pins.Start = periphIn{start}
	s.pins.Cycle = periphIn{cycle}
	s.pins.Toggle = periphIn{toggle}

	for i, bcm := range hw.Outputs.Progress {
		if s.pins.Progress[i], err = s.periphOutput(bcm); err != nil {
			return err
		}
	}
	if s.pins.Complete, err = s.periphOutput(hw.Outputs.Complete); err != nil {
		return err
	}
	if s.pins.PWM, err = s.periphOutput(hw.Outputs.PWM); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.periphEdgeDriver(toggle)
	return nil
}

func (s *RaspberryPiPlatform) periphEdgeDriver(toggle gpio.PinIO) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			slog.Info("Ending edge driver go-routine (periph.io)")
			return
		default:
		}
		if toggle.WaitForEdge(edgeWaitTimeout) {
			s.fireEdge()
		}
	}
}

// go-rpio backend

type rpioIn struct {
	pin rpio.Pin
}

func (p rpioIn) Read() hal.Level {
	return p.pin.Read() == rpio.High
}

type rpioOut struct {
	pin rpio.Pin
}

func (p rpioOut) Out(l hal.Level) {
	if l {
		p.pin.High()
	} else {
		p.pin.Low()
	}
}

func rpioInput(bcm int) rpio.Pin {
	pin := rpio.Pin(bcm)
	pin.Input()
	pin.PullUp()
	return pin
}

func rpioOutput(bcm int) hal.OutputPin {
	pin := rpio.Pin(bcm)
	pin.Output()
	pin.Low()
	return rpioOut{pin}
}

func (s *RaspberryPiPlatform) startRpio(hw config.HardwareConfig) error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open rpio: %w", err)
	}

	toggle := rpioInput(hw.Inputs.Toggle)
	toggle.Detect(rpio.FallEdge)
	s.rpioToggle = &toggle

	s.pins.Start = rpioIn{rpioInput(hw.Inputs.Start)}
	s.pins.Cycle = rpioIn{rpioInput(hw.Inputs.Cycle)}
	s.pins.Toggle = rpioIn{toggle}
	for i, bcm := range hw.Outputs.Progress {
		s.pins.Progress[i] = rpioOutput(bcm)
	}
	s.pins.Complete = rpioOutput(hw.Outputs.Complete)
	s.pins.PWM = rpioOutput(hw.Outputs.PWM)

	s.wg.Add(1)
	go s.rpioEdgeDriver(toggle)
	return nil
}

// rpioEdgeDriver polls the edge detect register; go-rpio has no blocking
// wait.
func (s *RaspberryPiPlatform) rpioEdgeDriver(toggle rpio.Pin) {
	defer s.wg.Done()
	ticker := time.NewTicker(rpioEdgePoll)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			slog.Info("Ending edge driver go-routine (rpio)")
			return
		case <-ticker.C:
			if toggle.EdgeDetected() {
				s.fireEdge()
			}
		}
	}
}
