package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lautenbacher.net/godimmer/dimmer"
	"lautenbacher.net/godimmer/hal"
)

const CONFILE = "config.yml"

const (
	GPIOPeriph = "periph.io"
	GPIORpio   = "rpio"
)

// maxBCM is the highest GPIO number on the 40 pin header.
const maxBCM = 27

type Config struct {
	RealHW     bool   `yaml:"-"`
	Configfile string `yaml:"-"`

	Dimmer   DimmerConfig   `yaml:"Dimmer"`
	Hardware HardwareConfig `yaml:"Hardware"`
	Logging  LoggingConfig  `yaml:"Logging"`
	Web      WebConfig      `yaml:"Web"`
}

type DimmerConfig struct {
	Steps          int             `yaml:"Steps" json:"Steps"`
	TimeUnit       time.Duration   `yaml:"TimeUnit" json:"TimeUnit"`
	Durations      []time.Duration `yaml:"Durations,flow" json:"Durations"`
	DebounceSettle time.Duration   `yaml:"DebounceSettle" json:"DebounceSettle"`
	FeedbackHold   time.Duration   `yaml:"FeedbackHold" json:"FeedbackHold"`
	ToggleSettle   time.Duration   `yaml:"ToggleSettle" json:"ToggleSettle"`
	ToggleHold     time.Duration   `yaml:"ToggleHold" json:"ToggleHold"`
	PollInterval   time.Duration   `yaml:"PollInterval" json:"PollInterval"`
}

type HardwareConfig struct {
	GPIOLibrary string           `yaml:"GPIOLibrary"`
	Inputs      InputPinsConfig  `yaml:"Inputs"`
	Outputs     OutputPinsConfig `yaml:"Outputs"`
}

// InputPinsConfig and OutputPinsConfig hold BCM GPIO numbers.
type InputPinsConfig struct {
	Start  int `yaml:"Start"`
	Cycle  int `yaml:"Cycle"`
	Toggle int `yaml:"Toggle"`
}

type OutputPinsConfig struct {
	Progress []int `yaml:"Progress,flow"`
	Complete int   `yaml:"Complete"`
	PWM      int   `yaml:"PWM"`
}

type LoggingConfig struct {
	TUI LogConfig `yaml:"TUI"`
	HW  LogConfig `yaml:"HW"`
}

type LogConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

type WebConfig struct {
	Enabled bool   `yaml:"Enabled"`
	Address string `yaml:"Address"`
}

// ReadConfig loads and validates the configuration file.
func ReadConfig(cfile string) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	var conf Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	conf.Configfile = cfile

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return &conf, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Dimmer.Timing(); err != nil {
		errs = append(errs, fmt.Errorf("Dimmer: %w", err))
	}
	if err := c.Hardware.validate(); err != nil {
		errs = append(errs, fmt.Errorf("Hardware: %w", err))
	}
	if err := c.Logging.TUI.validate(); err != nil {
		errs = append(errs, fmt.Errorf("Logging.TUI: %w", err))
	}
	if err := c.Logging.HW.validate(); err != nil {
		errs = append(errs, fmt.Errorf("Logging.HW: %w", err))
	}
	if c.Web.Enabled && c.Web.Address == "" {
		errs = append(errs, errors.New("Web: Address is required when the web API is enabled"))
	}
	return errors.Join(errs...)
}

// Timing converts the dimmer section into validated ramp timing.
func (d DimmerConfig) Timing() (dimmer.Timing, error) {
	if len(d.Durations) != dimmer.NumLevels {
		return dimmer.Timing{}, fmt.Errorf("exactly %d Durations are required, got %d", dimmer.NumLevels, len(d.Durations))
	}
	t := dimmer.Timing{
		Steps:          d.Steps,
		Unit:           d.TimeUnit,
		DebounceSettle: d.DebounceSettle,
		FeedbackHold:   d.FeedbackHold,
		ToggleSettle:   d.ToggleSettle,
		ToggleHold:     d.ToggleHold,
		PollInterval:   d.PollInterval,
	}
	copy(t.Durations[:], d.Durations)
	if err := t.Validate(); err != nil {
		return dimmer.Timing{}, err
	}
	return t, nil
}

func (h HardwareConfig) validate() error {
	var errs []error
	switch h.GPIOLibrary {
	case GPIOPeriph, GPIORpio:
	default:
		errs = append(errs, fmt.Errorf("GPIOLibrary must be %q or %q, got %q", GPIOPeriph, GPIORpio, h.GPIOLibrary))
	}
	if len(h.Outputs.Progress) != hal.NumProgress {
		errs = append(errs, fmt.Errorf("exactly %d Progress outputs are required, got %d", hal.NumProgress, len(h.Outputs.Progress)))
	}

	used := make(map[int]string)
	check := func(name string, pin int) {
		if pin < 0 || pin > maxBCM {
			errs = append(errs, fmt.Errorf("%s: GPIO %d must be between 0 and %d", name, pin, maxBCM))
			return
		}
		if other, dup := used[pin]; dup {
			errs = append(errs, fmt.Errorf("%s: GPIO %d is already used by %s", name, pin, other))
			return
		}
		used[pin] = name
	}
	check("Inputs.Start", h.Inputs.Start)
	check("Inputs.Cycle", h.Inputs.Cycle)
	check("Inputs.Toggle", h.Inputs.Toggle)
	for i, pin := range h.Outputs.Progress {
		check(fmt.Sprintf("Outputs.Progress[%d]", i), pin)
	}
	check("Outputs.Complete", h.Outputs.Complete)
	check("Outputs.PWM", h.Outputs.PWM)
	return errors.Join(errs...)
}

func (l LogConfig) validate() error {
	switch strings.ToUpper(l.Level) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	return nil
}
