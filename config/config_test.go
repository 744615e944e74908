package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/godimmer/dimmer"
)

const validDimmer = `
Dimmer:
  Steps: 20
  TimeUnit: 1ms
  Durations: [5s, 8s, 11s, 14s]
  DebounceSettle: 10ms
  FeedbackHold: 1s
  ToggleSettle: 10ms
  ToggleHold: 500ms
  PollInterval: 1ms
`

const validHardware = `
Hardware:
  GPIOLibrary: "periph.io"
  Inputs:
    Start: 17
    Cycle: 27
    Toggle: 22
  Outputs:
    Progress: [5, 6, 13, 19]
    Complete: 26
    PWM: 18
`

const validLogging = `
Logging:
  TUI:
    Level: "DEBUG"
    Format: "text"
    File: "/tmp/godimmer-tui.log"
  HW:
    Level: "WARN"
    Format: "json"
    File: "/var/log/godimmer-hw.log"
Web:
  Enabled: true
  Address: ":8080"
`

func getBaseConfig() string {
	return validDimmer + validHardware + validLogging
}

func createConfigFile(t *testing.T, configData string) string {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, CONFILE)
	err := os.WriteFile(configFile, []byte(configData), 0o644)
	if err != nil {
		t.Fatalf("Failed to write dummy config file: %v", err)
	}
	return configFile
}

func TestReadConfig(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())

	conf, err := ReadConfig(configFile)
	require.NoError(t, err, "ReadConfig should not return an error")

	assert.Equal(t, configFile, conf.Configfile)
	assert.Equal(t, 20, conf.Dimmer.Steps)
	assert.Equal(t, time.Millisecond, conf.Dimmer.TimeUnit)
	assert.Equal(t, []time.Duration{5 * time.Second, 8 * time.Second, 11 * time.Second, 14 * time.Second}, conf.Dimmer.Durations)
	assert.Equal(t, 500*time.Millisecond, conf.Dimmer.ToggleHold)

	assert.Equal(t, GPIOPeriph, conf.Hardware.GPIOLibrary)
	assert.Equal(t, 22, conf.Hardware.Inputs.Toggle)
	assert.Equal(t, []int{5, 6, 13, 19}, conf.Hardware.Outputs.Progress)
	assert.Equal(t, 18, conf.Hardware.Outputs.PWM)

	assert.Equal(t, "DEBUG", conf.Logging.TUI.Level)
	assert.Equal(t, "json", conf.Logging.HW.Format)
	assert.Equal(t, "/var/log/godimmer-hw.log", conf.Logging.HW.File)
	assert.True(t, conf.Web.Enabled)
}

func TestDimmerTiming(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	conf, err := ReadConfig(configFile)
	require.NoError(t, err)

	timing, err := conf.Dimmer.Timing()
	require.NoError(t, err)
	assert.Equal(t, dimmer.DefaultTiming(), timing, "the shipped config matches the built-in defaults")
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "can't open config file")
}

func TestReadConfig_UnknownField(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig()+"Bogus: 1\n")
	_, err := ReadConfig(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "can't decode config file")
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		message string
	}{
		{"zero steps", "Steps: 20", "Steps: 0", "steps must be greater than 0"},
		{"three durations", "[5s, 8s, 11s, 14s]", "[5s, 8s, 11s]", "exactly 4 Durations are required"},
		{"too short duration", "[5s, 8s, 11s, 14s]", "[5s, 8s, 11s, 100ms]", "duration T4"},
		{"unknown library", `GPIOLibrary: "periph.io"`, `GPIOLibrary: "wiringpi"`, "GPIOLibrary must be"},
		{"three progress LEDs", "Progress: [5, 6, 13, 19]", "Progress: [5, 6, 13]", "exactly 4 Progress outputs"},
		{"duplicate pin", "PWM: 18", "PWM: 17", "GPIO 17 is already used by Inputs.Start"},
		{"pin out of range", "Complete: 26", "Complete: 40", "must be between 0 and 27"},
		{"bad log level", `Level: "WARN"`, `Level: "LOUD"`, "unknown log level"},
		{"web without address", `Address: ":8080"`, `Address: ""`, "Address is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configData := strings.Replace(getBaseConfig(), tt.old, tt.new, 1)
			require.NotEqual(t, getBaseConfig(), configData, "replacement did not apply")
			configFile := createConfigFile(t, configData)

			_, err := ReadConfig(configFile)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
