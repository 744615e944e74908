package config

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func getValidRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Dimmer: DimmerConfig{
			Steps:          16,
			TimeUnit:       time.Millisecond,
			Durations:      []time.Duration{4 * time.Second, 6 * time.Second, 8 * time.Second, 10 * time.Second},
			DebounceSettle: 5 * time.Millisecond,
			FeedbackHold:   500 * time.Millisecond,
			ToggleSettle:   5 * time.Millisecond,
			ToggleHold:     250 * time.Millisecond,
			PollInterval:   time.Millisecond,
		},
	}
}

func TestConfigHandler_Get(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	handler := ConfigHandler(configFile)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var rc RuntimeConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rc))
	assert.Equal(t, 20, rc.Dimmer.Steps)
	assert.Equal(t, 14*time.Second, rc.Dimmer.Durations[3])
}

func TestConfigHandler_SetValid(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	handler := ConfigHandler(configFile)

	body, err := json.Marshal(getValidRuntimeConfig())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	conf, err := ReadConfig(configFile)
	require.NoError(t, err, "the written file must read back")
	assert.Equal(t, getValidRuntimeConfig().Dimmer, conf.Dimmer)
	assert.Equal(t, []int{5, 6, 13, 19}, conf.Hardware.Outputs.Progress, "hardware settings are preserved")
	assert.Equal(t, ":8080", conf.Web.Address)

	raw, err := os.ReadFile(configFile)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &generic))
	assert.NotContains(t, generic, "RealHW", "runtime-only fields are not persisted")
}

func TestConfigHandler_SetValidation(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	before, err := os.ReadFile(configFile)
	require.NoError(t, err)
	handler := ConfigHandler(configFile)

	rc := getValidRuntimeConfig()
	rc.Dimmer.Steps = 0
	body, err := json.Marshal(rc)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "steps must be greater than 0")

	after, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, before, after, "an invalid config must not be written")
}

func TestConfigHandler_BadRequests(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	handler := ConfigHandler(configFile)

	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/config", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
