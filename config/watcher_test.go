package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherSignalsOnWrite(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	w, err := NewWatcher(configFile)
	require.NoError(t, err)
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(configFile), "other.txt"), []byte("x"), 0o644))
	select {
	case <-w.Changes():
		t.Fatal("change on another file must not signal")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(configFile, []byte(getBaseConfig()), 0o644))
	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled after writing the config file")
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", CONFILE))
	require.Error(t, err)
}
