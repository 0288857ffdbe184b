package config

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Default().SaveFile(path))

	changes := make(chan *Settings, 4)
	w, err := Watch(path, func(s *Settings) { changes <- s })
	require.NoError(t, err)
	defer w.Close()

	s := Default()
	s.KeyMode = "raw"
	require.NoError(t, s.SaveFile(path))

	select {
	case got := <-changes:
		assert.Equal(t, "raw", got.KeyMode)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}
}

func TestWatcherSkipsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Default().SaveFile(path))

	changes := make(chan *Settings, 4)
	w, err := Watch(path, func(s *Settings) { changes <- s })
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, `{"key_mode": "nope"}`)

	select {
	case got := <-changes:
		t.Fatalf("unexpected reload %+v", got)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherCloseWaitsForReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Default().SaveFile(path))

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	w, err := Watch(path, func(*Settings) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
	})
	require.NoError(t, err)

	s := Default()
	s.KeyMode = "raw"
	require.NoError(t, s.SaveFile(path))

	select {
	case <-entered:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}

	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while a reload was running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not return")
	}

	// No callbacks after Close.
	before := calls.Load()
	s.KeyMode = "keysyms"
	require.NoError(t, s.SaveFile(path))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, before, calls.Load())
}
