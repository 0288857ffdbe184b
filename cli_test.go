package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.aimuz.me/screenkey/config"
)

func TestFlagsOverrideOnlyChanged(t *testing.T) {
	cmd := &cobra.Command{Use: "screenkey"}
	f := &flags{}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--key-mode", "raw",
		"--no-whitespace",
		"--ignore", "Caps_Lock",
		"--ignore", "Tab",
		"-t", "1.5",
	}))

	s := config.Default()
	s.BakMode = "full"
	s.Persist = true
	f.override(cmd)(s)

	assert.Equal(t, "raw", s.KeyMode)
	assert.False(t, s.VisSpace)
	assert.Equal(t, []string{"Caps_Lock", "Tab"}, s.Ignore)
	assert.Equal(t, 1.5, s.Timeout)

	// Untouched flags keep the stored values, not the flag defaults.
	assert.Equal(t, "full", s.BakMode)
	assert.True(t, s.Persist)
}

func TestShowSettings(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--show-settings", "--bak-mode", "normal", "--compr-cnt", "0"})
	require.NoError(t, cmd.Execute())

	var got config.Settings
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "normal", got.BakMode)
	assert.Equal(t, 0, got.ComprCnt)
	assert.Equal(t, "composed", got.KeyMode)
}

func TestInvalidFlagValue(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--show-settings", "--key-mode", "fancy"})
	assert.Error(t, cmd.Execute())
}
