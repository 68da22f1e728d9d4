package cmd

import (
	"bytes"
	"testing"

	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"run", "screens", "detect", "brightness", "probe", "status", "kill"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_Flags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, key := range []string{
		manager.KeyIgnoreDisplay, manager.KeyIgnoreApp, manager.KeyFocusedOnly,
		manager.KeyFadeTime, manager.KeyPollInterval, manager.KeyFadeInterval,
		manager.KeyOverride, manager.KeyBackend, manager.KeyInhibitIdle,
		manager.KeyNotify, manager.KeyVerbose,
	} {
		assert.NotNil(t, flags.Lookup(key), key)
	}
	assert.Equal(t, "1000", flags.Lookup(manager.KeyFadeTime).DefValue)
	assert.Equal(t, "500", flags.Lookup(manager.KeyPollInterval).DefValue)
	assert.Equal(t, "10", flags.Lookup(manager.KeyFadeInterval).DefValue)
}

func TestBrightnessCommand_RejectsBadValue(t *testing.T) {
	err := brightnessCmd.RunE(brightnessCmd, []string{"DELL U2720Q", "bright"})
	assert.Error(t, err)
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	require.NoError(t, printYAML(rootCmd, map[string]int{"a": 1}))
	assert.Equal(t, "a: 1\n", buf.String())
}
