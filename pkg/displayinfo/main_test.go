package displayinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeDRM(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	write := func(dir, file, content string) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, file), []byte(content), 0o644))
	}
	write("card1-DP-2", "status", "connected\n")
	write("card1-DP-2", "enabled", "enabled\n")
	write("card1-DP-2", "edid", "\x00\xff\xff")
	write("card1-HDMI-A-1", "status", "disconnected\n")
	write("card1-HDMI-A-1", "enabled", "disabled\n")
	write("card1-HDMI-A-1", "edid", "")
	write("card0-eDP-1", "status", "connected\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "card1"), 0o755))

	old := Root
	Root = root
	t.Cleanup(func() { Root = old })
}

func TestConnectors(t *testing.T) {
	fakeDRM(t)

	got, err := Connectors()
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "card0", got[0].Card)
	assert.Equal(t, "eDP-1", got[0].Name)
	assert.Equal(t, "DP-2", got[1].Name)
	assert.Equal(t, "connected", got[1].Status)
	assert.True(t, got[1].Enabled)
	assert.Equal(t, "HDMI-A-1", got[2].Name)
	assert.False(t, got[2].Enabled)
}

func TestConnectorEDID(t *testing.T) {
	fakeDRM(t)

	data, err := ConnectorEDID("DP-2")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00\xff\xff"), data)

	_, err = ConnectorEDID("HDMI-A-1")
	assert.ErrorIs(t, err, ErrNoEDID)

	_, err = ConnectorEDID("eDP-1")
	assert.ErrorIs(t, err, ErrNoEDID)

	_, err = ConnectorEDID("DP-9")
	assert.ErrorIs(t, err, ErrNoEDID)
}
