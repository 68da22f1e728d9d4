package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.FadeTime)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Millisecond, cfg.FadeInterval)
	assert.Equal(t, "auto", cfg.Backend)
	assert.Empty(t, cfg.IgnoreApps)
	assert.Empty(t, cfg.Overrides)
	assert.False(t, cfg.FocusedOnly)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("FSDIM_FADE_TIME", "2500")
	t.Setenv("FSDIM_IGNORE_APP", "Steam, Firefox")
	t.Setenv("FSDIM_OVERRIDE", "DELL U2720Q=70,LG HDR 4K=40")
	t.Setenv("FSDIM_FOCUSED_ONLY", "true")

	cfg, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, cfg.FadeTime)
	assert.Equal(t, []string{"Steam", "Firefox"}, cfg.IgnoreApps)
	assert.Equal(t, map[string]uint16{"DELL U2720Q": 70, "LG HDR 4K": 40}, cfg.Overrides)
	assert.True(t, cfg.FocusedOnly)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]struct {
		key   string
		value any
	}{
		"zero fade time":        {KeyFadeTime, 0},
		"negative poll":         {KeyPollInterval, -5},
		"interval over fade":    {KeyFadeInterval, 2000},
		"override without name": {KeyOverride, []string{"=50"}},
		"override too large":    {KeyOverride, []string{"X=70000"}},
		"unknown backend":       {KeyBackend, "wayland"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v := NewViper()
			v.Set(tt.key, tt.value)
			_, err := LoadConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestParseOverrides_NameWithEquals(t *testing.T) {
	got, err := parseOverrides([]string{"A=B=30"})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint16{"A=B": 30}, got)
}
