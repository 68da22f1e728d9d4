package manager

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hoppxi/fsdim/internal/backend"
	"github.com/hoppxi/fsdim/internal/fade"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FSDIM_FADE_TIME.
const EnvPrefix = "FSDIM"

// Config keys. They double as the long flag names.
const (
	KeyIgnoreDisplay = "ignore-display"
	KeyIgnoreApp     = "ignore-app"
	KeyFocusedOnly   = "focused-only"
	KeyFadeTime      = "fade-time"
	KeyPollInterval  = "poll-interval"
	KeyFadeInterval  = "fade-interval"
	KeyOverride      = "override"
	KeyBackend       = "backend"
	KeyInhibitIdle   = "inhibit-idle"
	KeyNotify        = "notify"
	KeyVerbose       = "verbose"
)

// Defaults in milliseconds.
const (
	DefaultFadeTime     = 1000
	DefaultPollInterval = 500
	DefaultFadeInterval = 10
)

type Config struct {
	IgnoreDisplays []string
	IgnoreApps     []string
	FocusedOnly    bool
	FadeTime       time.Duration
	PollInterval   time.Duration
	FadeInterval   time.Duration
	Overrides      map[string]uint16
	Backend        string
	InhibitIdle    bool
	Notify         bool
	Verbose        bool
}

func (c *Config) Timing() fade.Timing {
	return fade.Timing{Duration: c.FadeTime, Interval: c.FadeInterval}
}

// NewViper returns a viper instance with defaults and environment lookup
// set up. Callers bind their flags on top.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyFadeTime, DefaultFadeTime)
	v.SetDefault(KeyPollInterval, DefaultPollInterval)
	v.SetDefault(KeyFadeInterval, DefaultFadeInterval)
	v.SetDefault(KeyBackend, backend.Auto)
	return v
}

func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		IgnoreDisplays: list(v, KeyIgnoreDisplay),
		IgnoreApps:     list(v, KeyIgnoreApp),
		FocusedOnly:    v.GetBool(KeyFocusedOnly),
		FadeTime:       time.Duration(v.GetInt(KeyFadeTime)) * time.Millisecond,
		PollInterval:   time.Duration(v.GetInt(KeyPollInterval)) * time.Millisecond,
		FadeInterval:   time.Duration(v.GetInt(KeyFadeInterval)) * time.Millisecond,
		Backend:        v.GetString(KeyBackend),
		InhibitIdle:    v.GetBool(KeyInhibitIdle),
		Notify:         v.GetBool(KeyNotify),
		Verbose:        v.GetBool(KeyVerbose),
	}

	overrides, err := parseOverrides(list(v, KeyOverride))
	if err != nil {
		return nil, err
	}
	cfg.Overrides = overrides

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Timing().Validate(); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.FadeInterval > c.FadeTime {
		return fmt.Errorf("fade interval %s is longer than fade time %s", c.FadeInterval, c.FadeTime)
	}
	if _, err := backend.Resolve(c.Backend); err != nil {
		return err
	}
	return nil
}

// list reads a list value. Flags deliver a slice, the environment a single
// comma separated string.
func list(v *viper.Viper, key string) []string {
	switch val := v.Get(key).(type) {
	case string:
		return splitList([]string{val})
	case []string:
		return splitList(val)
	}
	return splitList(v.GetStringSlice(key))
}

// splitList flattens comma separated entries and drops empty ones.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseOverrides reads NAME=VALUE pairs. The name is the monitor product
// name as reported by its EDID.
func parseOverrides(pairs []string) (map[string]uint16, error) {
	out := make(map[string]uint16, len(pairs))
	for _, pair := range pairs {
		i := strings.LastIndex(pair, "=")
		if i <= 0 {
			return nil, fmt.Errorf("override %q: want NAME=VALUE", pair)
		}
		value, err := strconv.ParseUint(strings.TrimSpace(pair[i+1:]), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", pair, err)
		}
		out[strings.TrimSpace(pair[:i])] = uint16(value)
	}
	return out, nil
}
