package screens

import (
	"slices"
	"strings"

	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/pkg/edid"
	"github.com/rs/zerolog"
)

// SkipPrefixes are bus names that never carry a monitor.
var SkipPrefixes = []string{"SMBus", "soc:i2cdsi", "smu", "mac-io", "u4"}

// DefaultOverrides caps the "on" brightness of panels whose maximum is
// uncomfortably bright.
var DefaultOverrides = map[string]uint16{
	"DELL U2718Q": 50,
}

// Fallbacks when a display does not answer the brightness query.
const (
	unknownCurrent = 0
	unknownMaximum = 100
)

type Registry struct {
	Parse     func([]byte) (*edid.EDID, error)
	Overrides map[string]uint16
	Logger    zerolog.Logger
}

// NewRegistry merges extra over the built-in override table.
func NewRegistry(extra map[string]uint16, logger zerolog.Logger) *Registry {
	overrides := make(map[string]uint16, len(DefaultOverrides)+len(extra))
	for name, v := range DefaultOverrides {
		overrides[name] = v
	}
	for name, v := range extra {
		overrides[name] = v
	}
	return &Registry{Parse: edid.Parse, Overrides: overrides, Logger: logger}
}

// Build turns raw handles into screens. Handles that are not a usable display,
// or whose name is in ignore, are closed and left out.
func (r *Registry) Build(handles []Handle, ignore []string) []*Screen {
	var out []*Screen
	for _, h := range handles {
		s := r.screen(h)
		if s == nil {
			_ = h.Close()
			continue
		}
		if slices.Contains(ignore, s.Name) {
			r.Logger.Debug().Str("screen", s.Name).Str("bus", h.BusName()).Msg("ignoring screen")
			_ = h.Close()
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r *Registry) screen(h Handle) *Screen {
	bus := h.BusName()
	for _, prefix := range SkipPrefixes {
		if strings.HasPrefix(bus, prefix) {
			return nil
		}
	}

	raw, err := h.ReadEDID()
	if err != nil {
		r.Logger.Debug().Err(err).Str("bus", bus).Msg("no identity")
		return nil
	}
	info, err := r.Parse(raw)
	if err != nil {
		r.Logger.Debug().Err(err).Str("bus", bus).Msg("unparsable identity")
		return nil
	}
	if info.ProductName == "" {
		r.Logger.Debug().Str("bus", bus).Msg("identity has no product name")
		return nil
	}

	current, maximum, err := h.GetBrightness()
	if err != nil {
		r.Logger.Warn().Err(err).Str("screen", info.ProductName).Msg("brightness query failed, assuming 0/100")
		current, maximum = unknownCurrent, unknownMaximum
	}

	def := maximum
	if v, ok := r.Overrides[info.ProductName]; ok && v < maximum {
		def = v
	}

	return &Screen{
		Identity:          info.Identity,
		Name:              info.ProductName,
		DefaultBrightness: def,
		CurrentBrightness: current,
		MaxBrightness:     maximum,
		handle:            h,
	}
}

// Match attaches to every screen the first placement that drives its
// identity. It returns the number of screens matched.
func Match(placements []*model.Placement, screens []*Screen) int {
	matched := 0
	for _, s := range screens {
		for _, p := range placements {
			if p.Drives(s.Identity) {
				s.Placement = p
				matched++
				break
			}
		}
	}
	return matched
}
