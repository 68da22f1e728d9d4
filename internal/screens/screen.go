package screens

import (
	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/pkg/edid"
)

// Handle is a raw brightness control channel to one display.
type Handle interface {
	BusName() string
	ReadEDID() ([]byte, error)
	GetBrightness() (current, maximum uint16, err error)
	SetBrightness(value uint16) error
	Close() error
}

// Topology reports where the graphics server places each monitor.
type Topology interface {
	Placements() ([]*model.Placement, error)
}

// Screen is a controllable display. Only the brightness fields change after
// the registry and matcher have run.
type Screen struct {
	Identity          edid.Identity
	Name              string
	DefaultBrightness uint16
	CurrentBrightness uint16
	MaxBrightness     uint16

	// Placement is nil when no monitor placement drives this screen.
	Placement *model.Placement

	handle Handle
}

func New(identity edid.Identity, name string, defaultBrightness, current uint16, h Handle) *Screen {
	return &Screen{
		Identity:          identity,
		Name:              name,
		DefaultBrightness: defaultBrightness,
		CurrentBrightness: current,
		MaxBrightness:     defaultBrightness,
		handle:            h,
	}
}

// SetBrightness writes value to the display and records it on success.
func (s *Screen) SetBrightness(value uint16) error {
	if err := s.handle.SetBrightness(value); err != nil {
		return err
	}
	s.CurrentBrightness = value
	return nil
}

// Refresh re-reads the current brightness from the display.
func (s *Screen) Refresh() error {
	current, _, err := s.handle.GetBrightness()
	if err != nil {
		return err
	}
	s.CurrentBrightness = current
	return nil
}

func (s *Screen) Bus() string { return s.handle.BusName() }

func (s *Screen) Close() error { return s.handle.Close() }

// Info is the printable view of a screen.
type Info struct {
	Name              string        `yaml:"name"`
	Bus               string        `yaml:"bus"`
	Identity          edid.Identity `yaml:"identity"`
	DefaultBrightness uint16        `yaml:"default_brightness"`
	CurrentBrightness uint16        `yaml:"current_brightness"`
	MaxBrightness     uint16        `yaml:"max_brightness"`
	Placement         *model.Extent `yaml:"placement,omitempty"`
}

func (s *Screen) Info() Info {
	info := Info{
		Name:              s.Name,
		Bus:               s.Bus(),
		Identity:          s.Identity,
		DefaultBrightness: s.DefaultBrightness,
		CurrentBrightness: s.CurrentBrightness,
		MaxBrightness:     s.MaxBrightness,
	}
	if s.Placement != nil {
		extent := s.Placement.Extent
		info.Placement = &extent
	}
	return info
}
