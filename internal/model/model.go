package model

import (
	"fmt"

	"github.com/hoppxi/fsdim/pkg/edid"
)

// Extent is an on-screen rectangle in root window coordinates.
type Extent struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", e.Width, e.Height, e.X, e.Y)
}

// Placement is where the graphics server puts one monitor, together with the
// identities of the outputs it drives (more than one when mirrored).
type Placement struct {
	Extent     Extent          `yaml:"extent"`
	Identities []edid.Identity `yaml:"identities"`
}

func NewPlacement(extent Extent, identities ...edid.Identity) *Placement {
	return &Placement{Extent: extent, Identities: identities}
}

func (p *Placement) Drives(id edid.Identity) bool {
	for _, candidate := range p.Identities {
		if candidate == id {
			return true
		}
	}
	return false
}

// FullscreenState is the foreground fullscreen window, if any.
type FullscreenState struct {
	Active bool   `yaml:"active"`
	Extent Extent `yaml:"extent,omitempty"`
	App    string `yaml:"app,omitempty"`
}

func Fullscreen(extent Extent, app string) FullscreenState {
	return FullscreenState{Active: true, Extent: extent, App: app}
}

// SameExtent reports whether both states cover the same region. Two absent
// states are the same.
func (s FullscreenState) SameExtent(o FullscreenState) bool {
	if !s.Active || !o.Active {
		return s.Active == o.Active
	}
	return s.Extent == o.Extent
}

func (s FullscreenState) String() string {
	if !s.Active {
		return "none"
	}
	return fmt.Sprintf("%s at %s", s.App, s.Extent)
}
