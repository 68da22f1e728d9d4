package model

import (
	"testing"

	"github.com/hoppxi/fsdim/pkg/edid"
	"github.com/stretchr/testify/assert"
)

func TestSameExtent(t *testing.T) {
	a := Extent{X: 0, Y: 0, Width: 1920, Height: 1080}
	b := Extent{X: 1920, Y: 0, Width: 2560, Height: 1440}

	tests := []struct {
		name string
		x, y FullscreenState
		want bool
	}{
		{"both absent", FullscreenState{}, FullscreenState{}, true},
		{"absent vs present", FullscreenState{}, Fullscreen(a, "mpv"), false},
		{"present vs absent", Fullscreen(a, "mpv"), FullscreenState{}, false},
		{"same extent different app", Fullscreen(a, "mpv"), Fullscreen(a, "vlc"), true},
		{"different extent", Fullscreen(a, "mpv"), Fullscreen(b, "mpv"), false},
		{"stale extent on absent state", FullscreenState{Extent: a}, FullscreenState{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.x.SameExtent(tt.y))
		})
	}
}

func TestPlacementDrives(t *testing.T) {
	left := edid.Identity{Manufacturer: "DEL", Product: 1, Serial: 1}
	right := edid.Identity{Manufacturer: "DEL", Product: 1, Serial: 2}

	p := NewPlacement(Extent{Width: 1920, Height: 1080}, left)
	assert.True(t, p.Drives(left))
	assert.False(t, p.Drives(right))
}

func TestFullscreenStateString(t *testing.T) {
	assert.Equal(t, "none", FullscreenState{}.String())
	assert.Equal(t, "mpv at 1920x1080+0+0", Fullscreen(Extent{Width: 1920, Height: 1080}, "mpv").String())
}
