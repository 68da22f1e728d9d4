// Package backend connects to the running graphics server to answer the
// two questions the dimmer asks of it: where monitors are placed and which
// windows are fullscreen.
package backend

import (
	"fmt"

	"github.com/hoppxi/fsdim/internal/detector"
	"github.com/hoppxi/fsdim/internal/screens"
	"github.com/hoppxi/fsdim/pkg/workspace"
)

const (
	Auto         = "auto"
	KindX11      = "x11"
	KindHyprland = "hyprland"
)

type Backend interface {
	detector.WindowManager
	screens.Topology
	Name() string
	Close() error
}

// Resolve turns "auto" into a concrete backend kind.
func Resolve(kind string) (string, error) {
	switch kind {
	case "", Auto:
		if workspace.Available() {
			return KindHyprland, nil
		}
		return KindX11, nil
	case KindX11, KindHyprland:
		return kind, nil
	}
	return "", fmt.Errorf("unknown backend %q", kind)
}

func Open(kind string) (Backend, error) {
	kind, err := Resolve(kind)
	if err != nil {
		return nil, err
	}
	if kind == KindHyprland {
		if !workspace.Available() {
			return nil, workspace.ErrNoInstance
		}
		return NewHyprland(), nil
	}
	return NewX11()
}
