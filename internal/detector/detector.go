package detector

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hoppxi/fsdim/internal/model"
	"github.com/rs/zerolog"
)

// State names reported by Window.States.
const (
	StateFullscreen = "fullscreen"
	// StateHidden marks a minimized window, which cannot cover a monitor.
	StateHidden = "hidden"
)

// Window is one top-level window as seen by the window manager. Any method
// may fail if the window goes away while it is being inspected.
type Window interface {
	Name() (string, error)
	States() ([]string, error)
	Geometry() (model.Extent, error)
}

type WindowManager interface {
	// Windows lists managed windows in the manager's own order.
	Windows() ([]Window, error)
	// ActiveWindow returns nil when nothing has focus.
	ActiveWindow() (Window, error)
}

type Detector struct {
	WM          WindowManager
	IgnoreApps  []string
	FocusedOnly bool
	Logger      zerolog.Logger
}

func New(wm WindowManager, ignoreApps []string, focusedOnly bool, logger zerolog.Logger) *Detector {
	return &Detector{WM: wm, IgnoreApps: ignoreApps, FocusedOnly: focusedOnly, Logger: logger}
}

// Detect returns the current fullscreen window.
//
// In scan-all mode the first eligible window in window-manager order wins.
// That order is not stable, so when several windows are fullscreen at once
// which one is reported is undefined.
func (d *Detector) Detect() (model.FullscreenState, error) {
	if d.FocusedOnly {
		w, err := d.WM.ActiveWindow()
		if err != nil {
			return model.FullscreenState{}, fmt.Errorf("active window: %w", err)
		}
		if w == nil {
			return model.FullscreenState{}, nil
		}
		state, _ := d.inspect(w)
		return state, nil
	}

	windows, err := d.WM.Windows()
	if err != nil {
		return model.FullscreenState{}, fmt.Errorf("window list: %w", err)
	}
	for _, w := range windows {
		if state, ok := d.inspect(w); ok {
			return state, nil
		}
	}
	return model.FullscreenState{}, nil
}

func (d *Detector) inspect(w Window) (model.FullscreenState, bool) {
	name, err := w.Name()
	if err != nil {
		d.Logger.Trace().Err(err).Msg("window name")
		return model.FullscreenState{}, false
	}
	if d.ignored(name) {
		return model.FullscreenState{}, false
	}

	states, err := w.States()
	if err != nil {
		d.Logger.Trace().Err(err).Str("window", name).Msg("window state")
		return model.FullscreenState{}, false
	}
	if !slices.Contains(states, StateFullscreen) || slices.Contains(states, StateHidden) {
		return model.FullscreenState{}, false
	}

	extent, err := w.Geometry()
	if err != nil {
		d.Logger.Trace().Err(err).Str("window", name).Msg("window geometry")
		return model.FullscreenState{}, false
	}
	return model.Fullscreen(extent, name), true
}

func (d *Detector) ignored(name string) bool {
	for _, app := range d.IgnoreApps {
		if app != "" && strings.Contains(name, app) {
			return true
		}
	}
	return false
}
