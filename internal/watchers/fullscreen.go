package watchers

import (
	"time"

	"github.com/hoppxi/fsdim/internal/fade"
	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/internal/subscribe"
	"github.com/rs/zerolog"
)

type Detector interface {
	Detect() (model.FullscreenState, error)
}

// FullscreenWatcher alternates detection and fading on one goroutine. A fade
// blocks the loop until it completes, so detection never overlaps a fade.
type FullscreenWatcher struct {
	Detector   Detector
	Controller *fade.Controller
	Clock      fade.Clock
	Interval   time.Duration
	Bus        *BusWatcher
	Logger     zerolog.Logger

	// Hotplug carries monitor connector changes. Placements are matched once
	// at startup, so these are only reported.
	Hotplug <-chan subscribe.Uevent

	// OnFade is called after every completed fade.
	OnFade func(fade.Result)
}

// Run polls until stop is closed. The stop channel is only checked between
// polls. A brightness write failure ends the loop with a *fade.WriteError.
func (w *FullscreenWatcher) Run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := w.Poll(); err != nil {
			return err
		}
		w.Clock.Sleep(w.Interval)
	}
}

// Poll runs a single detection and, if the state changed, a fade.
func (w *FullscreenWatcher) Poll() error {
	if w.Bus != nil {
		w.Bus.Check()
	}
	w.checkHotplug()

	state, err := w.Detector.Detect()
	if err != nil {
		w.Logger.Warn().Err(err).Msg("fullscreen detection failed, skipping poll")
		return nil
	}

	res, ran, err := w.Controller.Update(state)
	if err != nil {
		return err
	}
	if ran && w.OnFade != nil {
		w.OnFade(res)
	}
	return nil
}

func (w *FullscreenWatcher) checkHotplug() {
	for {
		select {
		case e, ok := <-w.Hotplug:
			if !ok {
				w.Hotplug = nil
				return
			}
			w.Logger.Warn().Str("device", e.DevPath).Msg("monitor layout changed, restart fsdim to match screens again")
		default:
			return
		}
	}
}
