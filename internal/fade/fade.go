// Package fade drives timed brightness transitions across all screens when
// the fullscreen state changes.
package fade

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/internal/screens"
	"github.com/rs/zerolog"
)

type Direction int

const (
	Restore Direction = iota
	Dim
)

func (d Direction) String() string {
	if d == Dim {
		return "dim"
	}
	return "restore"
}

type State int

const (
	Idle State = iota
	Fading
)

func (s State) String() string {
	if s == Fading {
		return "fading"
	}
	return "idle"
}

type Timing struct {
	Duration time.Duration
	Interval time.Duration
}

func (t Timing) Validate() error {
	if t.Duration <= 0 {
		return errors.New("fade duration must be positive")
	}
	if t.Interval <= 0 {
		return errors.New("fade interval must be positive")
	}
	return nil
}

// Clock is the time source for fades and polling.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

var SystemClock Clock = systemClock{}

// WriteError is a failed brightness write. The screen keeps whatever value
// was last written successfully.
type WriteError struct {
	Screen string
	Value  uint16
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("set brightness of %s to %d: %v", e.Screen, e.Value, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result describes one fade run.
type Result struct {
	ID        string
	Direction Direction
	Reference model.Extent
	App       string
	Ticks     int
	Writes    int
	Elapsed   time.Duration
}

type Controller struct {
	screens []*screens.Screen
	timing  Timing
	clock   Clock
	logger  zerolog.Logger

	state State
	last  model.FullscreenState
}

func NewController(list []*screens.Screen, timing Timing, clock Clock, logger zerolog.Logger) *Controller {
	if clock == nil {
		clock = SystemClock
	}
	return &Controller{screens: list, timing: timing, clock: clock, logger: logger}
}

func (c *Controller) State() State { return c.state }

// Last is the fullscreen state recorded by the last completed run.
func (c *Controller) Last() model.FullscreenState { return c.last }

// Update runs a fade when state covers a different region than the one
// recorded at the end of the previous run. It blocks until the fade is done.
func (c *Controller) Update(state model.FullscreenState) (Result, bool, error) {
	if state.SameExtent(c.last) {
		return Result{}, false, nil
	}

	dir := Restore
	if state.Active {
		dir = Dim
	}
	res, err := c.Run(dir, state.Extent, state.App)
	if err != nil {
		return res, true, err
	}
	c.last = state
	return res, true, nil
}

// Run moves every screen toward its target for dir. A screen placed exactly
// on reference stays at its default during a dim. Brightness is computed from
// the default, not from where a screen started.
func (c *Controller) Run(dir Direction, reference model.Extent, app string) (Result, error) {
	res := Result{ID: uuid.NewString(), Direction: dir, Reference: reference, App: app}
	log := c.logger.With().Str("run", res.ID).Str("direction", dir.String()).Logger()

	c.state = Fading
	ev := log.Info().Dur("duration", c.timing.Duration)
	if dir == Dim {
		ev = ev.Str("app", app).Stringer("extent", reference)
	}
	ev.Msg("fade started")

	start := c.clock.Now()
	for {
		progress := float64(c.clock.Now().Sub(start)) / float64(c.timing.Duration)

		for _, s := range c.screens {
			up := dir == Restore || exempt(s, reference)
			if up && s.CurrentBrightness >= s.DefaultBrightness {
				continue
			}
			if !up && s.CurrentBrightness == 0 {
				continue
			}

			value := level(progress, s.DefaultBrightness, up)
			if err := s.SetBrightness(value); err != nil {
				log.Error().Err(err).Str("screen", s.Name).Uint16("value", value).Msg("brightness write failed")
				return res, &WriteError{Screen: s.Name, Value: value, Err: err}
			}
			log.Trace().Str("screen", s.Name).Uint16("value", value).Msg("brightness")
			res.Writes++
		}
		res.Ticks++

		if progress >= 1 {
			break
		}
		c.clock.Sleep(c.timing.Interval)
	}

	res.Elapsed = c.clock.Now().Sub(start)
	c.state = Idle
	log.Info().Int("ticks", res.Ticks).Int("writes", res.Writes).Dur("elapsed", res.Elapsed).Msg("fade finished")
	return res, nil
}

func exempt(s *screens.Screen, reference model.Extent) bool {
	return s.Placement != nil && s.Placement.Extent == reference
}

// level interpolates linearly between 0 and def. Progress past 1 is clamped
// so the last tick lands exactly on the endpoint.
func level(progress float64, def uint16, up bool) uint16 {
	progress = min(max(progress, 0), 1)
	if !up {
		progress = 1 - progress
	}
	return uint16(progress * float64(def))
}
