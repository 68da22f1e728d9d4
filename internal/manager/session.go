package manager

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hoppxi/fsdim/internal/backend"
	"github.com/hoppxi/fsdim/internal/detector"
	"github.com/hoppxi/fsdim/internal/fade"
	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/internal/screens"
	"github.com/hoppxi/fsdim/pkg/ddc"
	"github.com/rs/zerolog"
)

// Inhibitor keeps the session from idling while displays are dimmed.
type Inhibitor interface {
	Inhibit(reason string) error
	UnInhibit() error
	Active() bool
	Close() error
}

type Notifier interface {
	Notify(summary, body string) error
	Close() error
}

// Session is everything the daemon builds once at startup: the screen set
// with its placements, the graphics server connection and the fade
// controller driving the screens.
type Session struct {
	Config     *Config
	Backend    backend.Backend
	Screens    []*screens.Screen
	Placements []*model.Placement
	Matched    int
	Controller *fade.Controller
	Detector   *detector.Detector
	Started    time.Time

	Inhibitor Inhibitor
	Notifier  Notifier
	Server    *Server

	logger zerolog.Logger
}

// Handles enumerates the DDC buses as screen handles.
func Handles() ([]screens.Handle, error) {
	devices, err := ddc.Enumerate()
	if err != nil {
		return nil, err
	}
	handles := make([]screens.Handle, len(devices))
	for i, d := range devices {
		handles[i] = d
	}
	return handles, nil
}

// Open enumerates displays and connects to the graphics server selected by
// cfg.
func Open(cfg *Config, logger zerolog.Logger) (*Session, error) {
	handles, err := Handles()
	if err != nil {
		return nil, err
	}
	b, err := backend.Open(cfg.Backend)
	if err != nil {
		for _, h := range handles {
			_ = h.Close()
		}
		return nil, fmt.Errorf("connect to display server: %w", err)
	}
	s, err := NewSession(cfg, handles, b, fade.SystemClock, logger)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return s, nil
}

// NewSession builds the screen set from handles and matches it against the
// topology reported by b.
func NewSession(cfg *Config, handles []screens.Handle, b backend.Backend, clock fade.Clock, logger zerolog.Logger) (*Session, error) {
	reg := screens.NewRegistry(cfg.Overrides, logger)
	list := reg.Build(handles, cfg.IgnoreDisplays)

	placements, err := b.Placements()
	if err != nil {
		for _, s := range list {
			_ = s.Close()
		}
		return nil, fmt.Errorf("monitor topology: %w", err)
	}
	matched := screens.Match(placements, list)

	s := &Session{
		Config:     cfg,
		Backend:    b,
		Screens:    list,
		Placements: placements,
		Matched:    matched,
		Controller: fade.NewController(list, cfg.Timing(), clock, logger),
		Detector:   detector.New(b, cfg.IgnoreApps, cfg.FocusedOnly, logger),
		Started:    clock.Now(),
		logger:     logger,
	}
	s.logScreens()
	return s, nil
}

func (s *Session) logScreens() {
	if len(s.Screens) == 0 {
		s.logger.Warn().Msg("no controllable displays found")
	}
	for _, sc := range s.Screens {
		ev := s.logger.Info().
			Str("screen", sc.Name).
			Str("bus", sc.Bus()).
			Stringer("identity", sc.Identity).
			Uint16("default", sc.DefaultBrightness).
			Uint16("current", sc.CurrentBrightness)
		if sc.Placement != nil {
			ev = ev.Stringer("placement", sc.Placement.Extent)
		} else {
			ev = ev.Str("placement", "unmatched")
		}
		ev.Msg("screen")
	}
	s.logger.Info().
		Str("backend", s.Backend.Name()).
		Int("screens", len(s.Screens)).
		Int("matched", s.Matched).
		Msg("session ready")
}

// Screen looks a screen up by its product name.
func (s *Session) Screen(name string) (*screens.Screen, bool) {
	for _, sc := range s.Screens {
		if sc.Name == name {
			return sc, true
		}
	}
	return nil, false
}

// Status snapshots the session for the IPC server. It reads screens, so it
// must be called from the goroutine that drives them.
func (s *Session) Status() Status {
	st := Status{
		PID:        os.Getpid(),
		Backend:    s.Backend.Name(),
		Started:    s.Started,
		State:      s.Controller.State().String(),
		Fullscreen: s.Controller.Last().String(),
	}
	if s.Inhibitor != nil {
		st.IdleInhibited = s.Inhibitor.Active()
	}
	for _, sc := range s.Screens {
		st.Screens = append(st.Screens, sc.Info())
	}
	return st
}

// Publish hands the current status to the IPC server, if there is one.
func (s *Session) Publish(last string) {
	if s.Server == nil {
		return
	}
	st := s.Status()
	st.LastRun = last
	s.Server.Publish(st)
}

// AfterFade runs the session side effects of a completed fade.
func (s *Session) AfterFade(res fade.Result) {
	if s.Inhibitor != nil {
		var err error
		if res.Direction == fade.Dim {
			err = s.Inhibitor.Inhibit("fullscreen: " + res.App)
		} else {
			err = s.Inhibitor.UnInhibit()
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("idle inhibition")
		}
	}
	if s.Notifier != nil {
		summary, body := "Displays restored", ""
		if res.Direction == fade.Dim {
			summary, body = "Displays dimmed", res.App
		}
		if err := s.Notifier.Notify(summary, body); err != nil {
			s.logger.Warn().Err(err).Msg("notification")
		}
	}
	s.Publish(res.ID)
}

func (s *Session) Close() error {
	var errs []error
	if s.Server != nil {
		errs = append(errs, s.Server.Close())
	}
	if s.Inhibitor != nil {
		errs = append(errs, s.Inhibitor.Close())
	}
	if s.Notifier != nil {
		errs = append(errs, s.Notifier.Close())
	}
	for _, sc := range s.Screens {
		errs = append(errs, sc.Close())
	}
	errs = append(errs, s.Backend.Close())
	return errors.Join(errs...)
}
