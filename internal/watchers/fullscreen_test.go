package watchers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoppxi/fsdim/internal/detector"
	"github.com/hoppxi/fsdim/internal/fade"
	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/internal/screens"
	"github.com/hoppxi/fsdim/internal/subscribe"
	"github.com/hoppxi/fsdim/pkg/edid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

type fakeHandle struct {
	value  uint16
	writes int
	fail   bool
}

func (h *fakeHandle) BusName() string                        { return "fake" }
func (h *fakeHandle) ReadEDID() ([]byte, error)              { return nil, nil }
func (h *fakeHandle) GetBrightness() (uint16, uint16, error) { return h.value, 100, nil }
func (h *fakeHandle) Close() error                           { return nil }

func (h *fakeHandle) SetBrightness(v uint16) error {
	if h.fail {
		return errors.New("i2c write")
	}
	h.value = v
	h.writes++
	return nil
}

// script returns one state per poll and closes stop once it runs out.
type script struct {
	states []model.FullscreenState
	errs   []error
	calls  int
	stop   chan struct{}
}

func (s *script) Detect() (model.FullscreenState, error) {
	i := s.calls
	s.calls++
	if i == len(s.states)-1 {
		close(s.stop)
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.states[i], err
}

var (
	extentA = model.Extent{Width: 1920, Height: 1080}
	extentB = model.Extent{X: 1920, Width: 2560, Height: 1440}
)

func setup(def uint16, extent model.Extent) (*screens.Screen, *fakeHandle) {
	h := &fakeHandle{value: def}
	id := edid.Identity{Manufacturer: "TST", Product: def}
	s := screens.New(id, "screen", def, def, h)
	s.Placement = model.NewPlacement(extent, id)
	return s, h
}

func newWatcher(d Detector, list []*screens.Screen, clock *fakeClock) *FullscreenWatcher {
	timing := fade.Timing{Duration: time.Second, Interval: 10 * time.Millisecond}
	return &FullscreenWatcher{
		Detector:   d,
		Controller: fade.NewController(list, timing, clock, zerolog.Nop()),
		Clock:      clock,
		Interval:   500 * time.Millisecond,
		Logger:     zerolog.Nop(),
	}
}

func TestRun_AbsentForTenPollsNeverFades(t *testing.T) {
	s, h := setup(100, extentB)
	d := &script{states: make([]model.FullscreenState, 10), stop: make(chan struct{})}
	clock := &fakeClock{}
	w := newWatcher(d, []*screens.Screen{s}, clock)

	fades := 0
	w.OnFade = func(fade.Result) { fades++ }

	require.NoError(t, w.Run(d.stop))
	assert.Equal(t, 10, d.calls)
	assert.Zero(t, fades)
	assert.Zero(t, h.writes)
	assert.Len(t, clock.sleeps, 10)
	for _, sleep := range clock.sleeps {
		assert.Equal(t, 500*time.Millisecond, sleep)
	}
}

type window struct {
	name   string
	extent model.Extent
}

func (w window) Name() (string, error)           { return w.name, nil }
func (w window) States() ([]string, error)       { return []string{detector.StateFullscreen}, nil }
func (w window) Geometry() (model.Extent, error) { return w.extent, nil }

type wm struct{ windows []detector.Window }

func (m wm) Windows() ([]detector.Window, error)    { return m.windows, nil }
func (m wm) ActiveWindow() (detector.Window, error) { return nil, nil }

func TestPoll_IgnoredAppDoesNotFade(t *testing.T) {
	s, h := setup(100, extentB)
	det := detector.New(wm{windows: []detector.Window{window{name: "Ignored App", extent: extentA}}},
		[]string{"Ignored"}, false, zerolog.Nop())
	w := newWatcher(det, []*screens.Screen{s}, &fakeClock{})

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Poll())
	}
	assert.Zero(t, h.writes)
	assert.Equal(t, uint16(100), s.CurrentBrightness)
}

func TestRun_DimAndRestore(t *testing.T) {
	s1, _ := setup(100, extentA)
	s2, _ := setup(60, extentB)
	d := &script{
		states: []model.FullscreenState{
			{},
			model.Fullscreen(extentA, "mpv"),
			model.Fullscreen(extentA, "mpv"),
			{},
		},
		stop: make(chan struct{}),
	}
	w := newWatcher(d, []*screens.Screen{s1, s2}, &fakeClock{})

	var results []fade.Result
	w.OnFade = func(r fade.Result) { results = append(results, r) }

	require.NoError(t, w.Run(d.stop))
	require.Len(t, results, 2)
	assert.Equal(t, fade.Dim, results[0].Direction)
	assert.Equal(t, "mpv", results[0].App)
	assert.Equal(t, fade.Restore, results[1].Direction)
	assert.Equal(t, uint16(100), s1.CurrentBrightness)
	assert.Equal(t, uint16(60), s2.CurrentBrightness)
}

func TestRun_DetectionFailureSkipsPoll(t *testing.T) {
	s, h := setup(100, extentB)
	d := &script{
		states: []model.FullscreenState{model.Fullscreen(extentA, "mpv"), {}},
		errs:   []error{errors.New("BadWindow")},
		stop:   make(chan struct{}),
	}
	w := newWatcher(d, []*screens.Screen{s}, &fakeClock{})

	require.NoError(t, w.Run(d.stop))
	assert.Zero(t, h.writes)
}

func TestRun_WriteFailureEndsLoop(t *testing.T) {
	s, h := setup(100, extentB)
	h.fail = true
	d := &script{
		states: []model.FullscreenState{model.Fullscreen(extentA, "mpv"), {}, {}},
		stop:   make(chan struct{}),
	}
	w := newWatcher(d, []*screens.Screen{s}, &fakeClock{})

	err := w.Run(d.stop)
	var we *fade.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 1, d.calls)
}

func TestRun_StopBeforeFirstPoll(t *testing.T) {
	d := &script{states: []model.FullscreenState{{}}, stop: make(chan struct{})}
	stop := make(chan struct{})
	close(stop)
	w := newWatcher(d, nil, &fakeClock{})

	require.NoError(t, w.Run(stop))
	assert.Zero(t, d.calls)
}

func TestBusWatcher(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBusWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tty0"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "i2c-9"), nil, 0o600))

	seen := 0
	require.Eventually(t, func() bool {
		seen += b.Check()
		return seen >= 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, seen)
}

func TestPoll_DrainsHotplug(t *testing.T) {
	d := &script{states: []model.FullscreenState{{}, {}}, stop: make(chan struct{})}
	w := newWatcher(d, nil, &fakeClock{})
	hotplug := make(chan subscribe.Uevent, 1)
	hotplug <- subscribe.Uevent{Subsystem: "drm", DevPath: "/devices/drm/card1"}
	close(hotplug)
	w.Hotplug = hotplug

	require.NoError(t, w.Poll())
	assert.Nil(t, w.Hotplug, "closed channel is dropped")
	require.NoError(t, w.Poll())
}
