package backend

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/hoppxi/fsdim/internal/detector"
	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/pkg/edid"
)

// edidLongs is the EDID property length requested from RandR, in 32-bit
// units: the base block plus one extension.
const edidLongs = 64

// X11 answers topology queries through RandR and window queries through
// EWMH on a single X connection.
type X11 struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

func NewX11() (*X11, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr not available: %w", err)
	}
	return &X11{XUtil: xu, Root: xu.RootWin()}, nil
}

func (x *X11) Name() string { return "x11" }

func (x *X11) Close() error {
	x.XUtil.Conn().Close()
	return nil
}

// Placements returns one placement per active CRTC. Outputs whose EDID
// cannot be read are left out of the identity set.
func (x *X11) Placements() ([]*model.Placement, error) {
	X := x.XUtil.Conn()

	resources, err := randr.GetScreenResources(X, x.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("screen resources: %w", err)
	}
	edidAtom, err := xprop.Atm(x.XUtil, "EDID")
	if err != nil {
		return nil, fmt.Errorf("EDID atom: %w", err)
	}

	var placements []*model.Placement
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(X, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("crtc %d: %w", crtc, err)
		}
		if info.Mode == 0 || len(info.Outputs) == 0 {
			continue
		}

		p := &model.Placement{Extent: model.Extent{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}}
		for _, output := range info.Outputs {
			prop, err := randr.GetOutputProperty(X, output, edidAtom, xproto.AtomAny, 0, edidLongs, false, false).Reply()
			if err != nil || len(prop.Data) == 0 {
				continue
			}
			parsed, err := edid.Parse(prop.Data)
			if err != nil {
				continue
			}
			p.Identities = append(p.Identities, parsed.Identity)
		}
		placements = append(placements, p)
	}
	return placements, nil
}

func (x *X11) Windows() ([]detector.Window, error) {
	ids, err := ewmh.ClientListGet(x.XUtil)
	if err != nil {
		return nil, err
	}
	windows := make([]detector.Window, 0, len(ids))
	for _, id := range ids {
		windows = append(windows, &x11Window{xu: x.XUtil, id: id})
	}
	return windows, nil
}

func (x *X11) ActiveWindow() (detector.Window, error) {
	id, err := ewmh.ActiveWindowGet(x.XUtil)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return &x11Window{xu: x.XUtil, id: id}, nil
}

type x11Window struct {
	xu *xgbutil.XUtil
	id xproto.Window
}

func (w *x11Window) Name() (string, error) {
	if name, err := ewmh.WmNameGet(w.xu, w.id); err == nil && name != "" {
		return name, nil
	}
	return icccm.WmNameGet(w.xu, w.id)
}

// States maps _NET_WM_STATE atoms to lower case names, e.g.
// _NET_WM_STATE_FULLSCREEN becomes "fullscreen".
func (w *x11Window) States() ([]string, error) {
	atoms, err := ewmh.WmStateGet(w.xu, w.id)
	if err != nil {
		return nil, err
	}
	states := make([]string, 0, len(atoms))
	for _, a := range atoms {
		states = append(states, stateName(a))
	}
	return states, nil
}

func stateName(atom string) string {
	return strings.ToLower(strings.TrimPrefix(atom, "_NET_WM_STATE_"))
}

// Geometry is the frame geometry in root coordinates.
func (w *x11Window) Geometry() (model.Extent, error) {
	r, err := xwindow.New(w.xu, w.id).DecorGeometry()
	if err != nil {
		return model.Extent{}, err
	}
	return model.Extent{X: r.X(), Y: r.Y(), Width: r.Width(), Height: r.Height()}, nil
}
