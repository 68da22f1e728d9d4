package backend

import (
	"github.com/hoppxi/fsdim/internal/detector"
	"github.com/hoppxi/fsdim/internal/model"
	"github.com/hoppxi/fsdim/pkg/displayinfo"
	"github.com/hoppxi/fsdim/pkg/edid"
	"github.com/hoppxi/fsdim/pkg/workspace"
)

// Hyprland answers topology and window queries over the compositor's
// control socket.
type Hyprland struct {
	clients  func() ([]workspace.Client, error)
	active   func() (*workspace.Client, error)
	monitors func() ([]workspace.Monitor, error)
}

func NewHyprland() *Hyprland {
	return &Hyprland{
		clients:  workspace.Clients,
		active:   workspace.ActiveWindow,
		monitors: workspace.Monitors,
	}
}

func (h *Hyprland) Name() string { return "hyprland" }

func (h *Hyprland) Close() error { return nil }

// Placements returns one placement per enabled monitor, in layout
// coordinates. The identity comes from the kernel's copy of the EDID since
// the compositor only reports make and model strings.
func (h *Hyprland) Placements() ([]*model.Placement, error) {
	monitors, err := h.monitors()
	if err != nil {
		return nil, err
	}
	var placements []*model.Placement
	for _, m := range monitors {
		if m.Disabled {
			continue
		}
		w, ht := m.LogicalSize()
		p := &model.Placement{Extent: model.Extent{X: m.X, Y: m.Y, Width: w, Height: ht}}
		if id, ok := connectorIdentity(m.Name); ok {
			p.Identities = append(p.Identities, id)
		}
		placements = append(placements, p)
	}
	return placements, nil
}

func connectorIdentity(connector string) (edid.Identity, bool) {
	raw, err := displayinfo.ConnectorEDID(connector)
	if err != nil {
		return edid.Identity{}, false
	}
	parsed, err := edid.Parse(raw)
	if err != nil {
		return edid.Identity{}, false
	}
	return parsed.Identity, true
}

func (h *Hyprland) Windows() ([]detector.Window, error) {
	clients, err := h.clients()
	if err != nil {
		return nil, err
	}
	monitors, err := h.monitors()
	if err != nil {
		return nil, err
	}
	visible := make(map[int]bool, len(monitors))
	for _, m := range monitors {
		visible[m.ActiveWorkspace.ID] = true
	}

	windows := make([]detector.Window, 0, len(clients))
	for _, c := range clients {
		windows = append(windows, &hyprWindow{client: c, visible: visible[c.Workspace.ID]})
	}
	return windows, nil
}

func (h *Hyprland) ActiveWindow() (detector.Window, error) {
	c, err := h.active()
	if err != nil || c == nil {
		return nil, err
	}
	return &hyprWindow{client: *c, visible: true}, nil
}

type hyprWindow struct {
	client  workspace.Client
	visible bool
}

func (w *hyprWindow) Name() (string, error) {
	if w.client.Title != "" {
		return w.client.Title, nil
	}
	return w.client.Class, nil
}

// States reports a client that is unmapped, hidden, or on a workspace no
// monitor shows as hidden.
func (w *hyprWindow) States() ([]string, error) {
	var states []string
	if w.client.Fullscreen.IsFull() {
		states = append(states, detector.StateFullscreen)
	}
	if w.client.Fullscreen.IsMaximized() {
		states = append(states, "maximized")
	}
	if w.client.Hidden || !w.client.Mapped || !w.visible {
		states = append(states, detector.StateHidden)
	}
	return states, nil
}

func (w *hyprWindow) Geometry() (model.Extent, error) {
	return model.Extent{
		X:      w.client.At[0],
		Y:      w.client.At[1],
		Width:  w.client.Size[0],
		Height: w.client.Size[1],
	}, nil
}
