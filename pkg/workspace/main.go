package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

var ErrNoInstance = errors.New("hyprland: HYPRLAND_INSTANCE_SIGNATURE not set")

// Fullscreen is the client fullscreen mode. Hyprland reports it as a bool on
// older releases and as a bit mask (1 maximized, 2 fullscreen) on newer ones.
type Fullscreen int

const (
	FullscreenNone      Fullscreen = 0
	FullscreenMaximized Fullscreen = 1
	FullscreenFull      Fullscreen = 2
)

func (f *Fullscreen) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FullscreenNone
		if b {
			*f = FullscreenFull
		}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("fullscreen: %w", err)
	}
	*f = Fullscreen(n)
	return nil
}

func (f Fullscreen) IsFull() bool      { return f&FullscreenFull != 0 }
func (f Fullscreen) IsMaximized() bool { return f&FullscreenMaximized != 0 }

type WorkspaceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client is one window as listed by j/clients.
type Client struct {
	Address      string       `json:"address"`
	Title        string       `json:"title"`
	Class        string       `json:"class"`
	InitialClass string       `json:"initialClass"`
	Mapped       bool         `json:"mapped"`
	Hidden       bool         `json:"hidden"`
	At           [2]int       `json:"at"`
	Size         [2]int       `json:"size"`
	Workspace    WorkspaceRef `json:"workspace"`
	Fullscreen   Fullscreen   `json:"fullscreen"`
}

type Monitor struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Make            string       `json:"make"`
	Model           string       `json:"model"`
	Serial          string       `json:"serial"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	X               int          `json:"x"`
	Y               int          `json:"y"`
	Scale           float64      `json:"scale"`
	Transform       int          `json:"transform"`
	Disabled        bool         `json:"disabled"`
	ActiveWorkspace WorkspaceRef `json:"activeWorkspace"`
}

// LogicalSize is the monitor size in layout coordinates, the space window
// positions are reported in.
func (m Monitor) LogicalSize() (int, int) {
	w, h := m.Width, m.Height
	// Odd transforms rotate by 90 or 270 degrees.
	if m.Transform%2 == 1 {
		w, h = h, w
	}
	if m.Scale > 0 {
		w = int(float64(w)/m.Scale + 0.5)
		h = int(float64(h)/m.Scale + 0.5)
	}
	return w, h
}

func Available() bool {
	return os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != ""
}

func ctlSocket() string {
	return filepath.Join(os.Getenv("XDG_RUNTIME_DIR"), "hypr", os.Getenv("HYPRLAND_INSTANCE_SIGNATURE"), ".socket.sock")
}

func hyprQuery(cmd string) ([]byte, error) {
	if !Available() {
		return nil, ErrNoInstance
	}
	conn, err := net.Dial("unix", ctlSocket())
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(cmd))
	if err != nil {
		return nil, err
	}

	return io.ReadAll(conn)
}

func query(cmd string, v any) error {
	res, err := hyprQuery(cmd)
	if err != nil {
		return fmt.Errorf("hyprland %s: %w", cmd, err)
	}
	if err := json.Unmarshal(res, v); err != nil {
		return fmt.Errorf("hyprland %s: %w", cmd, err)
	}
	return nil
}

func Clients() ([]Client, error) {
	var clients []Client
	if err := query("j/clients", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// ActiveWindow returns nil when no window has focus.
func ActiveWindow() (*Client, error) {
	var c Client
	if err := query("j/activewindow", &c); err != nil {
		return nil, err
	}
	if c.Address == "" {
		return nil, nil
	}
	return &c, nil
}

func Monitors() ([]Monitor, error) {
	var monitors []Monitor
	if err := query("j/monitors", &monitors); err != nil {
		return nil, err
	}
	return monitors, nil
}
