package displayinfo

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Root is the kernel's DRM class directory. Each connector has a directory
// named card<N>-<connector> in it.
var Root = "/sys/class/drm"

var ErrNoEDID = errors.New("connector has no EDID")

type Connector struct {
	Card    string `yaml:"card"`
	Name    string `yaml:"name"`
	Status  string `yaml:"status"`
	Enabled bool   `yaml:"enabled"`
	path    string
}

func readString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Connectors lists every DRM connector, sorted by card then name.
func Connectors() ([]Connector, error) {
	paths, err := filepath.Glob(filepath.Join(Root, "card*-*"))
	if err != nil {
		return nil, err
	}

	var out []Connector
	for _, p := range paths {
		card, name, ok := strings.Cut(filepath.Base(p), "-")
		if !ok {
			continue
		}
		out = append(out, Connector{
			Card:    card,
			Name:    name,
			Status:  readString(filepath.Join(p, "status")),
			Enabled: readString(filepath.Join(p, "enabled")) == "enabled",
			path:    p,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Card != out[j].Card {
			return out[i].Card < out[j].Card
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// EDID returns the raw EDID of the monitor attached to the connector.
func (c Connector) EDID() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.path, "edid"))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoEDID
	}
	return data, nil
}

// ConnectorEDID finds a connector by name, e.g. "DP-2", on any card and
// returns its EDID.
func ConnectorEDID(name string) ([]byte, error) {
	connectors, err := Connectors()
	if err != nil {
		return nil, err
	}
	for _, c := range connectors {
		if c.Name != name {
			continue
		}
		if data, err := c.EDID(); err == nil {
			return data, nil
		}
	}
	return nil, ErrNoEDID
}
