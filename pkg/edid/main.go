// Package edid decodes the base block of a display's Extended Display
// Identification Data.
package edid

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

const (
	blockSize = 128

	tagSerial = 0xFF
	tagText   = 0xFE
	tagName   = 0xFC
)

var header = []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

var (
	ErrShort  = errors.New("edid: block shorter than 128 bytes")
	ErrHeader = errors.New("edid: bad header")
)

// Identity is the part of an EDID that identifies one physical display.
// Two readings of the same monitor over different paths (DDC bus, X server
// property, DRM sysfs) compare equal with ==.
type Identity struct {
	Manufacturer string `yaml:"manufacturer"`
	Product      uint16 `yaml:"product"`
	Serial       uint32 `yaml:"serial"`
	Week         uint8  `yaml:"week"`
	Year         int    `yaml:"year"`
	Version      uint8  `yaml:"version"`
	Revision     uint8  `yaml:"revision"`
}

func (i Identity) String() string {
	return fmt.Sprintf("%s-%04x-%08x", i.Manufacturer, i.Product, i.Serial)
}

type EDID struct {
	Identity

	// ProductName is the monitor name descriptor, empty when absent.
	ProductName  string
	SerialString string
	Text         string
}

// Parse decodes the 128-byte base block. Extension blocks are ignored.
func Parse(data []byte) (*EDID, error) {
	if len(data) < blockSize {
		return nil, ErrShort
	}
	if !bytes.Equal(data[:8], header) {
		return nil, ErrHeader
	}

	e := &EDID{
		Identity: Identity{
			Manufacturer: manufacturer(data[8], data[9]),
			Product:      uint16(data[10]) | uint16(data[11])<<8,
			Serial:       uint32(data[12]) | uint32(data[13])<<8 | uint32(data[14])<<16 | uint32(data[15])<<24,
			Week:         data[16],
			Year:         int(data[17]) + 1990,
			Version:      data[18],
			Revision:     data[19],
		},
	}

	for off := 54; off+18 <= blockSize; off += 18 {
		d := data[off : off+18]
		// Bytes 0-1 are a pixel clock for timing descriptors.
		if d[0] != 0 || d[1] != 0 {
			continue
		}
		switch d[3] {
		case tagName:
			e.ProductName = descriptorText(d[5:])
		case tagSerial:
			e.SerialString = descriptorText(d[5:])
		case tagText:
			e.Text = descriptorText(d[5:])
		}
	}

	return e, nil
}

// manufacturer unpacks the three 5-bit letters of the PNP id.
func manufacturer(hi, lo byte) string {
	v := uint16(hi)<<8 | uint16(lo)
	letters := []byte{
		byte((v>>10)&0x1F) + 'A' - 1,
		byte((v>>5)&0x1F) + 'A' - 1,
		byte(v&0x1F) + 'A' - 1,
	}
	return string(letters)
}

func descriptorText(b []byte) string {
	if i := bytes.IndexByte(b, 0x0A); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " \x00")
}
