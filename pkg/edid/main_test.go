package edid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// block builds a minimal base block: "DEL" product 0xA0B1, serial 0x01020304,
// week 12 of 2019, EDID 1.4.
func block(name string) []byte {
	b := make([]byte, blockSize)
	copy(b, header)
	// D=4 E=5 L=12 -> 00100 00101 01100
	v := uint16(4)<<10 | uint16(5)<<5 | uint16(12)
	b[8], b[9] = byte(v>>8), byte(v)
	b[10], b[11] = 0xB1, 0xA0
	b[12], b[13], b[14], b[15] = 0x04, 0x03, 0x02, 0x01
	b[16], b[17] = 12, 29
	b[18], b[19] = 1, 4

	// First descriptor is a timing descriptor.
	b[54], b[55] = 0x3A, 0x02
	if name != "" {
		d := b[72:90]
		d[3] = tagName
		text := append([]byte(name), 0x0A)
		for len(text) < 13 {
			text = append(text, ' ')
		}
		copy(d[5:], text)
	}
	d := b[90:108]
	d[3] = tagSerial
	copy(d[5:], []byte("ABC123\n      "))
	return b
}

func TestParse(t *testing.T) {
	e, err := Parse(block("DELL U2720Q"))
	require.NoError(t, err)

	assert.Equal(t, Identity{
		Manufacturer: "DEL",
		Product:      0xA0B1,
		Serial:       0x01020304,
		Week:         12,
		Year:         2019,
		Version:      1,
		Revision:     4,
	}, e.Identity)
	assert.Equal(t, "DELL U2720Q", e.ProductName)
	assert.Equal(t, "ABC123", e.SerialString)
	assert.Equal(t, "DEL-a0b1-01020304", e.Identity.String())
}

func TestParse_NoName(t *testing.T) {
	e, err := Parse(block(""))
	require.NoError(t, err)
	assert.Empty(t, e.ProductName)
}

func TestParse_IgnoresExtensions(t *testing.T) {
	data := append(block("LG HDR 4K"), make([]byte, blockSize)...)
	e, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "LG HDR 4K", e.ProductName)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(make([]byte, 10))
	assert.ErrorIs(t, err, ErrShort)

	bad := block("X")
	bad[1] = 0
	_, err = Parse(bad)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestIdentityEquality(t *testing.T) {
	a, err := Parse(block("A"))
	require.NoError(t, err)
	b, err := Parse(block("B"))
	require.NoError(t, err)

	// The name is not part of the identity.
	assert.True(t, a.Identity == b.Identity)
}
