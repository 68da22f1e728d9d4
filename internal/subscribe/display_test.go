package subscribe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func uevent(fields ...string) []byte {
	return []byte(strings.Join(fields, "\x00") + "\x00")
}

func TestParseUevent_Hotplug(t *testing.T) {
	e := ParseUevent(uevent(
		"change@/devices/pci0000:00/0000:00:02.0/drm/card1",
		"ACTION=change",
		"DEVPATH=/devices/pci0000:00/0000:00:02.0/drm/card1",
		"SUBSYSTEM=drm",
		"HOTPLUG=1",
		"CONNECTOR=95",
		"SEQNUM=4711",
	))

	assert.Equal(t, "change", e.Action)
	assert.Equal(t, "drm", e.Subsystem)
	assert.Equal(t, "/devices/pci0000:00/0000:00:02.0/drm/card1", e.DevPath)
	assert.Equal(t, "95", e.Env["CONNECTOR"])
	assert.True(t, e.Hotplug())
}

func TestParseUevent_Other(t *testing.T) {
	e := ParseUevent(uevent(
		"change@/devices/platform/backlight/intel_backlight",
		"ACTION=change",
		"SUBSYSTEM=backlight",
	))
	assert.Equal(t, "backlight", e.Subsystem)
	assert.False(t, e.Hotplug())

	// udev rebroadcasts start with a "libudev" magic header instead.
	e = ParseUevent([]byte("libudev\x00\xfe\xed"))
	assert.Empty(t, e.Subsystem)
	assert.False(t, e.Hotplug())
}
