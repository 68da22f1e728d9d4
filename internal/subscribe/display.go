package subscribe

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/sys/unix"
)

// Uevent is one kernel object event from the netlink uevent broadcast.
type Uevent struct {
	Action    string
	DevPath   string
	Subsystem string
	Env       map[string]string
}

// Hotplug reports a DRM connector change: a monitor was plugged, unplugged
// or changed mode.
func (e Uevent) Hotplug() bool {
	return e.Subsystem == "drm" && e.Env["HOTPLUG"] == "1"
}

// ParseUevent decodes a kernel uevent message: an "action@devpath" header
// followed by NUL separated KEY=VALUE pairs.
func ParseUevent(msg []byte) Uevent {
	e := Uevent{Env: map[string]string{}}
	for i, field := range bytes.Split(msg, []byte{0}) {
		s := string(field)
		if i == 0 {
			if action, path, ok := strings.Cut(s, "@"); ok {
				e.Action, e.DevPath = action, path
				continue
			}
		}
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			continue
		}
		e.Env[key] = value
		switch key {
		case "ACTION":
			e.Action = value
		case "DEVPATH":
			e.DevPath = value
		case "SUBSYSTEM":
			e.Subsystem = value
		}
	}
	return e
}

// HotplugEvents delivers DRM hotplug uevents until stop is closed. Events
// are dropped while the previous one is unread.
func HotplugEvents(stop <-chan struct{}) (<-chan Uevent, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: 1, // kernel broadcast group
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	// Wake up once a second to notice stop.
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &unix.Timeval{Sec: 1}); err != nil {
		unix.Close(fd)
		return nil, err
	}

	events := make(chan Uevent, 1)
	go func() {
		defer unix.Close(fd)
		defer close(events)

		buf := make([]byte, 8192)
		for {
			select {
			case <-stop:
				return
			default:
			}

			n, _, err := unix.Recvfrom(fd, buf, 0)
			if err != nil {
				if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
					continue
				}
				return
			}

			e := ParseUevent(buf[:n])
			if !e.Hotplug() {
				continue
			}
			select {
			case events <- e:
			default:
			}
		}
	}()

	return events, nil
}
