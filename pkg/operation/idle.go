package operation

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest = "org.freedesktop.ScreenSaver"
	screenSaverPath = "/org/freedesktop/ScreenSaver"
)

// caller is the part of dbus.BusObject used here.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// IdleInhibitor holds a ScreenSaver inhibition cookie on the session bus.
// The inhibition is released when the connection closes, so the connection
// stays open for as long as the cookie is held.
type IdleInhibitor struct {
	App string

	mu     sync.Mutex
	conn   *dbus.Conn
	obj    caller
	cookie uint32
	active bool
}

func NewIdleInhibitor(app string) *IdleInhibitor {
	return &IdleInhibitor{App: app}
}

func (i *IdleInhibitor) object() (caller, error) {
	if i.obj != nil {
		return i.obj, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	i.conn = conn
	i.obj = conn.Object(screenSaverDest, screenSaverPath)
	return i.obj, nil
}

func (i *IdleInhibitor) Active() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

// Inhibit is a no-op while an inhibition is already held.
func (i *IdleInhibitor) Inhibit(reason string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.active {
		return nil
	}

	obj, err := i.object()
	if err != nil {
		return err
	}
	var cookie uint32
	if err := obj.Call(screenSaverDest+".Inhibit", 0, i.App, reason).Store(&cookie); err != nil {
		return err
	}
	i.cookie = cookie
	i.active = true
	return nil
}

func (i *IdleInhibitor) UnInhibit() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.active {
		return nil
	}

	obj, err := i.object()
	if err != nil {
		return err
	}
	if err := obj.Call(screenSaverDest+".UnInhibit", 0, i.cookie).Store(); err != nil {
		return err
	}
	i.cookie = 0
	i.active = false
	return nil
}

func (i *IdleInhibitor) Close() error {
	err := i.UnInhibit()
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.conn != nil {
		i.conn.Close()
		i.conn = nil
		i.obj = nil
	}
	return err
}
