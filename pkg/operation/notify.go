package operation

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest = "org.freedesktop.Notifications"
	notifyPath = "/org/freedesktop/Notifications"
)

// Notifier posts desktop notifications. Each new notification replaces the
// previous one so dim and restore messages don't pile up.
type Notifier struct {
	App     string
	Icon    string
	Timeout int32

	mu   sync.Mutex
	conn *dbus.Conn
	obj  caller
	last uint32
}

func NewNotifier(app string) *Notifier {
	return &Notifier{App: app, Icon: "video-display", Timeout: 3000}
}

func (n *Notifier) Notify(summary, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.obj == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return err
		}
		n.conn = conn
		n.obj = conn.Object(notifyDest, notifyPath)
	}

	var id uint32
	err := n.obj.Call(notifyDest+".Notify", 0,
		n.App, n.last, n.Icon, summary, body,
		[]string{}, map[string]dbus.Variant{}, n.Timeout,
	).Store(&id)
	if err != nil {
		return err
	}
	n.last = id
	return nil
}

func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.obj = nil
	}
	return nil
}
