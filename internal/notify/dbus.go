//go:build linux

package notify

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	busName      = "org.freedesktop.Notifications"
	busPath      = "/org/freedesktop/Notifications"
	busInterface = "org.freedesktop.Notifications"

	appName      = "Tilawa"
	desktopEntry = "tilawa"
	defaultKey   = "default"
)

// dbusNotifier talks to the session notification daemon. Notifications
// carrying a Link are remembered until they are clicked or closed.
type dbusNotifier struct {
	obj  dbus.BusObject
	open func(url string) error

	mu    sync.Mutex
	links map[uint32]string
}

// New connects to the session bus. Without one it returns a notifier that
// drops everything.
func New(opts ...Option) (Notifier, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return &stubNotifier{}, nil //nolint:nilerr // notifications are optional
	}
	n := newDBusNotifier(conn.Object(busName, busPath), o.open)

	if n.open != nil {
		if err := conn.AddMatchSignal(
			dbus.WithMatchObjectPath(busPath),
			dbus.WithMatchInterface(busInterface),
		); err == nil {
			signals := make(chan *dbus.Signal, 8)
			conn.Signal(signals)
			go func() {
				for sig := range signals {
					n.handleSignal(sig)
				}
			}()
		}
	}
	return n, nil
}

func newDBusNotifier(obj dbus.BusObject, open func(string) error) *dbusNotifier {
	return &dbusNotifier{obj: obj, open: open, links: make(map[uint32]string)}
}

// Notify calls org.freedesktop.Notifications.Notify.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	call := n.obj.Call(busInterface+".Notify", 0, n.notifyArgs(notif)...)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}

	n.mu.Lock()
	if notif.Link != "" && n.open != nil {
		n.links[id] = notif.Link
	} else {
		delete(n.links, id)
	}
	n.mu.Unlock()
	return id, nil
}

// notifyArgs lays out app_name, replaces_id, app_icon, summary, body,
// actions, hints and expire_timeout.
func (n *dbusNotifier) notifyArgs(notif Notification) []any {
	return []any{
		appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		n.actions(notif),
		hints(notif),
		notif.Timeout,
	}
}

func (n *dbusNotifier) actions(notif Notification) []string {
	if notif.Link == "" || n.open == nil {
		return []string{}
	}
	return []string{defaultKey, "Open"}
}

func hints(notif Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
	}
	if notif.Category != "" {
		h["category"] = dbus.MakeVariant(notif.Category)
	}
	if notif.Urgency == UrgencyCritical {
		// Keep it in the notification center after it is dismissed.
		h["resident"] = dbus.MakeVariant(true)
	}
	if notif.Urgency == UrgencyLow {
		h["transient"] = dbus.MakeVariant(true)
	}
	return h
}

// handleSignal opens the Link of a clicked notification and forgets closed
// ones.
func (n *dbusNotifier) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case busInterface + ".ActionInvoked":
		if len(sig.Body) < 2 {
			return
		}
		id, _ := sig.Body[0].(uint32)
		key, _ := sig.Body[1].(string)
		if key != defaultKey {
			return
		}
		n.mu.Lock()
		link, ok := n.links[id]
		n.mu.Unlock()
		if ok {
			_ = n.open(link)
		}
	case busInterface + ".NotificationClosed":
		if len(sig.Body) < 1 {
			return
		}
		id, _ := sig.Body[0].(uint32)
		n.mu.Lock()
		delete(n.links, id)
		n.mu.Unlock()
	}
}

// Close calls CloseNotification.
func (n *dbusNotifier) Close(id uint32) error {
	n.mu.Lock()
	delete(n.links, id)
	n.mu.Unlock()
	return n.obj.Call(busInterface+".CloseNotification", 0, id).Err
}

type stubNotifier struct{}

func (s *stubNotifier) Notify(_ Notification) (uint32, error) {
	return 0, nil
}

func (s *stubNotifier) Close(_ uint32) error {
	return nil
}
