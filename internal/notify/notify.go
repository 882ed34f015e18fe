// Package notify carries one-shot global notifications (the snackbar in a
// graphical client). Field validation errors never go through here.
package notify

import (
	"log/slog"
	"sync"
)

// Type is the severity of a notification.
type Type string

const (
	Error   Type = "error"
	Warning Type = "warning"
	Info    Type = "info"
	Success Type = "success"
)

// Notification is a single message shown to the user.
type Notification struct {
	Type Type   `json:"type"`
	Text string `json:"text"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	list []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.list = append(r.list, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.list...)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.list) == 0 {
		return Notification{}, false
	}
	return r.list[len(r.list)-1], true
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Log *slog.Logger
}

func (l LogNotifier) Notify(n Notification) {
	switch n.Type {
	case Error:
		l.Log.Error(n.Text)
	case Warning:
		l.Log.Warn(n.Text)
	default:
		l.Log.Info(n.Text, "type", string(n.Type))
	}
}
