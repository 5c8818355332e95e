package notify

import (
	"fyne.io/fyne/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a user-facing message
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// Log writes notifications to the global zerolog logger
type Log struct{}

// Notify logs n at a level matching its severity
func (Log) Notify(n Notification) {
	var ev *zerolog.Event
	switch n.Level {
	case LevelWarning:
		ev = log.Warn()
	case LevelError:
		ev = log.Error()
	default:
		ev = log.Info()
	}
	ev.Str("title", n.Title).Str("severity", n.Level.String()).Msg(n.Message)
}

// Desktop raises system notifications through a fyne application
type Desktop struct {
	app fyne.App
}

// NewDesktop creates a desktop notifier backed by app
func NewDesktop(app fyne.App) *Desktop {
	return &Desktop{app: app}
}

// Notify sends n as a system notification
func (d *Desktop) Notify(n Notification) {
	d.app.SendNotification(fyne.NewNotification(n.Title, n.Message))
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

// Notify delivers n to every notifier in order
func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Func adapts a function to a Notifier
type Func func(Notification)

// Notify calls f(n)
func (f Func) Notify(n Notification) {
	f(n)
}
