package notify

// Package notify delivers user-facing messages: to the log, to the desktop
// notification center through fyne, or to several sinks at once.
