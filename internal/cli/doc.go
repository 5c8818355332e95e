package cli

// Package cli is the cobra command tree of the rollcall binary. Commands
// share one environment built before each run: the application config, the
// user settings and the notification sinks.
