package countdown

// Package countdown implements the six-digit HH:MM:SS countdown: digit
// editing with per-position limits, the Editing/Running/Paused state machine,
// one-second ticks with warning and low-time signals, and restoration of the
// starting duration on expiry or reset.
//
// Engine does not own a timer. Runner drives Tick from a clockwork clock and
// applies commands on the same goroutine.
