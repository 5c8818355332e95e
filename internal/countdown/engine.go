package countdown

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
	"github.com/rs/zerolog/log"
)

// States. Untyped so they convert to statekit.StateID.
const (
	StateEditing = "editing"
	StateRunning = "running"
	StatePaused  = "paused"
)

// Machine events
const (
	eventStart  = "start"
	eventPause  = "pause"
	eventResume = "resume"
	eventExpire = "expire"
	eventReset  = "reset"
)

// Signal thresholds in seconds
const (
	WarningThreshold = 3
	LowTimeThreshold = 60
)

var (
	// ErrZeroDuration is returned when starting or resuming at 00:00:00
	ErrZeroDuration = errors.New("duration is zero")
	// ErrInvalidTransition is returned when an operation is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrRunning is returned when editing while the countdown runs
	ErrRunning = errors.New("countdown is running")
)

// EventType identifies a countdown notification
type EventType int

const (
	EventTick EventType = iota
	EventWarning
	EventLowTime
	EventLowTimeCleared
	EventExpired
	EventStateChanged
)

// String returns the event name
func (t EventType) String() string {
	switch t {
	case EventTick:
		return "tick"
	case EventWarning:
		return "warning"
	case EventLowTime:
		return "low_time"
	case EventLowTimeCleared:
		return "low_time_cleared"
	case EventExpired:
		return "expired"
	case EventStateChanged:
		return "state_changed"
	default:
		return "unknown"
	}
}

// Event is delivered to the handler after each observable change
type Event struct {
	Type      EventType
	Remaining int
	State     string
}

// Handler receives countdown events on the owning goroutine
type Handler func(Event)

type machineContext struct{}

// Engine is the countdown state holder
type Engine struct {
	digits          Digits
	preStartSeconds int
	hasPreStart     bool
	lowTime         bool
	interp          *statekit.Interpreter[machineContext]
	handler         Handler
}

// NewEngine creates a countdown in Editing showing DefaultDigits
func NewEngine() (*Engine, error) {
	builder := statekit.NewMachine[machineContext]("countdown").
		WithInitial(statekit.StateID(StateEditing)).
		WithContext(machineContext{})

	builder.State(StateEditing).
		On(eventStart).Target(StateRunning).
		On(eventReset).Target(StateEditing).
		Done()

	builder.State(StateRunning).
		On(eventPause).Target(StatePaused).
		On(eventExpire).Target(StateEditing).
		On(eventReset).Target(StateEditing).
		Done()

	builder.State(StatePaused).
		On(eventResume).Target(StateRunning).
		On(eventReset).Target(StateEditing).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build countdown machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()

	return &Engine{digits: DefaultDigits, interp: interp}, nil
}

// SetEventHandler registers the event callback
func (e *Engine) SetEventHandler(handler Handler) {
	e.handler = handler
}

// State returns the current state name
func (e *Engine) State() string {
	return string(e.interp.State().Value)
}

// Digits returns the displayed digits
func (e *Engine) Digits() Digits {
	return e.digits
}

// Seconds returns the displayed total
func (e *Engine) Seconds() int {
	return DigitsToSeconds(e.digits)
}

// MaxDigits returns the current wheel limits
func (e *Engine) MaxDigits() Digits {
	return MaxDigits(e.digits)
}

// PreStartSeconds returns the total captured by the last Start
func (e *Engine) PreStartSeconds() (int, bool) {
	return e.preStartSeconds, e.hasPreStart
}

// LowTime reports whether the low-time signal is raised
func (e *Engine) LowTime() bool {
	return e.lowTime
}

// IncrementDigit rolls the wheel at pos up by one. It does nothing while
// running or for an out-of-range position.
func (e *Engine) IncrementDigit(pos int) {
	e.stepDigit(pos, 1)
}

// DecrementDigit rolls the wheel at pos down by one
func (e *Engine) DecrementDigit(pos int) {
	e.stepDigit(pos, -1)
}

func (e *Engine) stepDigit(pos, delta int) {
	if e.State() == StateRunning || pos < 0 || pos >= NumDigits {
		return
	}
	size := MaxDigits(e.digits)[pos] + 1
	e.digits[pos] = ((e.digits[pos]+delta)%size + size) % size
	if pos == PosHourTens {
		e.enforceHourConstraint()
	}
}

func (e *Engine) enforceHourConstraint() {
	if limit := MaxDigits(e.digits)[PosHourOnes]; e.digits[PosHourOnes] > limit {
		e.digits[PosHourOnes] = limit
	}
}

// SetDigits replaces the displayed digits
func (e *Engine) SetDigits(d Digits) error {
	if e.State() == StateRunning {
		return ErrRunning
	}
	if err := d.Validate(); err != nil {
		return err
	}
	e.digits = d
	return nil
}

// SetSeconds replaces the displayed digits with the encoding of total
func (e *Engine) SetSeconds(total int) error {
	if e.State() == StateRunning {
		return ErrRunning
	}
	if !Representable(total) {
		return fmt.Errorf("%w: %d seconds", ErrInvalidDuration, total)
	}
	e.digits = SecondsToDigits(total)
	return nil
}

// Start snapshots the displayed total and begins running
func (e *Engine) Start() error {
	if e.State() != StateEditing {
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, e.State())
	}
	total := DigitsToSeconds(e.digits)
	if total == 0 {
		return ErrZeroDuration
	}
	e.preStartSeconds = total
	e.hasPreStart = true
	e.send(eventStart)
	log.Debug().Str("duration", Format(total)).Msg("countdown started")
	return nil
}

// Pause stops ticking, keeping the digits
func (e *Engine) Pause() error {
	if e.State() != StateRunning {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, e.State())
	}
	e.send(eventPause)
	return nil
}

// Resume continues a paused countdown from the displayed digits without
// taking a new snapshot
func (e *Engine) Resume() error {
	if e.State() != StatePaused {
		return fmt.Errorf("%w: resume while %s", ErrInvalidTransition, e.State())
	}
	if DigitsToSeconds(e.digits) == 0 {
		return ErrZeroDuration
	}
	e.send(eventResume)
	return nil
}

// Toggle starts, pauses or resumes depending on the state
func (e *Engine) Toggle() error {
	switch e.State() {
	case StateRunning:
		return e.Pause()
	case StatePaused:
		return e.Resume()
	default:
		return e.Start()
	}
}

// Reset returns to Editing from any state, restoring the digits captured by
// the last Start
func (e *Engine) Reset() {
	e.restore()
	e.clearLowTime()
	if e.State() != StateEditing {
		e.send(eventReset)
	}
}

// Tick advances a running countdown by one second
func (e *Engine) Tick() {
	if e.State() != StateRunning {
		return
	}

	remaining := DigitsToSeconds(e.digits) - 1
	if remaining <= 0 {
		e.restore()
		e.clearLowTime()
		e.send(eventExpire)
		log.Debug().Msg("countdown expired")
		e.emit(EventExpired, 0)
		return
	}

	e.digits = SecondsToDigits(remaining)
	e.emit(EventTick, remaining)

	if remaining <= WarningThreshold {
		e.emit(EventWarning, remaining)
	}
	switch {
	case remaining <= LowTimeThreshold && !e.lowTime:
		e.lowTime = true
		e.emit(EventLowTime, remaining)
	case remaining > LowTimeThreshold && e.lowTime:
		e.clearLowTime()
	}
}

func (e *Engine) restore() {
	if e.hasPreStart {
		e.digits = SecondsToDigits(e.preStartSeconds)
	}
}

func (e *Engine) clearLowTime() {
	if !e.lowTime {
		return
	}
	e.lowTime = false
	e.emit(EventLowTimeCleared, DigitsToSeconds(e.digits))
}

func (e *Engine) send(event string) {
	before := e.State()
	e.interp.Send(statekit.Event{Type: statekit.EventType(event)})
	if after := e.State(); after != before {
		e.emit(EventStateChanged, DigitsToSeconds(e.digits))
	}
}

func (e *Engine) emit(t EventType, remaining int) {
	if e.handler != nil {
		e.handler(Event{Type: t, Remaining: remaining, State: e.State()})
	}
}
