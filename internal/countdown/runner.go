package countdown

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// TickInterval is the countdown resolution
const TickInterval = time.Second

// CommandType enumerates operations a Runner applies to its engine
type CommandType int

const (
	CmdStart CommandType = iota
	CmdPause
	CmdResume
	CmdToggle
	CmdReset
	CmdIncrement
	CmdDecrement
	CmdSetSeconds
)

// Command is a request for the runner loop. Pos is used by Increment and
// Decrement, Seconds by SetSeconds. Reply, when set, receives the result.
type Command struct {
	Type    CommandType
	Pos     int
	Seconds int
	Reply   chan error
}

// Runner owns an Engine and drives it from a clock. All engine access,
// including the event handler, happens on the goroutine calling Run.
type Runner struct {
	engine   *Engine
	clock    clockwork.Clock
	commands chan Command
}

// NewRunner creates a runner for engine. A nil clock uses the real clock.
func NewRunner(engine *Engine, clock clockwork.Clock) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		engine:   engine,
		clock:    clock,
		commands: make(chan Command, 8),
	}
}

// Send queues cmd and waits for it to be applied
func (r *Runner) Send(ctx context.Context, cmd Command) error {
	cmd.Reply = make(chan error, 1)
	select {
	case r.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.Reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies commands and ticks until ctx is cancelled. A ticker exists
// only while the engine is running.
func (r *Runner) Run(ctx context.Context) error {
	var ticker clockwork.Ticker
	var tickC <-chan time.Time

	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}
	defer stopTicker()

	for {
		running := r.engine.State() == StateRunning
		switch {
		case running && ticker == nil:
			ticker = r.clock.NewTicker(TickInterval)
			tickC = ticker.Chan()
		case !running:
			stopTicker()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.commands:
			err := r.apply(cmd)
			if cmd.Reply != nil {
				cmd.Reply <- err
			}
		case <-tickC:
			r.engine.Tick()
		}
	}
}

func (r *Runner) apply(cmd Command) error {
	switch cmd.Type {
	case CmdStart:
		return r.engine.Start()
	case CmdPause:
		return r.engine.Pause()
	case CmdResume:
		return r.engine.Resume()
	case CmdToggle:
		return r.engine.Toggle()
	case CmdReset:
		r.engine.Reset()
		return nil
	case CmdIncrement:
		r.engine.IncrementDigit(cmd.Pos)
		return nil
	case CmdDecrement:
		r.engine.DecrementDigit(cmd.Pos)
		return nil
	case CmdSetSeconds:
		return r.engine.SetSeconds(cmd.Seconds)
	default:
		return fmt.Errorf("unknown command: %d", cmd.Type)
	}
}
