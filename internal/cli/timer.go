package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ytget/rollcall/internal/countdown"
	"github.com/ytget/rollcall/internal/notify"
)

// TitleTimer labels countdown notifications
const TitleTimer = "Countdown"

// newClock drives the countdown; tests swap in a fake clock
var newClock = func() clockwork.Clock {
	return clockwork.NewRealClock()
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Countdown timer",
}

var timerRunCmd = &cobra.Command{
	Use:   "run [DURATION]",
	Short: "Run a countdown",
	Long: `Counts down from DURATION, given as SS, MM:SS or HH:MM:SS (default 00:05:00).
Press Enter or "p" to pause and resume, "r" to reset and "q" to quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTimer,
}

var timerParseCmd = &cobra.Command{
	Use:   "parse DURATION",
	Short: "Validate a duration and print it as HH:MM:SS",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerParse,
}

func init() {
	timerCmd.AddCommand(timerRunCmd, timerParseCmd)
	RootCmd.AddCommand(timerCmd)
}

func runTimerParse(cmd *cobra.Command, args []string) error {
	seconds, err := countdown.ParseDuration(args[0])
	if err != nil {
		return MapError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d seconds)\n", countdown.Format(seconds), seconds)
	return nil
}

// timerEvents prints countdown events to out and signals expired when the
// countdown runs out
func timerEvents(out io.Writer, notifier notify.Notifier, expired chan<- struct{}) func(countdown.Event) {
	return func(ev countdown.Event) {
		switch ev.Type {
		case countdown.EventTick:
			fmt.Fprintln(out, countdown.Format(ev.Remaining))
		case countdown.EventWarning:
			fmt.Fprint(out, "\a")
		case countdown.EventLowTime:
			fmt.Fprintln(out, "Less than a minute left")
		case countdown.EventStateChanged:
			log.Debug().Str("state", ev.State).Int("remaining", ev.Remaining).Msg("countdown state changed")
			if ev.State == countdown.StatePaused {
				fmt.Fprintf(out, "Paused at %s\n", countdown.Format(ev.Remaining))
			}
		case countdown.EventExpired:
			notifier.Notify(notify.Notification{
				Level:   notify.LevelWarning,
				Title:   TitleTimer,
				Message: "Time is up",
			})
			select {
			case expired <- struct{}{}:
			default:
			}
		}
	}
}

func runTimer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	engine, err := countdown.NewEngine()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		seconds, err := countdown.ParseDuration(args[0])
		if err != nil {
			return MapError(err)
		}
		if err := engine.SetSeconds(seconds); err != nil {
			return MapError(err)
		}
	}

	out := env.out
	notifier := env.notifier(env.settings.GetShowTimerNotification())
	expired := make(chan struct{}, 1)

	engine.SetEventHandler(timerEvents(out, notifier, expired))

	fmt.Fprintf(out, "Counting down from %s. Enter/p: pause or resume, r: reset, q: quit\n", engine.Digits())

	runner := countdown.NewRunner(engine, newClock())
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := runner.Send(ctx, countdown.Command{Type: countdown.CmdStart}); err != nil {
		return MapError(err)
	}

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-expired:
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}

			var command countdown.Command
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "", "p":
				command.Type = countdown.CmdToggle
			case "r", "reset":
				command.Type = countdown.CmdReset
			case "q", "quit", "exit":
				return nil
			default:
				fmt.Fprintln(out, "Enter/p: pause or resume, r: reset, q: quit")
				continue
			}
			if err := runner.Send(ctx, command); err != nil {
				fmt.Fprintln(out, MapError(err))
				continue
			}
			if command.Type == countdown.CmdReset {
				fmt.Fprintln(out, "Reset, press Enter to start again")
			}
		}
	}
}
