package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/ytget/rollcall/internal/countdown"
	"github.com/ytget/rollcall/internal/roster"
	"github.com/ytget/rollcall/internal/update"
)

// ErrEmptyRoster is returned when drawing from a roster with no names
var ErrEmptyRoster = errors.New("roster is empty")

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message string
	Hint    string
	Err     error
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{Message: msg, Hint: hint, Err: err}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, ErrEmptyRoster):
		return NewCLIError("no names to call", "Add names with 'rollcall roster add NAME...'", err)
	case errors.Is(err, roster.ErrDuplicateName):
		return NewCLIError("duplicate name", "Names on a roster must be unique", err)
	case errors.Is(err, roster.ErrEmptyName):
		return NewCLIError("invalid name", "Names cannot be blank", err)
	case errors.Is(err, countdown.ErrZeroDuration):
		return NewCLIError("nothing to count down", "Pass a duration such as 5:00 or 1:30:00", err)
	case errors.Is(err, countdown.ErrInvalidDuration):
		return NewCLIError("invalid duration", "Use SS, MM:SS or HH:MM:SS up to 99:59:59", err)
	case errors.Is(err, update.ErrNetwork):
		return NewCLIError("update server unreachable", "Check your network connection and try again", err)
	case errors.Is(err, update.ErrUpdaterMissing):
		return NewCLIError("updater not installed", "Reinstall RollCall to restore the updater", err)
	}
	return err
}

func printHint(w io.Writer, err error) {
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
	}
}
