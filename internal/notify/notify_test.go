package notify

import (
	"bytes"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestDesktopSendsNotification(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	d := NewDesktop(app)
	expected := fyne.NewNotification("Countdown", "Time is up")
	test.AssertNotificationSent(t, expected, func() {
		d.Notify(Notification{Level: LevelInfo, Title: "Countdown", Message: "Time is up"})
	})
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = original }()

	Log{}.Notify(Notification{Level: LevelError, Title: "Update", Message: "cannot reach server"})

	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"title":"Update"`, "cannot reach server"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}

func TestMultiAndFunc(t *testing.T) {
	var got []string
	record := Func(func(n Notification) { got = append(got, n.Title) })

	Multi{record, nil, record}.Notify(Notification{Title: "x"})

	if len(got) != 2 {
		t.Errorf("Multi delivered %d notifications, expected 2", len(got))
	}
}

func TestLevelString(t *testing.T) {
	tests := map[Level]string{
		LevelInfo:    "info",
		LevelSuccess: "success",
		LevelWarning: "warning",
		LevelError:   "error",
		Level(42):    "info",
	}
	for level, want := range tests {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %s, expected %s", level, got, want)
		}
	}
}
