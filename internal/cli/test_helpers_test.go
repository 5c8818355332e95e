package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ytget/rollcall/internal/config"
)

// withDataDir points the CLI at a fresh data and install directory and
// replaces the desktop app with the fyne test app
func withDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(config.EnvInstallDir, dir)
	t.Setenv(config.EnvDescriptorURL, "")
	t.Setenv(config.EnvLogLevel, "error")

	app := test.NewApp()
	prevApp := desktopApp
	desktopApp = func() fyne.App { return app }
	t.Cleanup(func() {
		desktopApp = prevApp
		app.Quit()
	})
	return dir
}

// execute runs the command tree with args and stdin, returning its output
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(RootCmd)
	var out bytes.Buffer
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(args)

	err := RootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := execute(t, stdin, args...)
	if err != nil {
		t.Fatalf("%s: error = %v\noutput:\n%s", strings.Join(args, " "), err, out)
	}
	return out
}
