package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ytget/rollcall/internal/config"
	"github.com/ytget/rollcall/internal/notify"
	"github.com/ytget/rollcall/internal/update"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// AppID identifies the application to the desktop notification service
const AppID = "com.ytget.rollcall"

// Global flags
var (
	configPath   string
	dataDirFlag  string
	logLevelFlag string
	noDesktop    bool
)

// desktopApp creates the fyne application used for system notifications
var desktopApp = func() fyne.App {
	return app.NewWithID(AppID)
}

// syncWriter serializes output from the command and its background goroutines
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// environment is the state shared by all commands of one invocation
type environment struct {
	cfg      *config.AppConfig
	settings *config.Settings
	out      io.Writer

	appOnce sync.Once
	app     fyne.App
}

var env *environment

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "rollcall",
	Version: Version,
	Short:   "Random name caller and countdown timer",
	Long: `RollCall picks names at random from a roster without repeating anyone
until everybody has been called, runs an editable countdown timer and keeps
itself up to date.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		printHint(RootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to rollcall.yaml (default: inside the data directory)")
	RootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory holding the name list and settings")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().BoolVar(&noDesktop, "no-desktop", false, "Disable desktop notifications")
}

func setup(cmd *cobra.Command, _ []string) error {
	envErr := godotenv.Load()

	path := configPath
	if path == "" {
		path = config.DefaultAppConfigPath()
	}
	cfg, err := config.LoadAppConfig(path)
	if err != nil {
		return err
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	setupLogging(cmd.ErrOrStderr(), cfg.LogLevel)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("could not load .env file")
	}

	settings := config.NewSettings(cfg.SettingsPath())
	settings.Load()

	env = &environment{cfg: cfg, settings: settings, out: &syncWriter{w: cmd.OutOrStdout()}}

	previous, changed := settings.CheckVersionChange(Version)
	if previous != Version {
		settings.Save()
	}
	if changed {
		update.PostUpdateNotice(env.notifier(true), previous, Version, changed)
	}
	return nil
}

func setupLogging(w io.Writer, level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
}

// notifier prints to the command output and, when desktop is set and not
// disabled by flag, raises a system notification as well
func (e *environment) notifier(desktop bool) notify.Notifier {
	console := notify.Func(func(n notify.Notification) {
		fmt.Fprintf(e.out, "%s: %s\n", n.Title, n.Message)
	})
	if !desktop || noDesktop {
		return notify.Multi{console}
	}
	return notify.Multi{console, notify.NewDesktop(e.desktop())}
}

func (e *environment) desktop() fyne.App {
	e.appOnce.Do(func() {
		e.app = desktopApp()
	})
	return e.app
}
