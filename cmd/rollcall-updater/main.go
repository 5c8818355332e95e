package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/ytget/rollcall/internal/cli"
	"github.com/ytget/rollcall/internal/config"
	"github.com/ytget/rollcall/internal/download"
	"github.com/ytget/rollcall/internal/notify"
	"github.com/ytget/rollcall/internal/update"
)

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	notifier := notify.Multi{notify.Log{}}
	err := run(ctx, os.Args[1:], &notifier)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("update failed")
		os.Exit(1)
	}
}

// run applies the staged update described by the configuration and flags.
// Failures are reported through notifier before being returned.
func run(ctx context.Context, args []string, notifier *notify.Multi) error {
	flags := pflag.NewFlagSet("rollcall-updater", pflag.ContinueOnError)
	configPath := flags.String("config", config.DefaultAppConfigPath(), "Path to rollcall.yaml")
	installDir := flags.String("install-dir", "", "Application directory to update")
	settle := flags.Duration("settle", update.DefaultApplySettle, "Delay before files are replaced")
	noRelaunch := flags.Bool("no-relaunch", false, "Do not start the application afterwards")
	desktop := flags.Bool("desktop", true, "Report failures as desktop notifications")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		return err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
	if *installDir != "" {
		cfg.Update.InstallDir = *installDir
		cfg.Update.StagingDir = filepath.Join(*installDir, config.DefaultStagingDirName)
	}
	if *desktop {
		*notifier = append(*notifier, notify.NewDesktop(app.NewWithID(cli.AppID)))
	}

	applier := update.NewApplier(
		cfg.Update.InstallDir,
		cfg.Update.StagingDir,
		filepath.Join(cfg.Update.StagingDir, download.UpdateDirName),
		cfg.Update.ProcessName,
		cfg.MainExecutablePath(),
	)
	applier.ApplySettle = *settle
	if *noRelaunch {
		applier.MainExecutable = ""
	}

	start := time.Now()
	result, err := applier.Apply(ctx)
	if err != nil {
		notifier.Notify(notify.Notification{
			Level:   notify.LevelError,
			Title:   update.TitleUpdate,
			Message: fmt.Sprintf("Update failed: %v", err),
		})
		return err
	}

	log.Info().
		Bool("killed", result.Killed).
		Int("files", result.Copied).
		Bool("relaunched", result.Relaunched).
		Dur("took", time.Since(start)).
		Msg("update applied")
	return nil
}
