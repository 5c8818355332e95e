package update

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/ytget/rollcall/internal/download"
	"github.com/ytget/rollcall/internal/model"
	"github.com/ytget/rollcall/internal/notify"
	"github.com/ytget/rollcall/internal/platform"
)

// Notification titles
const (
	TitleCheck  = "Check for updates"
	TitleUpdate = "Update"
)

// Workflow runs the in-application half of an update: check, download,
// stage and hand off to the updater executable
type Workflow struct {
	CurrentVersion string
	UpdaterPath    string

	checker   *Checker
	downloads download.Downloader
	notifier  notify.Notifier
	launch    func(program string, args ...string) error
}

// NewWorkflow wires a checker and a download service. The download service
// is given the top-level extractor.
func NewWorkflow(currentVersion, updaterPath string, checker *Checker, downloads download.Downloader, notifier notify.Notifier) *Workflow {
	if notifier == nil {
		notifier = notify.Log{}
	}
	downloads.SetExtractor(ExtractTopLevel)
	return &Workflow{
		CurrentVersion: currentVersion,
		UpdaterPath:    updaterPath,
		checker:        checker,
		downloads:      downloads,
		notifier:       notifier,
		launch:         platform.StartDetached,
	}
}

// CheckForUpdate checks the descriptor and notifies the user. In silent mode
// only an available update is reported; "up to date" and network errors stay
// quiet. The error is returned either way.
func (w *Workflow) CheckForUpdate(ctx context.Context, silent bool) (*CheckResult, error) {
	result, err := w.checker.Check(ctx, w.CurrentVersion)
	if err != nil {
		if !silent {
			w.notifier.Notify(notify.Notification{
				Level:   notify.LevelError,
				Title:   TitleCheck,
				Message: "Cannot reach the update server, check your network connection",
			})
		}
		return nil, err
	}

	switch {
	case result.Available():
		w.notifier.Notify(notify.Notification{
			Level:   notify.LevelInfo,
			Title:   TitleCheck,
			Message: fmt.Sprintf("New version %s is available", result.Version),
		})
	case !silent:
		w.notifier.Notify(notify.Notification{
			Level:   notify.LevelSuccess,
			Title:   TitleCheck,
			Message: "You are running the latest version",
		})
	}
	return result, nil
}

// Download fetches and stages the archive for version, forwarding task
// updates to progress. It returns the final task state.
func (w *Workflow) Download(ctx context.Context, version, url string, progress func(*model.UpdateTask)) (*model.UpdateTask, error) {
	if progress != nil {
		w.downloads.SetUpdateCallback(progress)
	}
	task, err := w.downloads.AddTask(ctx, version, url)
	if err != nil {
		return nil, err
	}
	final, err := w.downloads.Wait(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	switch final.Status {
	case model.TaskStatusCompleted:
		return final, nil
	case model.TaskStatusStopped:
		return final, context.Canceled
	default:
		w.notifier.Notify(notify.Notification{
			Level:   notify.LevelError,
			Title:   TitleUpdate,
			Message: "Failed to download update: " + final.LastError,
		})
		return final, fmt.Errorf("download failed: %s", final.LastError)
	}
}

// Handoff launches the updater executable detached. The caller exits
// afterwards so the updater can replace its files.
func (w *Workflow) Handoff() error {
	if _, err := os.Stat(w.UpdaterPath); err != nil {
		w.notifier.Notify(notify.Notification{
			Level:   notify.LevelWarning,
			Title:   TitleUpdate,
			Message: "Update downloaded, but the updater was not found",
		})
		return fmt.Errorf("%w: %s", ErrUpdaterMissing, w.UpdaterPath)
	}
	if err := w.launch(w.UpdaterPath); err != nil {
		w.notifier.Notify(notify.Notification{
			Level:   notify.LevelError,
			Title:   TitleUpdate,
			Message: "Cannot start the updater: " + err.Error(),
		})
		return err
	}
	log.Info().Str("updater", w.UpdaterPath).Msg("handed off to updater")
	return nil
}

// DownloadAndApply downloads and stages the update, then hands off to the
// updater
func (w *Workflow) DownloadAndApply(ctx context.Context, version, url string, progress func(*model.UpdateTask)) error {
	if _, err := w.Download(ctx, version, url, progress); err != nil {
		return err
	}
	return w.Handoff()
}

// PostUpdateNotice reports "updated to X" when the stored version differs
// from the running one. It returns whether the notice was shown.
func PostUpdateNotice(notifier notify.Notifier, previous, current string, changed bool) bool {
	if !changed {
		return false
	}
	notifier.Notify(notify.Notification{
		Level:   notify.LevelSuccess,
		Title:   TitleUpdate,
		Message: fmt.Sprintf("Updated from %s to %s", previous, current),
	})
	return true
}
