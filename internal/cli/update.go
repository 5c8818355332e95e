package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ytget/rollcall/internal/download"
	"github.com/ytget/rollcall/internal/model"
	"github.com/ytget/rollcall/internal/update"
)

var (
	updateSilent    bool
	updateForce     bool
	updateNoHandoff bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for and install new versions",
}

var updateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a new version is available",
	Args:  cobra.NoArgs,
	RunE:  runUpdateCheck,
}

var updateDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the latest version and hand off to the updater",
	Args:  cobra.NoArgs,
	RunE:  runUpdateDownload,
}

func init() {
	updateCheckCmd.Flags().BoolVar(&updateSilent, "silent", false, "Only report when an update is available")
	updateDownloadCmd.Flags().BoolVar(&updateForce, "force", false, "Download even when already up to date")
	updateDownloadCmd.Flags().BoolVar(&updateNoHandoff, "no-handoff", false, "Stage the update without starting the updater")

	updateCmd.AddCommand(updateCheckCmd, updateDownloadCmd)
	RootCmd.AddCommand(updateCmd)
}

func newWorkflow() *update.Workflow {
	cfg := env.cfg.Update
	checker := update.NewChecker(cfg.DescriptorURL, cfg.CheckTimeout, nil)
	downloads := download.NewService(cfg.StagingDir, nil)
	return update.NewWorkflow(Version, env.cfg.UpdaterExecutablePath(), checker, downloads, env.notifier(true))
}

// startupCheck runs a silent check in the background when enabled
func startupCheck(ctx context.Context) {
	if !env.settings.GetCheckUpdateOnStartup() {
		return
	}
	workflow := newWorkflow()
	go func() {
		if _, err := workflow.CheckForUpdate(ctx, true); err != nil {
			log.Debug().Err(err).Msg("startup update check failed")
		}
	}()
}

func runUpdateCheck(cmd *cobra.Command, _ []string) error {
	_, err := newWorkflow().CheckForUpdate(cmd.Context(), updateSilent)
	if err != nil {
		if updateSilent {
			log.Debug().Err(err).Msg("update check failed")
			return nil
		}
		return MapError(err)
	}
	return nil
}

func runUpdateDownload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	workflow := newWorkflow()

	result, err := workflow.CheckForUpdate(ctx, true)
	if err != nil {
		return MapError(err)
	}
	if !result.Available() && !updateForce {
		fmt.Fprintf(env.out, "Already running version %s\n", result.CurrentVersion)
		return nil
	}

	final, err := workflow.Download(ctx, result.Version, result.DownloadURL, progressPrinter(env.out))
	if err != nil {
		return MapError(err)
	}
	fmt.Fprintf(env.out, "Version %s staged in %s\n", result.Version, final.StagedDir)

	if updateNoHandoff {
		return nil
	}
	if err := workflow.Handoff(); err != nil {
		return MapError(err)
	}
	fmt.Fprintln(env.out, "Updater started, RollCall will restart when it finishes")
	return nil
}

// progressPrinter prints status changes and whole-percent progress steps
func progressPrinter(out io.Writer) func(*model.UpdateTask) {
	var lastStatus model.TaskStatus
	lastPercent := -1
	return func(task *model.UpdateTask) {
		if task.Status != lastStatus {
			lastStatus = task.Status
			fmt.Fprintf(out, "%s %s\n", task.GetDisplayTitle(), task.Status.Label())
		}
		if task.Status == model.TaskStatusDownloading && task.Percent != lastPercent && task.Total > 0 {
			lastPercent = task.Percent
			fmt.Fprintf(out, "  %s\n", task.GetProgressString())
		}
	}
}
