package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ytget/rollcall/internal/platform"
)

// Settle delays give the killed application time to release its files
const (
	DefaultKillSettle  = 2 * time.Second
	DefaultApplySettle = 1 * time.Second
)

// Applier replaces the installed application with a staged update
type Applier struct {
	InstallDir     string
	StagingDir     string
	StagedDir      string
	ProcessName    string
	MainExecutable string // full path of the program relaunched afterwards

	KillSettle  time.Duration
	ApplySettle time.Duration

	kill   func(ctx context.Context, name string) (bool, error)
	launch func(program string, args ...string) error
}

// ApplyResult describes a finished apply
type ApplyResult struct {
	Killed     bool
	SourceDir  string
	Copied     int
	Relaunched bool
}

// NewApplier creates an applier using the platform process helpers
func NewApplier(installDir, stagingDir, stagedDir, processName, mainExecutable string) *Applier {
	return &Applier{
		InstallDir:     installDir,
		StagingDir:     stagingDir,
		StagedDir:      stagedDir,
		ProcessName:    processName,
		MainExecutable: mainExecutable,
		KillSettle:     DefaultKillSettle,
		ApplySettle:    DefaultApplySettle,
		kill:           platform.KillProcessByName,
		launch:         platform.StartDetached,
	}
}

// Apply stops the running application, copies the staged tree over the
// install directory, removes the staged files and relaunches the
// application. Copying stops at the first failure; files in the install
// directory that the update does not contain are left alone.
func (a *Applier) Apply(ctx context.Context) (*ApplyResult, error) {
	result := &ApplyResult{}

	if a.ProcessName != "" {
		killed, err := a.kill(ctx, platform.ExecutableName(a.ProcessName))
		if err != nil {
			log.Warn().Err(err).Str("process", a.ProcessName).Msg("failed to stop application")
		}
		result.Killed = killed
		if killed {
			if err := sleep(ctx, a.KillSettle); err != nil {
				return result, err
			}
		}
	}
	if err := sleep(ctx, a.ApplySettle); err != nil {
		return result, err
	}

	source, err := ResolveUpdateRoot(a.StagedDir)
	if err != nil {
		return result, err
	}
	result.SourceDir = source

	copied, err := platform.CopyTree(source, a.InstallDir)
	result.Copied = copied
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	log.Info().Int("files", copied).Str("from", source).Str("to", a.InstallDir).Msg("update installed")

	a.cleanup()

	if a.MainExecutable != "" {
		if err := a.launch(a.MainExecutable); err != nil {
			return result, fmt.Errorf("relaunch: %w", err)
		}
		result.Relaunched = true
	}
	return result, nil
}

// cleanup removes the staged tree and any staging directories left empty
func (a *Applier) cleanup() {
	if err := os.RemoveAll(a.StagedDir); err != nil {
		log.Warn().Err(err).Str("path", a.StagedDir).Msg("failed to remove staged update")
	}
	if a.StagingDir != "" {
		platform.RemoveDirIfEmpty(a.StagingDir)
	}
}

// ResolveUpdateRoot returns the directory whose contents should be
// installed. A staged tree holding a single directory and nothing else is
// descended into.
func ResolveUpdateRoot(stagedDir string) (string, error) {
	entries, err := os.ReadDir(stagedDir)
	if err != nil {
		return "", fmt.Errorf("%w: no staged update: %v", ErrFilesystem, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%w: staged update is empty", ErrFilesystem)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(stagedDir, entries[0].Name()), nil
	}
	return stagedDir, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
