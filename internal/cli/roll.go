package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ytget/rollcall/internal/roster"
)

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Call names interactively",
	Long: `Press Enter to call the next name, "r" to start a new round or "q" to quit.
The roster is reloaded whenever the name list file changes on disk.`,
	Args: cobra.NoArgs,
	RunE: runRoll,
}

func init() {
	RootCmd.AddCommand(rollCmd)
}

func runRoll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := env.out
	path := env.cfg.NameListPath()
	engine := loadRoster()

	watcher, err := roster.NewWatcher(path, roster.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("watch name list: %w", err)
	}
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("name list watcher stopped")
		}
	}()

	startupCheck(ctx)

	fmt.Fprintf(out, "%d name(s) loaded. Enter: call a name, r: new round, q: quit\n", engine.Len())
	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-watcher.Changes():
			reloadRoster(ctx, engine, path, out)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "":
				name, ok := engine.Draw()
				if !ok {
					fmt.Fprintln(out, MapError(ErrEmptyRoster))
					continue
				}
				fmt.Fprintf(out, ">> %s\n", name)
				if engine.Commit(name) {
					fmt.Fprintln(out, "Everyone has been called, starting a new round")
				}
				saveSession(engine, path)
			case "r", "reset":
				engine.ResetUsed()
				fmt.Fprintf(out, "New round: %d name(s) available\n", engine.Len())
				saveSession(engine, path)
			case "q", "quit", "exit":
				return nil
			default:
				fmt.Fprintln(out, "Enter: call a name, r: new round, q: quit")
			}
		}
	}
}

// reloadRoster picks up edits made outside the session. Our own saves come
// back through the watcher too and are ignored when nothing changed.
func reloadRoster(ctx context.Context, engine *roster.Engine, path string, out io.Writer) {
	doc, err := roster.ReadDocument(ctx, path)
	if err != nil {
		if !errors.Is(err, roster.ErrNoDocument) {
			log.Warn().Err(err).Str("path", path).Msg("failed to reload name list")
		}
		return
	}
	current := engine.Document()
	if slices.Equal(doc.Names, current.Names) && slices.Equal(doc.UsedNames, current.UsedNames) {
		return
	}
	engine.Replace(doc)
	fmt.Fprintf(out, "Roster reloaded: %d name(s)\n", engine.Len())
}

func saveSession(engine *roster.Engine, path string) {
	if env.settings.GetAutoSave() {
		engine.SaveToFile(path)
	}
}

// readLines delivers lines from r until EOF or ctx is done
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
