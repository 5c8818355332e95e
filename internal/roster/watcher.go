package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/ytget/rollcall/internal/platform"
)

// DefaultDebounce coalesces the bursts of events editors produce on save
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes to a single name list file
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	changes  chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches path. The parent directory is watched so that files
// replaced by rename are still seen; it is created if missing.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes delivers one value per debounced burst of changes. Pending
// notifications are coalesced when the receiver is slow.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run processes filesystem events until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Remove) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("name list changed")
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.changes <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}
