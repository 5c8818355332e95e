package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/ytget/rollcall/internal/model"
	"github.com/ytget/rollcall/internal/platform"
)

// Staging layout and transfer constants
const (
	TaskIDPrefix     = "update-"
	ArchiveExt       = ".zip"
	UpdateDirName    = "update"
	ProgressInterval = 100 * time.Millisecond
	DownloadAttempts = 2
	RetryDelay       = 2 * time.Second
)

// ErrTaskNotFound is returned for unknown task ids
var ErrTaskNotFound = errors.New("task not found")

// Service handles update archive downloads
type Service struct {
	client      *http.Client
	stagingDir  string
	extract     ExtractFunc
	retryConfig retry.Config

	tasks      map[string]*model.UpdateTask
	cancels    map[string]context.CancelFunc
	done       map[string]chan struct{}
	tasksMutex sync.RWMutex
	onUpdate   func(*model.UpdateTask) // receives a copy of the task
}

// NewService creates a download service staging files under stagingDir. A nil
// client uses http.DefaultClient.
func NewService(stagingDir string, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		client:     client,
		stagingDir: stagingDir,
		retryConfig: retry.Config{
			MaxAttempts:   DownloadAttempts,
			InitialDelay:  RetryDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
		tasks:   make(map[string]*model.UpdateTask),
		cancels: make(map[string]context.CancelFunc),
		done:    make(map[string]chan struct{}),
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.UpdateTask)) {
	s.onUpdate = callback
}

// SetExtractor sets the function that unpacks a finished archive
func (s *Service) SetExtractor(extract ExtractFunc) {
	s.extract = extract
}

// StagingDir returns the directory holding archives and the staged update
func (s *Service) StagingDir() string {
	return s.stagingDir
}

// StagedDir returns the directory the extractor writes into
func (s *Service) StagedDir() string {
	return filepath.Join(s.stagingDir, UpdateDirName)
}

// AddTask starts downloading the archive for version from url
func (s *Service) AddTask(ctx context.Context, version, url string) (*model.UpdateTask, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("empty download url")
	}

	s.tasksMutex.Lock()
	for _, task := range s.tasks {
		if task.Version == version && !task.Status.IsFinished() {
			s.tasksMutex.Unlock()
			return nil, fmt.Errorf("download already in progress for version: %s", version)
		}
	}

	task := &model.UpdateTask{
		ID:          generateTaskID(),
		Version:     version,
		URL:         url,
		Status:      model.TaskStatusPending,
		Total:       -1,
		ArchivePath: filepath.Join(s.stagingDir, archiveName(version)),
		StagedDir:   s.StagedDir(),
		StartedAt:   time.Now(),
	}
	taskCtx, cancel := context.WithCancel(ctx)
	s.tasks[task.ID] = task
	s.cancels[task.ID] = cancel
	s.done[task.ID] = make(chan struct{})
	snapshot := *task
	s.tasksMutex.Unlock()

	go s.startTask(taskCtx, task)

	return &snapshot, nil
}

// GetTask returns a copy of the task with id
func (s *Service) GetTask(id string) (*model.UpdateTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// GetAllTasks returns copies of all tasks, oldest first
func (s *Service) GetAllTasks() []*model.UpdateTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.UpdateTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		snapshot := *task
		tasks = append(tasks, &snapshot)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// StopTask cancels a running task. Its partial files are removed.
func (s *Service) StopTask(id string) error {
	s.tasksMutex.Lock()
	task, exists := s.tasks[id]
	if !exists {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.IsActive() && task.Status != model.TaskStatusPending {
		s.tasksMutex.Unlock()
		return fmt.Errorf("task is not active: %s", task.Status)
	}
	task.Status = model.TaskStatusStopping
	snapshot := *task
	cancel := s.cancels[id]
	s.tasksMutex.Unlock()

	s.notifyUpdate(&snapshot)
	cancel()
	return nil
}

// RemoveTask forgets a finished task
func (s *Service) RemoveTask(id string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.IsFinished() {
		return fmt.Errorf("cannot remove task in state: %s", task.Status)
	}
	delete(s.tasks, id)
	delete(s.cancels, id)
	delete(s.done, id)
	return nil
}

// Wait blocks until the task finishes and returns its final state
func (s *Service) Wait(ctx context.Context, id string) (*model.UpdateTask, error) {
	s.tasksMutex.RLock()
	done, exists := s.done[id]
	s.tasksMutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	select {
	case <-done:
		task, _ := s.GetTask(id)
		return task, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// startTask downloads and extracts one archive
func (s *Service) startTask(ctx context.Context, task *model.UpdateTask) {
	s.tasksMutex.RLock()
	done := s.done[task.ID]
	cancel := s.cancels[task.ID]
	s.tasksMutex.RUnlock()
	defer close(done)
	defer cancel()

	s.setStatus(task, model.TaskStatusStarting)
	s.setStatus(task, model.TaskStatusDownloading)

	logger := log.With().Str("task_id", task.ID).Str("version", task.Version).Logger()
	logger.Info().Str("url", task.URL).Msg("downloading update")

	err := s.downloadWithRetry(ctx, task)
	if err == nil && s.extract != nil {
		s.setStatus(task, model.TaskStatusExtracting)
		if err = os.RemoveAll(task.StagedDir); err == nil {
			err = s.extract(task.ArchivePath, task.StagedDir)
		}
	}

	// Update final status
	s.tasksMutex.Lock()
	switch {
	case task.Status == model.TaskStatusStopping, err != nil && ctx.Err() != nil:
		task.Status = model.TaskStatusStopped
	case err != nil:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
	default:
		task.Status = model.TaskStatusCompleted
		task.Percent = 100
	}
	task.FinishedAt = time.Now()
	snapshot := *task
	s.tasksMutex.Unlock()

	switch snapshot.Status {
	case model.TaskStatusStopped:
		s.cleanup(&snapshot)
		logger.Info().Msg("update download cancelled")
	case model.TaskStatusError:
		s.cleanup(&snapshot)
		logger.Error().Err(err).Msg("update download failed")
	default:
		logger.Info().Str("staged", snapshot.StagedDir).Msg("update staged")
	}

	s.notifyUpdate(&snapshot)
}

// downloadWithRetry attempts the transfer with retry logic
func (s *Service) downloadWithRetry(ctx context.Context, task *model.UpdateTask) error {
	retryer := retry.New[int64](s.retryConfig)
	_, err := retryer.Do(ctx, func(ctx context.Context) (int64, error) {
		n, err := s.fetch(ctx, task)
		if err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("task_id", task.ID).Msg("download attempt failed")
		}
		return n, err
	})
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// fetch streams the archive to disk, reporting progress
func (s *Service) fetch(ctx context.Context, task *model.UpdateTask) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to download archive: HTTP %d", resp.StatusCode)
	}

	if err := platform.CreateDirectoryIfNotExists(s.stagingDir); err != nil {
		return 0, err
	}
	f, err := os.Create(task.ArchivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive file: %w", err)
	}

	pw := &progressWriter{service: s, task: task, total: resp.ContentLength}
	pw.report(true)
	n, err := io.Copy(f, io.TeeReader(resp.Body, pw))
	closeErr := f.Close()
	pw.finish()
	if err != nil {
		return n, fmt.Errorf("failed to read archive data: %w", err)
	}
	if closeErr != nil {
		return n, fmt.Errorf("failed to write archive file: %w", closeErr)
	}
	return n, nil
}

// progressWriter counts bytes and throttles progress notifications. A count
// held back by the throttle is flushed once the interval has passed, even if
// no more data arrives.
type progressWriter struct {
	service *Service
	task    *model.UpdateTask
	total   int64

	mu         sync.Mutex
	downloaded int64
	lastReport time.Time
	gotData    bool
	pending    *time.Timer
	finished   bool
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	pw.downloaded += int64(len(p))
	first := !pw.gotData
	pw.gotData = true
	pw.mu.Unlock()

	pw.report(first)
	return len(p), nil
}

func (pw *progressWriter) report(force bool) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.finished {
		return
	}
	if !force {
		if wait := ProgressInterval - time.Since(pw.lastReport); wait > 0 {
			if pw.pending == nil {
				pw.pending = time.AfterFunc(wait, pw.flush)
			}
			return
		}
	}
	pw.publish()
}

func (pw *progressWriter) flush() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.pending = nil
	if !pw.finished {
		pw.publish()
	}
}

// finish publishes the final count and stops further notifications
func (pw *progressWriter) finish() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.publish()
	pw.finished = true
}

// publish must be called with pw.mu held
func (pw *progressWriter) publish() {
	if pw.pending != nil {
		pw.pending.Stop()
		pw.pending = nil
	}
	pw.lastReport = time.Now()

	s := pw.service
	s.tasksMutex.Lock()
	pw.task.SetProgress(pw.downloaded, pw.total)
	snapshot := *pw.task
	s.tasksMutex.Unlock()
	s.notifyUpdate(&snapshot)
}

// setStatus updates the task status and notifies
func (s *Service) setStatus(task *model.UpdateTask, status model.TaskStatus) {
	s.tasksMutex.Lock()
	if task.Status == model.TaskStatusStopping {
		s.tasksMutex.Unlock()
		return
	}
	task.Status = status
	snapshot := *task
	s.tasksMutex.Unlock()
	s.notifyUpdate(&snapshot)
}

// cleanup removes the partial archive and anything already staged
func (s *Service) cleanup(task *model.UpdateTask) {
	if err := os.Remove(task.ArchivePath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", task.ArchivePath).Msg("failed to remove partial archive")
	}
	if err := os.RemoveAll(task.StagedDir); err != nil {
		log.Warn().Err(err).Str("path", task.StagedDir).Msg("failed to remove staged files")
	}
	platform.RemoveDirIfEmpty(s.stagingDir)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.UpdateTask) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}

// archiveName returns a file name for version that stays inside the staging dir
func archiveName(version string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, strings.TrimSpace(version))
	if name == "" || name == "." || name == ".." {
		name = "update"
	}
	return name + ArchiveExt
}

// generateTaskID generates a unique task ID using UUID v7 for time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
