package download

import (
	"context"

	"github.com/ytget/rollcall/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(*model.UpdateTask))
	SetExtractor(ExtractFunc)
	AddTask(ctx context.Context, version, url string) (*model.UpdateTask, error)
	GetTask(id string) (*model.UpdateTask, bool)
	GetAllTasks() []*model.UpdateTask
	StopTask(id string) error
	RemoveTask(id string) error
	Wait(ctx context.Context, id string) (*model.UpdateTask, error)
}

// ExtractFunc unpacks archivePath into destDir
type ExtractFunc func(archivePath, destDir string) error
