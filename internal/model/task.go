package model

import (
	"fmt"
	"time"
)

// UpdateTask represents a single update archive download
type UpdateTask struct {
	ID          string
	Version     string
	URL         string
	Status      TaskStatus
	Downloaded  int64     // bytes received so far
	Total       int64     // content length, -1 if unknown
	Percent     int       // 0 to 100, 0 while total is unknown
	LastError   string    // last error message if any
	ArchivePath string    // path of the downloaded archive
	StagedDir   string    // directory holding the extracted update
	StartedAt   time.Time // when download started
	FinishedAt  time.Time // when download finished
}

// SetProgress records byte progress and derives the percentage
func (ut *UpdateTask) SetProgress(downloaded, total int64) {
	ut.Downloaded = downloaded
	ut.Total = total
	if total > 0 {
		percent := downloaded * 100 / total
		if percent > 100 {
			percent = 100
		}
		ut.Percent = int(percent)
	}
}

// GetProgressString returns progress as "42%" or a byte count when the size is unknown
func (ut *UpdateTask) GetProgressString() string {
	if ut.Total > 0 {
		return fmt.Sprintf("%d%%", ut.Percent)
	}
	return formatBytes(ut.Downloaded)
}

// GetDisplayTitle returns the version label, falling back to the URL
func (ut *UpdateTask) GetDisplayTitle() string {
	if ut.Version != "" {
		return "v" + ut.Version
	}
	return ut.URL
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
