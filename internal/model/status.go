package model

import "strings"

// TaskStatus is the lifecycle stage of an update download
type TaskStatus string

// A task moves Pending → Starting → Downloading → Extracting and ends in
// Completed, Stopped or Error. Stopping is transient while a cancel is
// being honoured.
const (
	TaskStatusPending     TaskStatus = "Pending"
	TaskStatusStarting    TaskStatus = "Starting"
	TaskStatusDownloading TaskStatus = "Downloading"
	TaskStatusExtracting  TaskStatus = "Extracting"
	TaskStatusStopping    TaskStatus = "Stopping"
	TaskStatusStopped     TaskStatus = "Stopped"
	TaskStatusCompleted   TaskStatus = "Completed"
	TaskStatusError       TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// Label returns the status in lower case for progress lines
func (ts TaskStatus) Label() string {
	return strings.ToLower(string(ts))
}

// IsActive reports whether work for the task is still in flight
func (ts TaskStatus) IsActive() bool {
	switch ts {
	case TaskStatusStarting, TaskStatusDownloading, TaskStatusExtracting, TaskStatusStopping:
		return true
	}
	return false
}

// IsFinished reports whether the task reached a terminal state
func (ts TaskStatus) IsFinished() bool {
	switch ts {
	case TaskStatusCompleted, TaskStatusStopped, TaskStatusError:
		return true
	}
	return false
}
