package model

import "testing"

func TestTaskStatusLifecycle(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		active   bool
		finished bool
	}{
		{TaskStatusPending, false, false},
		{TaskStatusStarting, true, false},
		{TaskStatusDownloading, true, false},
		{TaskStatusExtracting, true, false},
		{TaskStatusStopping, true, false},
		{TaskStatusStopped, false, true},
		{TaskStatusCompleted, false, true},
		{TaskStatusError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, expected %v", got, tt.active)
			}
			if got := tt.status.IsFinished(); got != tt.finished {
				t.Errorf("IsFinished() = %v, expected %v", got, tt.finished)
			}
			if tt.status.IsActive() && tt.status.IsFinished() {
				t.Error("a status cannot be both active and finished")
			}
		})
	}
}

func TestTaskStatusStringMatchesStoredValue(t *testing.T) {
	for _, status := range []TaskStatus{TaskStatusExtracting, TaskStatusCompleted} {
		if status.String() != string(status) {
			t.Errorf("String() = %q, expected %q", status.String(), string(status))
		}
	}
}

func TestTaskStatusLabel(t *testing.T) {
	if got := TaskStatusDownloading.Label(); got != "downloading" {
		t.Errorf("Label() = %q, expected downloading", got)
	}
}
