package model

import (
	"testing"
	"time"
)

func TestUpdateTask_SetProgress(t *testing.T) {
	tests := []struct {
		downloaded int64
		total      int64
		expected   int
	}{
		{0, 100, 0},
		{50, 100, 50},
		{100, 100, 100},
		{150, 100, 100},
		{1, 3, 33},
		{500, -1, 0},
	}

	for _, test := range tests {
		task := &UpdateTask{}
		task.SetProgress(test.downloaded, test.total)
		if task.Percent != test.expected {
			t.Errorf("SetProgress(%d, %d) Percent = %d, expected %d", test.downloaded, test.total, task.Percent, test.expected)
		}
		if task.Downloaded != test.downloaded {
			t.Errorf("SetProgress(%d, %d) Downloaded = %d", test.downloaded, test.total, task.Downloaded)
		}
	}
}

func TestUpdateTask_GetProgressString(t *testing.T) {
	tests := []struct {
		downloaded int64
		total      int64
		expected   string
	}{
		{25, 100, "25%"},
		{512, -1, "512 B"},
		{2048, -1, "2.0 KB"},
		{3 * 1024 * 1024, 0, "3.0 MB"},
	}

	for _, test := range tests {
		task := &UpdateTask{}
		task.SetProgress(test.downloaded, test.total)
		result := task.GetProgressString()
		if result != test.expected {
			t.Errorf("GetProgressString() with %d/%d = %s, expected %s", test.downloaded, test.total, result, test.expected)
		}
	}
}

func TestUpdateTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		version  string
		url      string
		expected string
	}{
		{"3.4.0", "https://example.com/3.4.0.zip", "v3.4.0"},
		{"", "https://example.com/latest.zip", "https://example.com/latest.zip"},
	}

	for _, test := range tests {
		task := &UpdateTask{Version: test.version, URL: test.url}
		result := task.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with version='%s', url='%s' = '%s', expected '%s'",
				test.version, test.url, result, test.expected)
		}
	}
}

func TestUpdateTask_Creation(t *testing.T) {
	now := time.Now()
	task := &UpdateTask{
		ID:        "update-123",
		Version:   "3.4.0",
		Status:    TaskStatusPending,
		Total:     -1,
		StartedAt: now,
	}

	if task.Status != TaskStatusPending {
		t.Errorf("Expected status to be TaskStatusPending, got %s", task.Status)
	}

	if !task.StartedAt.Equal(now) {
		t.Errorf("Expected StartedAt to be %v, got %v", now, task.StartedAt)
	}
}
