package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	// Create temporary directory for testing
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	// Create directory
	err := CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	// Directory should now exist
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	err = CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetAppDataDir(t *testing.T) {
	dir, err := GetAppDataDir()
	if err != nil {
		t.Fatalf("Failed to get app data directory: %v", err)
	}

	if !strings.HasSuffix(filepath.Base(dir), AppDirName) {
		t.Errorf("Expected directory to end with '%s', got: %s", AppDirName, dir)
	}
}

func TestExecutableName(t *testing.T) {
	name := ExecutableName("rollcall")
	if runtime.GOOS == OSWindows {
		if name != "rollcall.exe" {
			t.Errorf("ExecutableName() = %s, expected rollcall.exe", name)
		}
		if ExecutableName("rollcall.exe") != "rollcall.exe" {
			t.Error("ExecutableName() should not double the suffix")
		}
		return
	}
	if name != "rollcall" {
		t.Errorf("ExecutableName() = %s, expected rollcall", name)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "names.json")

	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Expected 'second', got '%s'", string(data))
	}

	// No temp files should be left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry in directory, got %d", len(entries))
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestCopyTree_OverwritesAndPreserves(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeTestFile(t, filepath.Join(src, "app.bin"), "new-app")
	writeTestFile(t, filepath.Join(src, "assets", "sound.mp3"), "new-sound")
	writeTestFile(t, filepath.Join(dst, "app.bin"), "old-app")
	writeTestFile(t, filepath.Join(dst, "names.json"), "user-data")

	copied, err := CopyTree(src, dst)
	if err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}
	if copied != 2 {
		t.Errorf("Expected 2 files copied, got %d", copied)
	}

	tests := []struct {
		rel      string
		expected string
	}{
		{"app.bin", "new-app"},
		{filepath.Join("assets", "sound.mp3"), "new-sound"},
		{"names.json", "user-data"},
	}

	for _, test := range tests {
		data, err := os.ReadFile(filepath.Join(dst, test.rel))
		if err != nil {
			t.Errorf("Failed to read %s: %v", test.rel, err)
			continue
		}
		if string(data) != test.expected {
			t.Errorf("%s = '%s', expected '%s'", test.rel, string(data), test.expected)
		}
	}
}

func TestCopyTree_MissingSource(t *testing.T) {
	_, err := CopyTree(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if err == nil {
		t.Error("Expected error for missing source directory, got nil")
	}
}

func TestCopyTree_FailFast(t *testing.T) {
	if runtime.GOOS == OSWindows {
		t.Skip("directory-over-file conflict behaves differently on Windows")
	}
	src := t.TempDir()
	dst := t.TempDir()

	writeTestFile(t, filepath.Join(src, "conflict", "file.txt"), "x")
	// A regular file where the update expects a directory blocks the copy
	writeTestFile(t, filepath.Join(dst, "conflict"), "not-a-dir")

	_, err := CopyTree(src, dst)
	if err == nil {
		t.Fatal("Expected error for conflicting entry, got nil")
	}
	if !strings.Contains(err.Error(), "conflict") {
		t.Errorf("Expected error to name the failing item, got: %v", err)
	}
}

func TestRemoveDirIfEmpty(t *testing.T) {
	tempDir := t.TempDir()
	empty := filepath.Join(tempDir, "empty")
	full := filepath.Join(tempDir, "full")
	os.MkdirAll(empty, 0755)
	writeTestFile(t, filepath.Join(full, "keep.txt"), "keep")

	if !RemoveDirIfEmpty(empty) {
		t.Error("Expected empty directory to be removed")
	}
	if RemoveDirIfEmpty(full) {
		t.Error("Expected non-empty directory to be kept")
	}
	if RemoveDirIfEmpty(filepath.Join(tempDir, "missing")) {
		t.Error("Expected missing directory to report false")
	}
}
