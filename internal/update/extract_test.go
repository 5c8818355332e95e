package update

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if content != "" {
			if _, err := w.Write([]byte(content)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestIsTopLevelEntry(t *testing.T) {
	tests := map[string]bool{
		"readme.txt":                  true,
		"RollCall-Main/":              true,
		"RollCall-Main/rollcall":      true,
		"RollCall-Main/assets/":       false,
		"RollCall-Main/assets/a.png":  false,
		"RollCall-Main/a/b/c/deep.go": false,
	}
	for name, want := range tests {
		if got := IsTopLevelEntry(name); got != want {
			t.Errorf("IsTopLevelEntry(%q) = %v, expected %v", name, got, want)
		}
	}
}

func TestExtractTopLevel(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "3.4.0.zip")
	writeZip(t, archive, map[string]string{
		"RollCall-Main/":                 "",
		"RollCall-Main/rollcall":         "binary",
		"RollCall-Main/assets/":          "",
		"RollCall-Main/assets/timer.mp3": "sound",
		"readme.txt":                     "hello",
	})

	dest := filepath.Join(dir, "update")
	if err := ExtractTopLevel(archive, dest); err != nil {
		t.Fatalf("ExtractTopLevel() error = %v", err)
	}

	for name, want := range map[string]string{
		"RollCall-Main/rollcall": "binary",
		"readme.txt":             "hello",
	} {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil || string(data) != want {
			t.Errorf("%s = %q, %v; expected %q", name, data, err, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "RollCall-Main", "assets")); !os.IsNotExist(err) {
		t.Error("nested directories should be skipped")
	}
}

func TestExtractTopLevelRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeZip(t, archive, map[string]string{"../evil.txt": "x"})

	err := ExtractTopLevel(archive, filepath.Join(dir, "update"))
	if !errors.Is(err, ErrArchive) {
		t.Errorf("ExtractTopLevel() = %v, expected ErrArchive", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "evil.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry was written")
	}
}

func TestExtractTopLevelNotZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bad.zip")
	if err := os.WriteFile(archive, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ExtractTopLevel(archive, filepath.Join(dir, "update")); !errors.Is(err, ErrArchive) {
		t.Errorf("ExtractTopLevel() = %v, expected ErrArchive", err)
	}
}
