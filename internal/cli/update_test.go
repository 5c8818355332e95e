package cli

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ytget/rollcall/internal/config"
	"github.com/ytget/rollcall/internal/download"
	"github.com/ytget/rollcall/internal/update"
)

func releaseArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"RollCall/rollcall":   "new binary",
		"RollCall/notes.txt":  "release notes",
		"RollCall/deep/x.bin": "skipped",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// releaseServer publishes version with an archive and points the CLI at it
func releaseServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	archive := releaseArchive(t)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	mux.HandleFunc("/version.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s\n%s/RollCall.zip\n", version, srv.URL)
	})
	mux.HandleFunc("/RollCall.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
		_, _ = w.Write(archive)
	})
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvDescriptorURL, srv.URL+"/version.txt")
	t.Setenv(config.EnvCheckTimeout, "5")
	return srv
}

func TestUpdateCheckAvailable(t *testing.T) {
	withDataDir(t)
	releaseServer(t, "2.0.0")

	out := mustExecute(t, "", "--no-desktop", "update", "check")
	if !strings.Contains(out, "New version 2.0.0 is available") {
		t.Errorf("check output = %q", out)
	}
}

func TestUpdateCheckUpToDate(t *testing.T) {
	withDataDir(t)
	releaseServer(t, Version)

	out := mustExecute(t, "", "--no-desktop", "update", "check")
	if !strings.Contains(out, "latest version") {
		t.Errorf("check output = %q", out)
	}

	out = mustExecute(t, "", "--no-desktop", "update", "check", "--silent")
	if strings.Contains(out, "latest version") {
		t.Errorf("silent check output = %q, expected nothing", out)
	}
}

func TestUpdateCheckUnreachable(t *testing.T) {
	withDataDir(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Setenv(config.EnvDescriptorURL, srv.URL+"/version.txt")
	srv.Close()

	_, err := execute(t, "", "--no-desktop", "update", "check")
	if !errors.Is(err, update.ErrNetwork) {
		t.Errorf("check error = %v, expected ErrNetwork", err)
	}

	out, err := execute(t, "", "--no-desktop", "update", "check", "--silent")
	if err != nil || strings.Contains(out, "Cannot reach") {
		t.Errorf("silent check = %q, %v; expected quiet success", out, err)
	}
}

func TestUpdateDownloadStages(t *testing.T) {
	dir := withDataDir(t)
	releaseServer(t, "2.0.0")

	out := mustExecute(t, "", "--no-desktop", "update", "download", "--no-handoff")
	if !strings.Contains(out, "v2.0.0 completed") {
		t.Errorf("download output %q missing completion", out)
	}

	staged := filepath.Join(dir, config.DefaultStagingDirName, download.UpdateDirName)
	data, err := os.ReadFile(filepath.Join(staged, "RollCall", "rollcall"))
	if err != nil {
		t.Fatalf("staged binary missing: %v", err)
	}
	if string(data) != "new binary" {
		t.Errorf("staged content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(staged, "RollCall", "deep")); !os.IsNotExist(err) {
		t.Errorf("nested entry extracted: %v", err)
	}
}

func TestUpdateDownloadUpToDate(t *testing.T) {
	withDataDir(t)
	releaseServer(t, Version)

	out := mustExecute(t, "", "--no-desktop", "update", "download")
	if !strings.Contains(out, "Already running version "+Version) {
		t.Errorf("download output = %q", out)
	}
}

func TestUpdateDownloadWithoutUpdater(t *testing.T) {
	withDataDir(t)
	releaseServer(t, "2.0.0")

	_, err := execute(t, "", "--no-desktop", "update", "download")
	if !errors.Is(err, update.ErrUpdaterMissing) {
		t.Errorf("download error = %v, expected ErrUpdaterMissing", err)
	}
}
