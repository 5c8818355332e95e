package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestChecker(url string, timeout time.Duration) *Checker {
	c := NewChecker(url, timeout, nil)
	c.retryConfig.InitialDelay = time.Millisecond
	return c
}

func descriptorServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantVersion string
		wantURL     string
		wantErr     bool
	}{
		{"two lines", "3.4.0\nhttps://example.com/a.zip", "3.4.0", "https://example.com/a.zip", false},
		{"crlf and padding", "  3.4.0\r\n https://example.com/a.zip \r\n\n", "3.4.0", "https://example.com/a.zip", false},
		{"extra lines ignored", "3.4.0\nhttps://x/a.zip\nnotes", "3.4.0", "https://x/a.zip", false},
		{"one line", "3.4.0", "", "", true},
		{"empty", "", "", "", true},
		{"blank url", "3.4.0\n   ", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := ParseDescriptor(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDescriptor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if desc.Version != tt.wantVersion || desc.DownloadURL != tt.wantURL {
				t.Errorf("ParseDescriptor() = %+v", desc)
			}
		})
	}
}

func TestCheckAvailable(t *testing.T) {
	srv := descriptorServer(t, http.StatusOK, "3.4.0\nhttps://example.com/RollCall.zip\n")
	c := newTestChecker(srv.URL, time.Second)

	result, err := c.Check(context.Background(), "3.3.3")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.Available() {
		t.Error("Available() = false for differing versions")
	}
	if result.Version != "3.4.0" || result.DownloadURL != "https://example.com/RollCall.zip" {
		t.Errorf("Check() = %+v", result)
	}
}

func TestCheckUpToDate(t *testing.T) {
	srv := descriptorServer(t, http.StatusOK, "3.3.3\nhttps://example.com/RollCall.zip")
	c := newTestChecker(srv.URL, time.Second)

	result, err := c.Check(context.Background(), "3.3.3")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Available() {
		t.Error("Available() = true for equal versions")
	}
}

func TestCheckOlderRemoteIsAvailable(t *testing.T) {
	srv := descriptorServer(t, http.StatusOK, "3.0.0\nhttps://example.com/RollCall.zip")
	c := newTestChecker(srv.URL, time.Second)

	result, err := c.Check(context.Background(), "3.3.3")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Available() {
		t.Error("any differing remote version should be offered")
	}
}

func TestCheckNetworkErrors(t *testing.T) {
	tests := []struct {
		name string
		url  func(t *testing.T) string
	}{
		{"server error", func(t *testing.T) string {
			return descriptorServer(t, http.StatusInternalServerError, "oops").URL
		}},
		{"not found", func(t *testing.T) string {
			return descriptorServer(t, http.StatusNotFound, "").URL
		}},
		{"malformed", func(t *testing.T) string {
			return descriptorServer(t, http.StatusOK, "<html>").URL
		}},
		{"connection refused", func(t *testing.T) string {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()
			return url
		}},
		{"no url", func(t *testing.T) string { return "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChecker(tt.url(t), time.Second)
			if _, err := c.Check(context.Background(), "3.3.3"); !errors.Is(err, ErrNetwork) {
				t.Errorf("Check() = %v, expected ErrNetwork", err)
			}
		})
	}
}

func TestCheckTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestChecker(srv.URL, 100*time.Millisecond)
	start := time.Now()
	_, err := c.Check(context.Background(), "3.3.3")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Check() = %v, expected ErrNetwork", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Check() took %v, expected to be bounded by the timeout", elapsed)
	}
}

func TestNewCheckerDefaults(t *testing.T) {
	c := NewChecker("http://localhost", 0, nil)
	if c.timeout != DefaultCheckTimeout {
		t.Errorf("timeout = %v, expected %v", c.timeout, DefaultCheckTimeout)
	}
	if c.client != http.DefaultClient {
		t.Error("expected default client")
	}
}
