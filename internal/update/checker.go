package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/rs/zerolog/log"
)

// DefaultCheckTimeout bounds the whole check including retries
const DefaultCheckTimeout = 10 * time.Second

// maxDescriptorSize guards against serving something that is not a descriptor
const maxDescriptorSize = 64 * 1024

// Descriptor is the parsed remote version file
type Descriptor struct {
	Version     string
	DownloadURL string
}

// CheckResult is the outcome of a successful check
type CheckResult struct {
	CurrentVersion string
	Descriptor
}

// Available reports whether the remote version differs from the running one
func (r *CheckResult) Available() bool {
	return r.Version != r.CurrentVersion
}

// Checker fetches the version descriptor
type Checker struct {
	url         string
	client      *http.Client
	timeout     time.Duration
	retryConfig retry.Config
}

// NewChecker creates a checker for the descriptor at url. A zero timeout uses
// DefaultCheckTimeout and a nil client uses http.DefaultClient.
func NewChecker(url string, checkTimeout time.Duration, client *http.Client) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{
		url:     url,
		client:  client,
		timeout: checkTimeout,
		retryConfig: retry.Config{
			MaxAttempts:   2,
			InitialDelay:  500 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Check fetches the descriptor and compares it with currentVersion. Any
// failure is reported as ErrNetwork.
func (c *Checker) Check(ctx context.Context, currentVersion string) (*CheckResult, error) {
	if c.url == "" {
		return nil, fmt.Errorf("%w: no descriptor url configured", ErrNetwork)
	}

	r := retry.New[*Descriptor](c.retryConfig)
	t := timeout.New[*Descriptor](timeout.Config{DefaultTimeout: c.timeout})

	desc, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (*Descriptor, error) {
		return r.Do(ctx, c.fetch)
	})
	if err != nil {
		log.Debug().Err(err).Str("url", c.url).Msg("update check failed")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	result := &CheckResult{CurrentVersion: currentVersion, Descriptor: *desc}
	log.Debug().
		Str("current", currentVersion).
		Str("latest", desc.Version).
		Bool("available", result.Available()).
		Msg("update check finished")
	return result, nil
}

func (c *Checker) fetch(ctx context.Context) (*Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("descriptor request returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptorSize))
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	return ParseDescriptor(string(body))
}

// ParseDescriptor reads the version from the first line and the archive URL
// from the second. Surrounding whitespace and CRLF line endings are ignored.
func ParseDescriptor(content string) (*Descriptor, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("descriptor has %d line(s), expected 2", len(lines))
	}
	desc := &Descriptor{
		Version:     strings.TrimSpace(lines[0]),
		DownloadURL: strings.TrimSpace(lines[1]),
	}
	if desc.Version == "" || desc.DownloadURL == "" {
		return nil, fmt.Errorf("descriptor has an empty version or url")
	}
	return desc, nil
}
