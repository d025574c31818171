// Package fetch downloads pretrained vector files with config-driven retry logic.
package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"arxivprep/internal/config"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Fetcher downloads files over HTTP with retries and streams them to disk.
type Fetcher struct {
	client      *http.Client
	retryPolicy *config.RetryPolicy
}

// NewFetcher creates a fetcher with default retry settings.
func NewFetcher() *Fetcher {
	return NewFetcherWithConfig(&config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    500,
		MaxDelayMs:        30000,
		BackoffMultiplier: 2.0,
		TimeoutSec:        300,
	})
}

// NewFetcherWithConfig creates a fetcher with a custom retry policy.
func NewFetcherWithConfig(retryPolicy *config.RetryPolicy) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy: retryPolicy,
	}
}

// Download fetches url into destPath, creating parent directories.
// The file is written through a temporary name and renamed on success, so
// an interrupted download never leaves a truncated file behind.
func (f *Fetcher) Download(url, destPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= f.retryPolicy.MaxAttempts; attempt++ {
		size, statusCode, err := f.downloadOnce(url, destPath)
		if err == nil {
			return size, nil
		}

		lastErr = fmt.Errorf("download failed (attempt %d/%d): %w",
			attempt, f.retryPolicy.MaxAttempts, err)

		// Non-retryable HTTP statuses fail immediately.
		if statusCode != 0 && !isRetryableStatus(statusCode) {
			break
		}

		if attempt < f.retryPolicy.MaxAttempts {
			delay := f.retryPolicy.GetRetryDelay(attempt)
			if delay > 0 {
				time.Sleep(delay)
			}
		}
	}

	return 0, lastErr
}

// DownloadIfMissing fetches url into destPath unless the file already
// exists with non-zero size. Returns true if a download happened.
func (f *Fetcher) DownloadIfMissing(url, destPath string) (bool, error) {
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		return false, nil
	}

	if _, err := f.Download(url, destPath); err != nil {
		return false, err
	}

	return true, nil
}

// downloadOnce returns (bytes written, HTTP status, error). The status is
// zero when the request never produced a response.
func (f *Fetcher) downloadOnce(url, destPath string) (int64, int, error) {
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	tmpPath := destPath + ".partial"

	out, err := os.Create(tmpPath)
	if err != nil {
		return 0, resp.StatusCode, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		os.Remove(tmpPath)

		return 0, resp.StatusCode, fmt.Errorf("failed to write download: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)

		return 0, resp.StatusCode, err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)

		return 0, resp.StatusCode, fmt.Errorf("failed to finalize download: %w", err)
	}

	return size, resp.StatusCode, nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}
