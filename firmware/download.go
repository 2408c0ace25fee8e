package firmware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Downloader fetches firmware files into a local directory, deduplicating
// concurrent requests for the same filename across devices
// (spec.md §4.6 step 3: "downloads image files (deduplicated across
// devices)").
type Downloader struct {
	HTTPClient *http.Client
	Dir        string
	BaseURL    string

	group singleflight.Group
}

// NewDownloader constructs a Downloader storing completed files under dir.
func NewDownloader(dir, baseURL string) *Downloader {
	return &Downloader{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Dir:        dir,
		BaseURL:    baseURL,
	}
}

// EnsureFile guarantees filename exists under d.Dir, downloading it if
// necessary. Concurrent calls for the same filename collapse into a
// single in-flight download via singleflight.
func (d *Downloader) EnsureFile(ctx context.Context, filename string) error {
	dest := filepath.Join(d.Dir, filename)
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	_, err, _ := d.group.Do(filename, func() (any, error) {
		return nil, d.downloadWithRetry(ctx, filename, dest)
	})
	return err
}

func (d *Downloader) downloadWithRetry(ctx context.Context, filename, dest string) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(func() error {
		return d.downloadOnce(ctx, filename, dest)
	}, b)
}

func (d *Downloader) downloadOnce(ctx context.Context, filename, dest string) error {
	url := d.BaseURL + "/" + filename
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("firmware: build request for %s: %w", filename, err)
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("firmware: download %s: %w", filename, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("firmware: download %s: HTTP status %d", filename, resp.StatusCode)
	}

	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("firmware: create firmware dir: %w", err)
	}

	tmp := filepath.Join(d.Dir, "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("firmware: create temp file: %w", err)
	}

	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("firmware: write %s: %w", filename, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("firmware: close temp file for %s: %w", filename, closeErr)
	}

	if err := os.Chmod(tmp, 0o777); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("firmware: chmod %s: %w", filename, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("firmware: rename into place %s: %w", filename, err)
	}
	return nil
}

// EnsureAll downloads every filename, returning ErrDownloadIncomplete if
// any failed (spec.md §4.6 step 3: "Missing or failed files mean 'not all
// files available'").
func (d *Downloader) EnsureAll(ctx context.Context, filenames []string) error {
	incomplete := false
	for _, name := range filenames {
		if err := d.EnsureFile(ctx, name); err != nil {
			incomplete = true
		}
	}
	if incomplete {
		return ErrDownloadIncomplete
	}
	return nil
}
