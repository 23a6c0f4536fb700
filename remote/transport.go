package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// HTTPDownloader implements Downloader over plain HTTP GET.
type HTTPDownloader struct {
	client *http.Client
}

// HTTPOption configures an HTTPDownloader.
type HTTPOption func(*HTTPDownloader)

// WithClient sets the HTTP client used for requests.
func WithClient(client *http.Client) HTTPOption {
	return func(d *HTTPDownloader) {
		d.client = client
	}
}

// NewHTTPDownloader creates a Downloader backed by net/http.
func NewHTTPDownloader(opts ...HTTPOption) *HTTPDownloader {
	d := &HTTPDownloader{client: http.DefaultClient}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = http.DefaultClient
	}
	return d
}

// DownloadTo streams the body of url into dest. The body lands in a temp
// file next to dest and is renamed into place only after a complete read,
// so a failed or cancelled download never leaves a partial dest.
func (d *HTTPDownloader) DownloadTo(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("download %s: %w", dest, err)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "identity")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", dest, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain for connection reuse
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		// ok
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("download %s: %w", dest, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("download %s: %w", dest, ErrUnauthorized)
	default:
		return fmt.Errorf("download %s: unexpected status %s", dest, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("download %s: %w", dest, err)
	}
	tmpPath := tmp.Name()

	_, copyErr := copyContext(ctx, tmp, resp.Body)
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("download %s: %w", dest, copyErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("download %s: %w", dest, err)
	}
	return nil
}

// copyContext copies src to dst, checking for cancellation between reads.
func copyContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
