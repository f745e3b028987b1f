// Package fetch downloads remote HTTP(S) resources into temporary files so
// they can be handed to the object-storage client as ordinary local paths.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultTimeout bounds the whole request, from dialing to the last body byte.
const DefaultTimeout = 30 * time.Second

const tempPattern = "bucketkit-fetch-*"

// ErrFetchFailed marks any remote fetch failure: bad status, transport error,
// or timeout. Wrapped errors carry the detail.
var ErrFetchFailed = errors.New("remote fetch failed")

// IsRemoteURL reports whether s is a fetchable remote resource. Only http and
// https count; a parse failure or any other scheme means s is a local path.
func IsRemoteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Fetcher streams remote resources into the system temp directory.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher with the default timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Download GETs rawURL and writes the full response body to a uniquely named
// temporary file, returning its path. The caller owns the file and is
// responsible for removing it. On any failure no partial file is left behind.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d %s", ErrFetchFailed, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	tmp, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	// Stream the body directly to disk; bodies can be arbitrarily large.
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return tmp.Name(), nil
}
