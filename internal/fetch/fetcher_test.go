package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsRemoteURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  bool
	}{
		{"http://example.com/file.txt", true},
		{"https://example.com/file.txt", true},
		{"ftp://example.com/file.txt", false},
		{"s3://bucket/key", false},
		{"/tmp/local/file.txt", false},
		{"relative/path.txt", false},
		{"file.txt", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, IsRemoteURL(tc.input), "IsRemoteURL(%q)", tc.input)
	}
}

// countTempFiles counts leftover fetch temp files in the system temp dir.
func countTempFiles(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), tempPattern))
	require.NoError(t, err, "globbing temp dir")
	return len(matches)
}

func TestDownload(t *testing.T) {
	t.Parallel()

	const body = "hello from the remote side"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := New()
	path, err := f.Download(context.Background(), srv.URL+"/file.txt")
	require.NoError(t, err, "Download error")
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading downloaded file")
	require.Equal(t, body, string(data))
}

func TestDownloadBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	before := countTempFiles(t)

	f := New()
	path, err := f.Download(context.Background(), srv.URL+"/missing.txt")
	require.ErrorIs(t, err, ErrFetchFailed)
	require.Contains(t, err.Error(), "404")
	require.Empty(t, path)

	require.Equal(t, before, countTempFiles(t), "temp file left behind")
}

func TestDownloadTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	before := countTempFiles(t)

	f := New()
	_, err := f.Download(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrFetchFailed)

	require.Equal(t, before, countTempFiles(t), "temp file left behind")
}

func TestDownloadTimeoutRemovesPartialFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial bytes"))
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("the rest"))
	}))
	t.Cleanup(srv.Close)

	before := countTempFiles(t)

	f := New()
	f.client.Timeout = 50 * time.Millisecond
	_, err := f.Download(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrFetchFailed)

	require.Equal(t, before, countTempFiles(t), "partial temp file left behind")
}
