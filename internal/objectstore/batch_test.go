package objectstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUploadFilesPartialFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	one := writeFixture(t, dir, "one.txt", "first")
	two := writeFixture(t, dir, "two.txt", "second")
	missing := filepath.Join(dir, "missing.txt")

	fb := newFakeBackend()
	fb.addBucket("b")
	s := newTestService(fb)

	items := []TransferItem{
		{Source: one, Destination: "one.txt"},
		{Source: missing, Destination: "missing.txt"},
		{Source: two, Destination: "two.txt"},
	}
	result, err := s.UploadFiles(context.Background(), "b", items)
	require.NoError(t, err, "batch itself should not fail")

	require.False(t, result.Success)
	require.Equal(t, 2, result.SuccessCount)
	require.Equal(t, 1, result.FailureCount)
	require.Equal(t, len(items), result.SuccessCount+result.FailureCount)
	require.Len(t, result.Errors, 1)
	require.Equal(t, missing, result.Errors[0].Item)

	// The failed item must not abort the ones after it.
	require.Equal(t, []byte("second"), fb.objects["b"]["two.txt"])
}

func TestUploadFilesAllSucceed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	items := []TransferItem{
		{Source: writeFixture(t, dir, "a.txt", "a"), Destination: "a.txt"},
		{Source: writeFixture(t, dir, "b.txt", "b"), Destination: "b.txt"},
	}

	fb := newFakeBackend()
	fb.addBucket("b")
	s := newTestService(fb)

	result, err := s.UploadFiles(context.Background(), "b", items)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.SuccessCount)
	require.Zero(t, result.FailureCount)
	require.Empty(t, result.Errors)
}

func TestUploadFilesEmpty(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend()
	fb.addBucket("b")
	s := newTestService(fb)

	result, err := s.UploadFiles(context.Background(), "b", nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Zero(t, result.SuccessCount)
	require.Zero(t, result.FailureCount)
}

func TestDownloadFilesPartialFailure(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend()
	fb.put("b", "a.txt", []byte("a"))
	fb.put("b", "c.txt", []byte("c"))
	s := newTestService(fb)

	dir := t.TempDir()
	items := []TransferItem{
		{Source: "a.txt", Destination: filepath.Join(dir, "a.txt")},
		{Source: "missing.txt", Destination: filepath.Join(dir, "missing.txt")},
		{Source: "c.txt", Destination: filepath.Join(dir, "c.txt")},
	}
	result, err := s.DownloadFiles(context.Background(), "b", items)
	require.NoError(t, err)

	require.False(t, result.Success)
	require.Equal(t, 2, result.SuccessCount)
	require.Equal(t, 1, result.FailureCount)
	require.Equal(t, "missing.txt", result.Errors[0].Item)

	data, err := os.ReadFile(filepath.Join(dir, "c.txt"))
	require.NoError(t, err)
	require.Equal(t, "c", string(data))
}

func TestDeleteObjects(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend()
	fb.put("b", "x", []byte("x"))
	fb.put("b", "y", []byte("y"))
	s := newTestService(fb)

	result, err := s.DeleteObjects(context.Background(), "b", []string{"x", "y"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.SuccessCount)
	require.Zero(t, result.FailureCount)
	require.Empty(t, fb.objects["b"])
}

func TestDeleteObjectsBackendFailure(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend()
	fb.put("b", "x", []byte("x"))
	fb.put("b", "y", []byte("y"))
	fb.failOn["RemoveObjects"] = errors.New("backend down")
	fb.failOn["RemoveObject"] = errors.New("backend down")
	s := newTestService(fb)

	result, err := s.DeleteObjects(context.Background(), "b", []string{"x", "y"})
	require.NoError(t, err, "batch itself should not fail")

	require.False(t, result.Success)
	require.Zero(t, result.SuccessCount)
	require.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Errors, 2)
	require.Equal(t, "x", result.Errors[0].Item)
	require.Equal(t, "y", result.Errors[1].Item)
}

func TestDeleteObjectsBulkFailureFallsBackToSingleDeletes(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend()
	fb.put("b", "x", []byte("x"))
	fb.put("b", "y", []byte("y"))
	fb.failOn["RemoveObjects"] = errors.New("bulk call rejected")
	s := newTestService(fb)

	result, err := s.DeleteObjects(context.Background(), "b", []string{"x", "y"})
	require.NoError(t, err)

	require.True(t, result.Success, "single deletes should recover a failed bulk call")
	require.Equal(t, 2, result.SuccessCount)
	require.Zero(t, result.FailureCount)
	require.Empty(t, fb.objects["b"])
}
