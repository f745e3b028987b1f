package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"

	"github.com/bucketkit/bucketkit/internal/fetch"
)

// presignMethods are the only request methods a presigned URL may grant.
var presignMethods = map[string]bool{
	"GET":    true,
	"PUT":    true,
	"DELETE": true,
}

// ListObjects drains the backend's listing cursor for the bucket into one
// ordered slice. The directory flag is derived from trailing-slash naming.
func (s *Service) ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]ObjectInfo, error) {
	b, err := s.getBackend()
	if err != nil {
		return nil, err
	}

	objects := make([]ObjectInfo, 0)
	for info := range b.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if info.Err != nil {
			return nil, wrapBackendErr("list objects", info.Err)
		}
		objects = append(objects, ObjectInfo{
			Name:         info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
			ETag:         info.ETag,
			ContentType:  info.ContentType,
			IsDir:        isDirName(info.Key),
		})
	}
	return objects, nil
}

// UploadFile uploads a local file or a remote http(s) URL to the bucket under
// objectName. A remote source is fetched to a temporary file first; that file
// is always removed after the upload attempt, whatever its outcome.
func (s *Service) UploadFile(ctx context.Context, bucket, objectName, source string, metadata map[string]string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}

	localPath := source
	if fetch.IsRemoteURL(source) {
		tempPath, err := s.fetcher.Download(ctx, source)
		if err != nil {
			return err
		}
		defer func() {
			if err := os.Remove(tempPath); err != nil {
				log.Warn().Err(err).Str("path", tempPath).Msg("failed to remove temp file")
			}
		}()
		localPath = tempPath
	}

	info, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("local file %s: %w", localPath, ErrNotFound)
		}
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	_, err = b.PutObject(ctx, bucket, objectName, f, info.Size(), minio.PutObjectOptions{
		UserMetadata: metadata,
	})
	return wrapBackendErr("upload object", err)
}

// UploadStream uploads size bytes from reader under objectName. A negative
// size makes the backend buffer and chunk the stream itself.
func (s *Service) UploadStream(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, metadata map[string]string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}
	_, err = b.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		UserMetadata: metadata,
	})
	return wrapBackendErr("upload stream", err)
}

// DownloadFile streams an object's full content to destPath, creating the
// destination's parent directories as needed.
func (s *Service) DownloadFile(ctx context.Context, bucket, objectName, destPath string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
		}
	}
	if err := b.FGetObject(ctx, bucket, objectName, destPath, minio.GetObjectOptions{}); err != nil {
		return wrapBackendErr("download object", err)
	}
	return nil
}

// GetObjectStream returns the object's content as a stream. The caller must
// close it.
func (s *Service) GetObjectStream(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	b, err := s.getBackend()
	if err != nil {
		return nil, err
	}
	rc, err := b.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapBackendErr("get object", err)
	}
	return rc, nil
}

// DeleteObject removes a single object.
func (s *Service) DeleteObject(ctx context.Context, bucket, objectName string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}
	if err := b.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return wrapBackendErr("delete object", err)
	}
	return nil
}

// CopyObject server-side copies srcBucket/srcObject to destBucket/destObject.
func (s *Service) CopyObject(ctx context.Context, srcBucket, srcObject, destBucket, destObject string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}
	_, err = b.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: destBucket, Object: destObject},
		minio.CopySrcOptions{Bucket: srcBucket, Object: srcObject},
	)
	return wrapBackendErr("copy object", err)
}

// GetObjectInfo returns the object's metadata snapshot.
func (s *Service) GetObjectInfo(ctx context.Context, bucket, objectName string) (*ObjectInfo, error) {
	b, err := s.getBackend()
	if err != nil {
		return nil, err
	}
	info, err := b.StatObject(ctx, bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		return nil, wrapBackendErr("stat object", err)
	}
	return &ObjectInfo{
		Name:         info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		IsDir:        isDirName(info.Key),
	}, nil
}

// PresignedURL generates a time-limited URL granting the given method on the
// object. Only GET, PUT and DELETE are supported; an expiry of zero defaults
// to DefaultPresignExpiry. reqParams are passed through as extra signed
// request parameters (response-content-type and friends).
func (s *Service) PresignedURL(ctx context.Context, bucket, objectName, method string, expiry time.Duration, reqParams url.Values) (string, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if !presignMethods[method] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	b, err := s.getBackend()
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}

	u, err := b.Presign(ctx, method, bucket, objectName, expiry, reqParams)
	if err != nil {
		return "", wrapBackendErr("presign", err)
	}
	return u.String(), nil
}
