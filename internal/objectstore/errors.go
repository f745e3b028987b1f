package objectstore

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrNotConnected is returned by every operation invoked before a
	// successful Connect.
	ErrNotConnected = errors.New("not connected to object storage")

	// ErrConnectionFailed wraps a failure of Connect's own probe call.
	ErrConnectionFailed = errors.New("object storage connection failed")

	// ErrNotFound covers a missing local file or a missing remote object.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedMethod is returned for presign methods other than
	// GET, PUT and DELETE.
	ErrUnsupportedMethod = errors.New("unsupported presign method")
)

// wrapBackendErr adds operation context to a storage client error and maps
// missing-key and missing-bucket responses onto ErrNotFound so callers can
// test with errors.Is instead of inspecting response codes.
func wrapBackendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
