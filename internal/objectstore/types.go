package objectstore

import (
	"strings"
	"time"
)

// BucketInfo is an immutable snapshot of one bucket.
type BucketInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ObjectInfo is an immutable snapshot of one stored object's metadata.
type ObjectInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag"`
	ContentType  string    `json:"contentType,omitempty"`
	IsDir        bool      `json:"isDir"`
}

// TransferItem is one entry of a batch upload or download.
// For uploads Source is a local path or remote URL and Destination is the
// object name; for downloads Source is the object name and Destination is
// the local path.
type TransferItem struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// BatchError records one failed item of a batch operation.
type BatchError struct {
	Item    string `json:"item"`
	Message string `json:"message"`
}

// BatchResult aggregates the per-item outcomes of a batch operation.
// Success is true only when no item failed, and SuccessCount+FailureCount
// always equals the number of items attempted.
type BatchResult struct {
	Success      bool         `json:"success"`
	SuccessCount int          `json:"successCount"`
	FailureCount int          `json:"failureCount"`
	Errors       []BatchError `json:"errors,omitempty"`
}

func (r *BatchResult) recordSuccess() {
	r.SuccessCount++
	r.Success = r.FailureCount == 0
}

func (r *BatchResult) recordFailure(item string, err error) {
	r.FailureCount++
	r.Errors = append(r.Errors, BatchError{Item: item, Message: err.Error()})
	r.Success = false
}

// BucketStats holds the aggregate object count and byte size of one bucket.
type BucketStats struct {
	Name        string `json:"name"`
	ObjectCount int64  `json:"objectCount"`
	TotalSize   int64  `json:"totalSize"`
}

// StorageStats is the aggregate view over every bucket, recomputed from a
// fully recursive listing on each call unless a StatsCache is installed.
type StorageStats struct {
	TotalBuckets int           `json:"totalBuckets"`
	TotalObjects int64         `json:"totalObjects"`
	TotalSize    int64         `json:"totalSize"`
	Buckets      []BucketStats `json:"buckets"`
}

// isDirName reports whether an object key names a directory placeholder.
// Directories are a naming convention, not backend metadata.
func isDirName(key string) bool {
	return strings.HasSuffix(key, "/")
}
