package objectstore

import (
	"context"

	"github.com/minio/minio-go/v7"
)

// ListBuckets returns a snapshot of every bucket.
func (s *Service) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	b, err := s.getBackend()
	if err != nil {
		return nil, err
	}

	raw, err := b.ListBuckets(ctx)
	if err != nil {
		return nil, wrapBackendErr("list buckets", err)
	}

	buckets := make([]BucketInfo, 0, len(raw))
	for _, info := range raw {
		buckets = append(buckets, BucketInfo{
			Name:      info.Name,
			CreatedAt: info.CreationDate,
		})
	}
	return buckets, nil
}

// CreateBucket creates a bucket, optionally in a specific region. An empty
// region falls back to the connection's region.
func (s *Service) CreateBucket(ctx context.Context, name, region string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}
	if region == "" {
		region = s.cfg.Region
	}
	if err := b.MakeBucket(ctx, name, minio.MakeBucketOptions{Region: region}); err != nil {
		return wrapBackendErr("create bucket", err)
	}
	return nil
}

// DeleteBucket removes an empty bucket.
func (s *Service) DeleteBucket(ctx context.Context, name string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}
	if err := b.RemoveBucket(ctx, name); err != nil {
		return wrapBackendErr("delete bucket", err)
	}
	return nil
}

// BucketExists reports whether the named bucket exists.
func (s *Service) BucketExists(ctx context.Context, name string) (bool, error) {
	b, err := s.getBackend()
	if err != nil {
		return false, err
	}
	exists, err := b.BucketExists(ctx, name)
	if err != nil {
		return false, wrapBackendErr("check bucket", err)
	}
	return exists, nil
}

// SetBucketPolicy attaches a JSON policy document to a bucket. The document
// is opaque to this layer.
func (s *Service) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	b, err := s.getBackend()
	if err != nil {
		return err
	}
	if err := b.SetBucketPolicy(ctx, bucket, policy); err != nil {
		return wrapBackendErr("set bucket policy", err)
	}
	return nil
}

// GetBucketPolicy returns the bucket's policy document. An unset policy comes
// back as an empty string.
func (s *Service) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	b, err := s.getBackend()
	if err != nil {
		return "", err
	}
	policy, err := b.GetBucketPolicy(ctx, bucket)
	if err != nil {
		return "", wrapBackendErr("get bucket policy", err)
	}
	return policy, nil
}

// DeleteBucketPolicy clears the bucket's policy by setting it to the empty
// string; the backend has no distinct delete call.
func (s *Service) DeleteBucketPolicy(ctx context.Context, bucket string) error {
	return s.SetBucketPolicy(ctx, bucket, "")
}
