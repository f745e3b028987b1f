package objectstore

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"
)

// GetStorageStats folds a fully recursive listing of every bucket into
// aggregate object counts and byte totals. Cost is proportional to the total
// object count; install a StatsCache to bound how often that price is paid.
func (s *Service) GetStorageStats(ctx context.Context) (*StorageStats, error) {
	b, err := s.getBackend()
	if err != nil {
		return nil, err
	}

	if s.statsCache != nil {
		stats, ok, err := s.statsCache.GetStats(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("stats cache read failed, recomputing")
		} else if ok {
			return stats, nil
		}
	}

	buckets, err := b.ListBuckets(ctx)
	if err != nil {
		return nil, wrapBackendErr("list buckets", err)
	}

	stats := &StorageStats{
		TotalBuckets: len(buckets),
		Buckets:      make([]BucketStats, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		bs := BucketStats{Name: bucket.Name}
		for info := range b.ListObjects(ctx, bucket.Name, minio.ListObjectsOptions{Recursive: true}) {
			if info.Err != nil {
				return nil, wrapBackendErr("list objects", info.Err)
			}
			bs.ObjectCount++
			bs.TotalSize += info.Size
		}
		stats.TotalObjects += bs.ObjectCount
		stats.TotalSize += bs.TotalSize
		stats.Buckets = append(stats.Buckets, bs)
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetStats(ctx, stats); err != nil {
			log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}
