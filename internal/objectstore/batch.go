package objectstore

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"
)

// UploadFiles uploads items in order, one at a time. A failed item is
// recorded and never aborts the batch. Item identifiers in the result are
// the sources.
func (s *Service) UploadFiles(ctx context.Context, bucket string, items []TransferItem) (*BatchResult, error) {
	if _, err := s.getBackend(); err != nil {
		return nil, err
	}

	result := &BatchResult{Success: true}
	for _, item := range items {
		if err := s.UploadFile(ctx, bucket, item.Destination, item.Source, nil); err != nil {
			log.Warn().Err(err).Str("source", item.Source).Str("object", item.Destination).Msg("batch upload item failed")
			result.recordFailure(item.Source, err)
			continue
		}
		result.recordSuccess()
	}
	return result, nil
}

// DownloadFiles downloads items in order, one at a time, with the same
// partial-failure accounting as UploadFiles. Item sources are object names
// and destinations are local paths.
func (s *Service) DownloadFiles(ctx context.Context, bucket string, items []TransferItem) (*BatchResult, error) {
	if _, err := s.getBackend(); err != nil {
		return nil, err
	}

	result := &BatchResult{Success: true}
	for _, item := range items {
		if err := s.DownloadFile(ctx, bucket, item.Source, item.Destination); err != nil {
			log.Warn().Err(err).Str("object", item.Source).Str("dest", item.Destination).Msg("batch download item failed")
			result.recordFailure(item.Source, err)
			continue
		}
		result.recordSuccess()
	}
	return result, nil
}

// DeleteObjects removes the named objects with per-item accounting. The bulk
// backend call goes first; names it reports as failed are retried with
// single deletes before being recorded, so one bad name or a transient bulk
// failure never fails the whole batch by itself.
func (s *Service) DeleteObjects(ctx context.Context, bucket string, names []string) (*BatchResult, error) {
	b, err := s.getBackend()
	if err != nil {
		return nil, err
	}

	objectsCh := make(chan minio.ObjectInfo, len(names))
	for _, name := range names {
		objectsCh <- minio.ObjectInfo{Key: name}
	}
	close(objectsCh)

	failed := make(map[string]string, len(names))
	for rerr := range b.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err == nil {
			continue
		}
		if rerr.ObjectName == "" {
			// The whole call failed before any per-object result.
			for _, name := range names {
				if _, ok := failed[name]; !ok {
					failed[name] = rerr.Err.Error()
				}
			}
			continue
		}
		failed[rerr.ObjectName] = rerr.Err.Error()
	}

	result := &BatchResult{Success: true}
	for _, name := range names {
		msg, ok := failed[name]
		if !ok {
			result.recordSuccess()
			continue
		}
		// Per-item fallback for names the bulk call could not delete.
		if err := b.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{}); err != nil {
			result.recordFailure(name, err)
			continue
		}
		log.Debug().Str("object", name).Str("bulk_error", msg).Msg("bulk delete failed, single delete succeeded")
		result.recordSuccess()
	}
	return result, nil
}
