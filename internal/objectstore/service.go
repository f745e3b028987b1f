// Package objectstore exposes object-storage operations (buckets, objects,
// presigned URLs, bucket policies, batch transfer, storage statistics) as a
// callable service layer over a MinIO-compatible backend.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/bucketkit/bucketkit/internal/fetch"
)

const (
	// DefaultPort is used when Config.Port is zero.
	DefaultPort = 9000
	// DefaultRegion is used when Config.Region is empty.
	DefaultRegion = "us-east-1"
	// DefaultPresignExpiry is used when a presign expiry of zero is requested.
	DefaultPresignExpiry = time.Hour

	connectProbeTimeout = 10 * time.Second
)

// Config holds the connection parameters for one storage backend.
type Config struct {
	Endpoint  string
	Port      int
	UseSSL    bool
	AccessKey string
	SecretKey string
	Region    string
}

// ApplyDefaults fills in the zero-value fields that have defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate returns an error when a required field is missing.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must be provided")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("credentials must be provided")
	}
	return nil
}

// StatsCache caches computed StorageStats between GetStorageStats calls.
type StatsCache interface {
	GetStats(ctx context.Context) (*StorageStats, bool, error)
	SetStats(ctx context.Context, stats *StorageStats) error
}

// Service is an explicit connection handle: it owns at most one live backend
// connection, established by Connect and fully replaced by the next Connect.
// It is not safe to call Connect concurrently with in-flight operations.
type Service struct {
	backend    backend
	cfg        Config
	fetcher    *fetch.Fetcher
	statsCache StatsCache
}

// New returns a Service with no live connection. Every operation other than
// Connect returns ErrNotConnected until Connect succeeds.
func New() *Service {
	return &Service{fetcher: fetch.New()}
}

// UseStatsCache installs a cache consulted and refreshed by GetStorageStats.
// Without one, stats are recomputed from a full listing on every call.
func (s *Service) UseStatsCache(c StatsCache) {
	s.statsCache = c
}

// Connect builds a storage client from cfg, probes it with a bucket listing,
// and replaces any previous connection. A failed probe leaves the previous
// connection in place.
func (s *Service) Connect(ctx context.Context, cfg Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	b, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, connectProbeTimeout)
	defer cancel()
	if _, err := b.ListBuckets(probeCtx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s.backend = b
	s.cfg = cfg
	return nil
}

// Connected reports whether a successful Connect has happened.
func (s *Service) Connected() bool {
	return s.backend != nil
}

func (s *Service) getBackend() (backend, error) {
	if s.backend == nil {
		return nil, ErrNotConnected
	}
	return s.backend, nil
}
