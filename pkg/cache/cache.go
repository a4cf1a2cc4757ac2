package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with ok == false and a nil error; errors are reserved
// for backend failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live per entry kind. A ttl of 0 never expires.
const (
	// TTLDataset covers parsed imports. The key hashes the file content,
	// so entries only expire to bound disk use.
	TTLDataset = 7 * 24 * time.Hour

	// TTLFrame covers synchronized frames.
	TTLFrame = 7 * 24 * time.Hour

	// TTLArtifact covers rendered SVG, PNG and PDF output.
	TTLArtifact = 24 * time.Hour
)

// Key types, also reported to the cache hooks in pkg/observability.
const (
	KeyTypeDataset  = "dataset"
	KeyTypeFrame    = "frame"
	KeyTypeArtifact = "artifact"
)
