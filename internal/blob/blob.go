// Package blob abstracts the object store holding uploads, canonical
// originals and thumbnails. The pipeline only ever sees this interface; the
// shipped implementations are a local-filesystem store and an in-memory
// store for tests.
package blob

import "context"

// Store is the object-store collaborator. Keys are slash-separated paths
// inside a bucket. Missing objects surface as errs.KindNotFound so callers
// can tell "already processed" apart from a backend outage.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
	// Copy duplicates an object inside the store without the bytes passing
	// through the worker.
	Copy(ctx context.Context, bucket, srcKey, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
	// Size reports the object's length in bytes.
	Size(ctx context.Context, bucket, key string) (int64, error)
}
