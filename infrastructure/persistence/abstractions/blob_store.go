package abstractions

import "context"

// BlobStore is an opaque key to bytes store.
// Get reports found=false, with a nil error, when the key has never been written.
type BlobStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// BlobStoreCloser is a BlobStore holding resources that must be released
type BlobStoreCloser interface {
	BlobStore
	Close() error
}
