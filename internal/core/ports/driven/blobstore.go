package driven

import (
	"context"
	"io"
)

// BlobStore keeps the original uploaded bytes.
type BlobStore interface {
	// Put writes data under name and returns its location.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Open returns a reader for name. Unknown names return domain.ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadSeekCloser, error)

	// Delete removes name. Unknown names are a no-op.
	Delete(ctx context.Context, name string) error
}
