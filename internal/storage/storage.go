// Package storage defines the artifact publishing boundary. After a run the
// pipeline can push its database file and run summary to an object store.
package storage

import (
	"context"
	"io"
)

type ArtifactInfo struct {
	Key  string
	Size int64
	ETag string
}

type PutOptions struct {
	ContentType string
}

type ArtifactStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ArtifactInfo, error)
}
