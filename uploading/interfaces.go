package uploading

import (
	"context"
	"io"
)

// Authorizer grants short-lived write credentials for single keys. Batch
// authorization happens before the uploader runs; this interface covers the
// fresh credential needed by the legacy-key fallback.
type Authorizer interface {
	SignOne(ctx context.Context, path string, contentType string) (string, error)
}

// Transport performs a single-shot write of a payload to a credentialed URL.
type Transport interface {
	Put(ctx context.Context, url string, contentType string, body io.Reader, size int64) error
}

// MultipartService is the storage side of the large-file path. Sessions are
// bound to one key; a fallback to another key means a fresh session.
type MultipartService interface {
	InitMultipart(ctx context.Context, key string, contentType string) (string, error)
	UploadPart(ctx context.Context, key string, sessionId string, partNumber int, data io.Reader, size int64) (string, error)
	CompleteMultipart(ctx context.Context, key string, sessionId string, parts []CompletedPart) error
	AbortMultipart(ctx context.Context, key string, sessionId string) error
}

type CompletedPart struct {
	PartNumber int
	ETag       string
}
