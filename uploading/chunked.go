package uploading

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lexiport/episode-media-uploader/common"
	"github.com/lexiport/episode-media-uploader/common/rcontext"
	"github.com/lexiport/episode-media-uploader/metrics"
	"github.com/lexiport/episode-media-uploader/types"
)

const DefaultPartSizeBytes = int64(8 * 1024 * 1024)
const DefaultPartConcurrency = 3
const DefaultMultipartThreshold = int64(8 * 1024 * 1024)
const DefaultPartAttempts = 3

const abortTimeout = 30 * time.Second

// ChunkPlan fixes the part arithmetic for one file:
// partSizeBytes * (partCount-1) < totalBytes <= partSizeBytes * partCount.
type ChunkPlan struct {
	TotalBytes    int64
	PartSizeBytes int64
	PartCount     int
}

func PlanChunks(totalBytes int64, partSizeBytes int64) ChunkPlan {
	if partSizeBytes <= 0 {
		partSizeBytes = DefaultPartSizeBytes
	}
	count := int((totalBytes + partSizeBytes - 1) / partSizeBytes)
	return ChunkPlan{
		TotalBytes:    totalBytes,
		PartSizeBytes: partSizeBytes,
		PartCount:     count,
	}
}

type ChunkedOptions struct {
	PartSizeBytes   int64
	PartConcurrency int
	ThresholdBytes  int64
	PartAttempts    int
}

// ChunkedUploader moves one large file through a multipart session with
// bounded part concurrency and completed-bytes progress. Files below the
// threshold take the plain single-shot path instead.
type ChunkedUploader struct {
	auth      Authorizer
	transport Transport
	multipart MultipartService
	opts      ChunkedOptions
}

func NewChunkedUploader(auth Authorizer, transport Transport, multipart MultipartService, opts ChunkedOptions) *ChunkedUploader {
	if opts.PartSizeBytes <= 0 {
		opts.PartSizeBytes = DefaultPartSizeBytes
	}
	if opts.PartConcurrency <= 0 {
		opts.PartConcurrency = DefaultPartConcurrency
	}
	if opts.ThresholdBytes <= 0 {
		opts.ThresholdBytes = DefaultMultipartThreshold
	}
	if opts.PartAttempts <= 0 {
		opts.PartAttempts = DefaultPartAttempts
	}
	return &ChunkedUploader{
		auth:      auth,
		transport: transport,
		multipart: multipart,
		opts:      opts,
	}
}

// Upload returns the storage key the file actually landed under.
func (u *ChunkedUploader) Upload(ctx rcontext.RequestContext, item types.MediaItem, ks types.KeySet, onProgress ByteProgressFunc) (string, error) {
	if item.SizeBytes <= 0 {
		return "", common.ErrEmptySource
	}

	acc := newByteAccumulator(item.SizeBytes, onProgress)

	if item.SizeBytes < u.opts.ThresholdBytes {
		return u.singleShot(ctx, item, ks, acc)
	}

	plan := PlanChunks(item.SizeBytes, u.opts.PartSizeBytes)
	log := ctx.Log.WithFields(logrus.Fields{"key": ks.PrimaryKey, "parts": plan.PartCount})

	err := u.uploadSession(ctx, log, item, ks.PrimaryKey, ks.ContentType, plan, acc)
	if err == nil {
		return ks.PrimaryKey, nil
	}
	if ctx.Err() != nil {
		return "", common.ErrUploadCancelled
	}

	// Sessions are not key-interchangeable mid-flight, so the fallback is a
	// fresh session against the legacy key.
	log.Warn("Multipart upload failed - retrying whole file against legacy key: ", err)
	acc.restart()
	if err = u.uploadSession(ctx, log, item, ks.LegacyKey, ks.ContentType, plan, acc); err != nil {
		if ctx.Err() != nil {
			return "", common.ErrUploadCancelled
		}
		return "", err
	}
	return ks.LegacyKey, nil
}

func (u *ChunkedUploader) uploadSession(ctx rcontext.RequestContext, log *logrus.Entry, item types.MediaItem, key string, contentType string, plan ChunkPlan, acc *byteAccumulator) error {
	sessionId, err := u.multipart.InitMultipart(ctx, key, contentType)
	if err != nil {
		return err
	}

	r, err := item.Source.Open()
	if err != nil {
		u.abort(log, key, sessionId)
		return err
	}
	defer r.Close()

	parts := make([]CompletedPart, plan.PartCount)
	sem := semaphore.NewWeighted(int64(u.opts.PartConcurrency))
	g, gctx := errgroup.WithContext(ctx)

	// The reader is sequential, so parts are buffered here and handed to the
	// pool. The semaphore bounds both in-flight parts and buffered memory.
	for partNumber := 1; partNumber <= plan.PartCount; partNumber++ {
		if err = sem.Acquire(gctx, 1); err != nil {
			break
		}

		size := plan.PartSizeBytes
		if partNumber == plan.PartCount {
			size = plan.TotalBytes - plan.PartSizeBytes*int64(plan.PartCount-1)
		}
		buf := make([]byte, size)
		if _, err = io.ReadFull(r, buf); err != nil {
			sem.Release(1)
			break
		}

		pn := partNumber
		g.Go(func() error {
			defer sem.Release(1)
			etag, partErr := u.uploadPartWithRetry(gctx, key, sessionId, pn, buf)
			if partErr != nil {
				return partErr
			}
			parts[pn-1] = CompletedPart{PartNumber: pn, ETag: etag}
			acc.add(int64(len(buf)))
			metrics.BytesUploaded.Add(float64(len(buf)))
			return nil
		})
	}

	// A failed part cancels the group context, which surfaces in the submit
	// loop as a bare "context canceled". The part's own error is the one
	// worth reporting.
	if gErr := g.Wait(); gErr != nil && (err == nil || errors.Is(err, context.Canceled)) {
		err = gErr
	}
	if err != nil {
		u.abort(log, key, sessionId)
		return err
	}

	if err = u.multipart.CompleteMultipart(ctx, key, sessionId, parts); err != nil {
		u.abort(log, key, sessionId)
		return err
	}
	return nil
}

// uploadPartWithRetry retries a part a bounded number of times before the
// whole-file fallback takes over.
func (u *ChunkedUploader) uploadPartWithRetry(ctx context.Context, key string, sessionId string, partNumber int, buf []byte) (string, error) {
	var etag string
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(u.opts.PartAttempts-1)), ctx)
	err := backoff.Retry(func() error {
		var attemptErr error
		etag, attemptErr = u.multipart.UploadPart(ctx, key, sessionId, partNumber, bytes.NewReader(buf), int64(len(buf)))
		return attemptErr
	}, b)
	if err != nil {
		return "", err
	}
	return etag, nil
}

// abort runs on its own context so a cancelled batch still cleans up the
// session server-side.
func (u *ChunkedUploader) abort(log *logrus.Entry, key string, sessionId string) {
	ctx, cancel := context.WithTimeout(context.Background(), abortTimeout)
	defer cancel()
	if err := u.multipart.AbortMultipart(ctx, key, sessionId); err != nil {
		log.Warn("Error aborting multipart session: ", err)
	}
}

// singleShot is the small-file path: one presigned PUT to the primary key,
// legacy fallback on failure, byte progress jumping to done on success.
func (u *ChunkedUploader) singleShot(ctx rcontext.RequestContext, item types.MediaItem, ks types.KeySet, acc *byteAccumulator) (string, error) {
	if ctx.Err() != nil {
		return "", common.ErrUploadCancelled
	}

	primaryErr := u.signAndPut(ctx, ks.PrimaryKey, ks.ContentType, item)
	if primaryErr == nil {
		acc.add(item.SizeBytes)
		metrics.BytesUploaded.Add(float64(item.SizeBytes))
		return ks.PrimaryKey, nil
	}
	if ctx.Err() != nil {
		return "", common.ErrUploadCancelled
	}

	ctx.Log.Warn("Single-shot upload failed - trying legacy key: ", primaryErr)
	if err := u.signAndPut(ctx, ks.LegacyKey, ks.ContentType, item); err != nil {
		if ctx.Err() != nil {
			return "", common.ErrUploadCancelled
		}
		return "", err
	}
	acc.add(item.SizeBytes)
	metrics.BytesUploaded.Add(float64(item.SizeBytes))
	return ks.LegacyKey, nil
}

func (u *ChunkedUploader) signAndPut(ctx rcontext.RequestContext, key string, contentType string, item types.MediaItem) error {
	url, err := u.auth.SignOne(ctx, key, contentType)
	if err != nil {
		return err
	}

	r, err := item.Source.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return u.transport.Put(ctx, url, contentType, r, item.SizeBytes)
}
