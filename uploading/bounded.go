package uploading

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lexiport/episode-media-uploader/common"
	"github.com/lexiport/episode-media-uploader/common/rcontext"
	"github.com/lexiport/episode-media-uploader/metrics"
	"github.com/lexiport/episode-media-uploader/pool"
	"github.com/lexiport/episode-media-uploader/types"
)

const DefaultItemTimeout = 120 * time.Second

// BatchInput carries one planned batch into the uploader. Keys runs parallel
// to Entries. Urls maps primary keys to their batch-issued credentials;
// PreFailed holds keys whose authorization already failed terminally.
type BatchInput struct {
	Entries    []types.PlanEntry
	Keys       []types.KeySet
	Urls       map[string]string
	PreFailed  map[string]error
	OnProgress ProgressFunc
}

// BatchUploader pushes many single-shot uploads through a bounded worker
// pool. Every entry reaches exactly one terminal outcome; a bad file never
// blocks its siblings.
type BatchUploader struct {
	auth        Authorizer
	transport   Transport
	queue       *pool.Queue
	itemTimeout time.Duration
}

func NewBatchUploader(auth Authorizer, transport Transport, queue *pool.Queue, itemTimeout time.Duration) *BatchUploader {
	if itemTimeout <= 0 {
		itemTimeout = DefaultItemTimeout
	}
	return &BatchUploader{
		auth:        auth,
		transport:   transport,
		queue:       queue,
		itemTimeout: itemTimeout,
	}
}

func (u *BatchUploader) Run(ctx rcontext.RequestContext, in BatchInput) *BatchResult {
	results := make([]TransferResult, len(in.Entries))
	progress := newProgressCounter(len(in.Entries), in.OnProgress)

	record := func(i int, r TransferResult) {
		results[i] = r
		metrics.UploadOutcomes.WithLabelValues(string(r.Outcome)).Inc()
		progress.increment()
	}

	wg := &sync.WaitGroup{}
	for i := range in.Entries {
		i := i
		entry := in.Entries[i]
		ks := in.Keys[i]

		// Terminal since the authorizer's degrade path
		if err, ok := in.PreFailed[ks.PrimaryKey]; ok {
			record(i, TransferResult{LogicalId: entry.LogicalId, Key: ks.PrimaryKey, Outcome: OutcomeFailed, Error: err})
			continue
		}

		// No new transfers once cancellation is signaled
		if ctx.Err() != nil {
			record(i, TransferResult{LogicalId: entry.LogicalId, Key: ks.PrimaryKey, Outcome: OutcomeCancelled, Error: common.ErrUploadCancelled})
			continue
		}

		wg.Add(1)
		err := u.queue.Schedule(func() {
			defer wg.Done()
			record(i, u.uploadOne(ctx, entry, ks, in.Urls[ks.PrimaryKey]))
		})
		if err != nil {
			wg.Done()
			record(i, TransferResult{LogicalId: entry.LogicalId, Key: ks.PrimaryKey, Outcome: OutcomeFailed, Error: err})
		}
	}
	wg.Wait()

	return &BatchResult{Results: results}
}

type itemState int

const (
	statePending itemState = iota
	statePrimaryAttempted
	stateLegacyAttempted
)

// uploadOne walks one entry through the per-item state machine:
// Pending -> PrimaryAttempted -> {Succeeded | LegacyAttempted} ->
// {FellBackToLegacy | Failed}. The legacy attempt always uses a fresh,
// individually signed credential.
func (u *BatchUploader) uploadOne(ctx rcontext.RequestContext, entry types.PlanEntry, ks types.KeySet, primaryUrl string) TransferResult {
	log := ctx.Log.WithFields(logrus.Fields{"logicalId": entry.LogicalId, "key": ks.PrimaryKey})

	state := statePending
	var primaryErr error
	for {
		switch state {
		case statePending:
			if ctx.Err() != nil {
				return TransferResult{LogicalId: entry.LogicalId, Key: ks.PrimaryKey, Outcome: OutcomeCancelled, Error: common.ErrUploadCancelled}
			}
			if primaryUrl == "" {
				primaryErr = common.ErrNotAuthorized
				state = stateLegacyAttempted
				continue
			}
			state = statePrimaryAttempted

		case statePrimaryAttempted:
			metrics.UploadAttempts.WithLabelValues("primary").Inc()
			err := u.putOnce(ctx, primaryUrl, ks.ContentType, entry.Item)
			if err == nil {
				metrics.BytesUploaded.Add(float64(entry.Item.SizeBytes))
				return TransferResult{LogicalId: entry.LogicalId, Key: ks.PrimaryKey, Outcome: OutcomeSucceeded}
			}
			if ctx.Err() != nil {
				return TransferResult{LogicalId: entry.LogicalId, Key: ks.PrimaryKey, Outcome: OutcomeCancelled, Error: common.ErrUploadCancelled}
			}
			log.Warn("Primary upload failed - trying legacy key: ", err)
			primaryErr = err
			state = stateLegacyAttempted

		case stateLegacyAttempted:
			metrics.UploadAttempts.WithLabelValues("legacy").Inc()
			err := u.putLegacy(ctx, ks, entry.Item)
			if err == nil {
				metrics.BytesUploaded.Add(float64(entry.Item.SizeBytes))
				return TransferResult{LogicalId: entry.LogicalId, Key: ks.LegacyKey, Outcome: OutcomeFellBackToLegacy}
			}
			if ctx.Err() != nil {
				return TransferResult{LogicalId: entry.LogicalId, Key: ks.PrimaryKey, Outcome: OutcomeCancelled, Error: common.ErrUploadCancelled}
			}
			log.Warn("Legacy upload failed: ", err)
			return TransferResult{
				LogicalId: entry.LogicalId,
				Key:       ks.PrimaryKey,
				Outcome:   OutcomeFailed,
				Error:     fmt.Errorf("primary attempt: %v; legacy attempt: %v", primaryErr, err),
			}
		}
	}
}

func (u *BatchUploader) putOnce(ctx rcontext.RequestContext, url string, contentType string, item types.MediaItem) error {
	tctx, cancel := ctx.WithTimeout(u.itemTimeout)
	defer cancel()

	r, err := item.Source.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return u.transport.Put(tctx, url, contentType, r, item.SizeBytes)
}

// putLegacy signs and writes the legacy key inside one item timeout. The
// batch authorization never covered this key, so the credential is fresh by
// construction.
func (u *BatchUploader) putLegacy(ctx rcontext.RequestContext, ks types.KeySet, item types.MediaItem) error {
	tctx, cancel := ctx.WithTimeout(u.itemTimeout)
	defer cancel()

	url, err := u.auth.SignOne(tctx, ks.LegacyKey, ks.ContentType)
	if err != nil {
		return err
	}

	r, err := item.Source.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return u.transport.Put(tctx, url, ks.ContentType, r, item.SizeBytes)
}
