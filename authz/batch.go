package authz

import (
	"context"

	"github.com/sirupsen/logrus"
)

// BatchOutcome is the result of bulk-then-degrade authorization. Keys absent
// from both maps were skipped because cancellation was observed first.
type BatchOutcome struct {
	Urls   map[string]string
	Failed map[string]error
}

// AuthorizeAll signs keys in fixed-size chunks, degrading a failed chunk to
// one request per key. A per-key failure is recorded and does not abort
// sibling keys. Cancellation is observed at chunk boundaries.
func (c *Client) AuthorizeAll(ctx context.Context, log *logrus.Entry, reqs []SignRequest) *BatchOutcome {
	out := &BatchOutcome{
		Urls:   make(map[string]string),
		Failed: make(map[string]error),
	}

	for start := 0; start < len(reqs); start += c.batchSize {
		if ctx.Err() != nil {
			log.Warn("Cancellation observed during authorization - skipping remaining keys")
			return out
		}

		end := start + c.batchSize
		if end > len(reqs) {
			end = len(reqs)
		}
		chunk := reqs[start:end]

		urls, err := c.SignBatch(ctx, chunk)
		if err != nil {
			log.Warn("Batch authorization failed - degrading to per-key requests: ", err)
			c.signIndividually(ctx, log, chunk, out)
			continue
		}

		for _, r := range chunk {
			if url, ok := urls[r.Path]; ok && url != "" {
				out.Urls[r.Path] = url
			} else {
				// The service answered but skipped this key
				c.signIndividually(ctx, log, []SignRequest{r}, out)
			}
		}
	}

	return out
}

func (c *Client) signIndividually(ctx context.Context, log *logrus.Entry, chunk []SignRequest, out *BatchOutcome) {
	for _, r := range chunk {
		if ctx.Err() != nil {
			return
		}
		url, err := c.SignOne(ctx, r.Path, r.ContentType)
		if err != nil {
			log.Warn("Individual authorization failed for ", r.Path, ": ", err)
			out.Failed[r.Path] = err
			continue
		}
		out.Urls[r.Path] = url
	}
}
