package pipeline_batch

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lexiport/episode-media-uploader/authz"
	"github.com/lexiport/episode-media-uploader/common/config"
	"github.com/lexiport/episode-media-uploader/common/rcontext"
	"github.com/lexiport/episode-media-uploader/keys"
	"github.com/lexiport/episode-media-uploader/planner"
	"github.com/lexiport/episode-media-uploader/pool"
	"github.com/lexiport/episode-media-uploader/types"
	"github.com/lexiport/episode-media-uploader/uploading"
)

// BatchRequest describes one bulk upload: which episode the files belong to
// and how logical ids should be assigned.
type BatchRequest struct {
	ContentSlug   string
	Episode       int
	MediaKind     string
	Files         []types.MediaItem
	ExplicitIds   []string
	PadWidth      int
	StartIndex    int
	InferFromName bool
	OnProgress    uploading.ProgressFunc
}

// Execute runs plan -> keys -> batch-authorize -> bounded upload. It returns
// once every entry is terminal or cancellation has been observed; per-item
// failures land in the result set, never as a returned error.
func Execute(ctx rcontext.RequestContext, auth *authz.Client, transport uploading.Transport, queue *pool.Queue, req BatchRequest) (*uploading.BatchResult, error) {
	ctx = ctx.LogWithFields(logrus.Fields{
		"contentSlug": req.ContentSlug,
		"episode":     req.Episode,
		"mediaKind":   req.MediaKind,
		"files":       len(req.Files),
	})

	entries, err := planner.Plan(req.Files, planner.Options{
		ExplicitIds:   req.ExplicitIds,
		PadWidth:      req.PadWidth,
		StartIndex:    req.StartIndex,
		InferFromName: req.InferFromName,
	})
	if err != nil {
		return nil, err
	}

	keysets := make([]types.KeySet, len(entries))
	signReqs := make([]authz.SignRequest, 0, len(entries))
	for i, e := range entries {
		ks, err := keys.ForMedia(req.ContentSlug, req.Episode, req.MediaKind, e.LogicalId, e.Item.ContentType)
		if err != nil {
			return nil, err
		}
		keysets[i] = ks
		signReqs = append(signReqs, authz.SignRequest{Path: ks.PrimaryKey, ContentType: ks.ContentType})
	}

	ctx.Log.Info("Authorizing batch of ", len(signReqs), " keys")
	out := auth.AuthorizeAll(ctx, ctx.Log, signReqs)

	itemTimeout := time.Duration(config.Get().Uploads.ItemTimeoutSeconds) * time.Second
	uploader := uploading.NewBatchUploader(auth, transport, queue, itemTimeout)

	ctx.Log.Info("Uploading ", len(entries), " items")
	result := uploader.Run(ctx, uploading.BatchInput{
		Entries:    entries,
		Keys:       keysets,
		Urls:       out.Urls,
		PreFailed:  out.Failed,
		OnProgress: req.OnProgress,
	})

	summary := result.Summary()
	ctx.Log.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded,
		"fellBack":  summary.FellBack,
		"failed":    summary.Failed,
		"cancelled": summary.Cancelled,
	}).Info("Batch upload finished")

	return result, nil
}
