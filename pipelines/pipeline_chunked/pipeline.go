package pipeline_chunked

import (
	"github.com/sirupsen/logrus"

	"github.com/lexiport/episode-media-uploader/common/config"
	"github.com/lexiport/episode-media-uploader/common/rcontext"
	"github.com/lexiport/episode-media-uploader/keys"
	"github.com/lexiport/episode-media-uploader/types"
	"github.com/lexiport/episode-media-uploader/uploading"
)

// DefaultLogicalId names the single full-episode file within its kind folder.
const DefaultLogicalId = "full"

type ChunkedRequest struct {
	ContentSlug    string
	Episode        int
	MediaKind      string
	LogicalId      string
	File           types.MediaItem
	OnByteProgress uploading.ByteProgressFunc
}

// Execute uploads one large file, multipart when it crosses the configured
// threshold, and returns the storage key the bytes landed under.
func Execute(ctx rcontext.RequestContext, auth uploading.Authorizer, transport uploading.Transport, multipart uploading.MultipartService, req ChunkedRequest) (string, error) {
	logicalId := req.LogicalId
	if logicalId == "" {
		logicalId = DefaultLogicalId
	}

	ks, err := keys.ForMedia(req.ContentSlug, req.Episode, req.MediaKind, logicalId, req.File.ContentType)
	if err != nil {
		return "", err
	}

	ctx = ctx.LogWithFields(logrus.Fields{
		"key":       ks.PrimaryKey,
		"sizeBytes": req.File.SizeBytes,
	})

	mpCfg := config.Get().Multipart
	uploader := uploading.NewChunkedUploader(auth, transport, multipart, uploading.ChunkedOptions{
		PartSizeBytes:   mpCfg.PartSizeBytes,
		PartConcurrency: mpCfg.PartConcurrency,
		ThresholdBytes:  mpCfg.ThresholdBytes,
		PartAttempts:    mpCfg.PartAttempts,
	})

	usedKey, err := uploader.Upload(ctx, req.File, ks, req.OnByteProgress)
	if err != nil {
		return "", err
	}

	ctx.Log.Info("Large file upload finished at key ", usedKey)
	return usedKey, nil
}
