package keys

import (
	"fmt"
	"strings"

	"github.com/lexiport/episode-media-uploader/common"
	"github.com/lexiport/episode-media-uploader/types"
)

// ForMedia derives both storage paths for one logical media item. The
// canonical layout zero-pads the episode folder; the legacy layout predates
// the padding migration and is kept so old content stays reachable.
func ForMedia(contentSlug string, episode int, mediaKind string, logicalId string, declaredType string) (types.KeySet, error) {
	if strings.TrimSpace(contentSlug) == "" {
		return types.KeySet{}, common.ErrMissingContentSlug
	}
	if episode <= 0 {
		return types.KeySet{}, common.ErrInvalidEpisodeNumber
	}
	if !common.IsMediaKind(mediaKind) {
		return types.KeySet{}, common.ErrUnknownMediaKind
	}

	contentType := normalizeType(declaredType)
	if contentType == "" {
		contentType = defaultTypeForKind(mediaKind)
	}
	ext := extensionForType(mediaKind, contentType)

	return types.KeySet{
		PrimaryKey:  fmt.Sprintf("media/%s/%03d/%s/%s%s", contentSlug, episode, mediaKind, logicalId, ext),
		LegacyKey:   fmt.Sprintf("%s/%d/%s/%s%s", contentSlug, episode, mediaKind, logicalId, ext),
		ContentType: contentType,
	}, nil
}

func normalizeType(declaredType string) string {
	t := strings.ToLower(strings.TrimSpace(declaredType))
	if idx := strings.Index(t, ";"); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}
	return t
}

func defaultTypeForKind(mediaKind string) string {
	switch mediaKind {
	case common.KindImages:
		return "image/jpeg"
	case common.KindAudio:
		return "audio/mpeg"
	case common.KindVideo:
		return "video/mp4"
	}
	return "application/octet-stream"
}

func extensionForType(mediaKind string, contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mp4", "audio/x-m4a":
		return ".m4a"
	case "audio/ogg":
		return ".ogg"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	}

	// Ambiguous or unknown type - use the kind's conventional extension
	switch mediaKind {
	case common.KindImages:
		return ".jpg"
	case common.KindAudio:
		return ".mp3"
	case common.KindVideo:
		return ".mp4"
	}
	return ".bin"
}
