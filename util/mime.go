package util

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/lexiport/episode-media-uploader/types"
)

// DetectContentType sniffs the content type from the source's leading bytes.
// Used when the caller declared no type; key building needs one for the
// extension and the storage metadata.
func DetectContentType(src types.MediaSource) (string, error) {
	r, err := src.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}
