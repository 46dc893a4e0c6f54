package common

import (
	"errors"
)

var ErrIdCountMismatch = errors.New("explicit id count does not match file count")
var ErrMissingContentSlug = errors.New("content slug is required")
var ErrInvalidEpisodeNumber = errors.New("episode number must be positive")
var ErrUnknownMediaKind = errors.New("unknown media kind")
var ErrNotAuthorized = errors.New("no write authorization for key")
var ErrUploadCancelled = errors.New("upload cancelled")
var ErrEmptySource = errors.New("media source has no bytes")
