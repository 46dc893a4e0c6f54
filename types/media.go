package types

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// MediaSource hands out a fresh reader for the underlying bytes. Uploads may
// need to read the same payload more than once (legacy-key retry), so a
// plain io.Reader is not enough.
type MediaSource interface {
	Open() (io.ReadCloser, error)
}

// MediaItem is one caller-selected input file. The pipeline never mutates it.
type MediaItem struct {
	Name        string
	SizeBytes   int64
	ContentType string
	Source      MediaSource
}

// PlanEntry pairs an input file with its planned logical id. The id is unique
// within one planner invocation.
type PlanEntry struct {
	Item      MediaItem
	LogicalId string
}

// KeySet holds both storage paths for one logical media item. PrimaryKey is
// always attempted first; LegacyKey only after PrimaryKey fails.
type KeySet struct {
	PrimaryKey  string
	LegacyKey   string
	ContentType string
}

type FileSource struct {
	Path string
}

func (s *FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

type BytesSource struct {
	Bytes []byte
}

func (s *BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Bytes)), nil
}

// NewFileItem stats the file at path and wraps it as a MediaItem. The content
// type is left for the caller to fill in (declared or sniffed).
func NewFileItem(path string) (MediaItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return MediaItem{}, err
	}
	return MediaItem{
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
		Source:    &FileSource{Path: path},
	}, nil
}
