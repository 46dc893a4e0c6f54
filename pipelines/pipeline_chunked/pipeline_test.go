package pipeline_chunked

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiport/episode-media-uploader/common"
	"github.com/lexiport/episode-media-uploader/common/rcontext"
	"github.com/lexiport/episode-media-uploader/types"
	"github.com/lexiport/episode-media-uploader/uploading"
)

type stubAuthorizer struct{}

func (s *stubAuthorizer) SignOne(ctx context.Context, path string, contentType string) (string, error) {
	return "signed://" + path, nil
}

type stubTransport struct {
	mu   sync.Mutex
	puts []string
}

func (s *stubTransport) Put(ctx context.Context, url string, contentType string, body io.Reader, size int64) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	s.mu.Lock()
	s.puts = append(s.puts, url)
	s.mu.Unlock()
	return nil
}

type stubMultipart struct {
	mu        sync.Mutex
	sessions  int
	parts     int
	completed int
}

func (s *stubMultipart) InitMultipart(ctx context.Context, key string, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions++
	return fmt.Sprintf("session-%d", s.sessions), nil
}

func (s *stubMultipart) UploadPart(ctx context.Context, key string, sessionId string, partNumber int, data io.Reader, size int64) (string, error) {
	if _, err := io.Copy(io.Discard, data); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.parts++
	s.mu.Unlock()
	return fmt.Sprintf("etag-%d", partNumber), nil
}

func (s *stubMultipart) CompleteMultipart(ctx context.Context, key string, sessionId string, parts []uploading.CompletedPart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	return nil
}

func (s *stubMultipart) AbortMultipart(ctx context.Context, key string, sessionId string) error {
	return errors.New("abort should not be reached in this test")
}

func largeItem(size int) types.MediaItem {
	return types.MediaItem{
		Name:        "episode.mp4",
		SizeBytes:   int64(size),
		ContentType: "video/mp4",
		Source:      &types.BytesSource{Bytes: make([]byte, size)},
	}
}

func TestExecuteMultipart(t *testing.T) {
	mp := &stubMultipart{}
	var lastDone, lastTotal int64

	// Default config: 8 MiB parts, 8 MiB threshold
	size := 20 * 1024 * 1024
	usedKey, err := Execute(rcontext.Initial(), &stubAuthorizer{}, &stubTransport{}, mp, ChunkedRequest{
		ContentSlug: "norsk-lytt",
		Episode:     12,
		MediaKind:   common.KindVideo,
		File:        largeItem(size),
		OnByteProgress: func(done int64, total int64) {
			lastDone, lastTotal = done, total
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "media/norsk-lytt/012/video/full.mp4", usedKey)
	assert.Equal(t, 1, mp.sessions)
	assert.Equal(t, 3, mp.parts) // 20 MiB in 8 MiB parts
	assert.Equal(t, 1, mp.completed)
	assert.Equal(t, int64(size), lastDone)
	assert.Equal(t, int64(size), lastTotal)
}

func TestExecuteSmallFileSkipsMultipart(t *testing.T) {
	mp := &stubMultipart{}
	tr := &stubTransport{}

	usedKey, err := Execute(rcontext.Initial(), &stubAuthorizer{}, tr, mp, ChunkedRequest{
		ContentSlug: "norsk-lytt",
		Episode:     12,
		MediaKind:   common.KindAudio,
		LogicalId:   "intro",
		File: types.MediaItem{
			Name:        "intro.mp3",
			SizeBytes:   2048,
			ContentType: "audio/mpeg",
			Source:      &types.BytesSource{Bytes: make([]byte, 2048)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "media/norsk-lytt/012/audio/intro.mp3", usedKey)
	assert.Equal(t, 0, mp.sessions)
	assert.Len(t, tr.puts, 1)
}

func TestExecuteValidatesKeyInputs(t *testing.T) {
	_, err := Execute(rcontext.Initial(), &stubAuthorizer{}, &stubTransport{}, &stubMultipart{}, ChunkedRequest{
		ContentSlug: "",
		Episode:     1,
		MediaKind:   common.KindVideo,
		File:        largeItem(1024),
	})
	assert.ErrorIs(t, err, common.ErrMissingContentSlug)
}
