package uploading

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/lexiport/episode-media-uploader/types"
)

type fakeAuthorizer struct {
	mu      sync.Mutex
	fail    bool
	signed  []string
	failFor map[string]bool
}

func (f *fakeAuthorizer) SignOne(ctx context.Context, path string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.failFor[path] {
		return "", errors.New("signing refused")
	}
	f.signed = append(f.signed, path)
	return "signed://" + path, nil
}

type fakeTransport struct {
	mu      sync.Mutex
	failFor func(url string) bool
	puts    []string
}

func (f *fakeTransport) Put(ctx context.Context, url string, contentType string, body io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	if f.failFor != nil && f.failFor(url) {
		return errors.New("transport refused")
	}
	f.mu.Lock()
	f.puts = append(f.puts, url)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

func failPrimaries(url string) bool {
	return strings.Contains(url, "/media/")
}

type fakeSession struct {
	key       string
	parts     map[int]int64
	completed bool
	aborted   bool
}

type fakeMultipart struct {
	mu           sync.Mutex
	nextId       int
	sessions     map[string]*fakeSession
	attempts     map[string]int
	failPartsAt  func(key string) bool
	failPartOnce bool
	onPart       func(partNumber int)
}

func newFakeMultipart() *fakeMultipart {
	return &fakeMultipart{
		sessions: make(map[string]*fakeSession),
		attempts: make(map[string]int),
	}
}

func (f *fakeMultipart) InitMultipart(ctx context.Context, key string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextId++
	id := fmt.Sprintf("session-%d", f.nextId)
	f.sessions[id] = &fakeSession{key: key, parts: make(map[int]int64)}
	return id, nil
}

func (f *fakeMultipart) UploadPart(ctx context.Context, key string, sessionId string, partNumber int, data io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.onPart != nil {
		f.onPart(partNumber)
	}
	n, err := io.Copy(io.Discard, data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.attempts[fmt.Sprintf("%s/%d", sessionId, partNumber)]++
	first := f.attempts[fmt.Sprintf("%s/%d", sessionId, partNumber)] == 1
	f.mu.Unlock()
	if f.failPartOnce && first {
		return "", errors.New("part refused")
	}
	if f.failPartsAt != nil && f.failPartsAt(key) {
		return "", errors.New("part refused")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionId]
	if !ok || s.aborted {
		return "", errors.New("no such session")
	}
	s.parts[partNumber] = n
	return fmt.Sprintf("etag-%d", partNumber), nil
}

func (f *fakeMultipart) CompleteMultipart(ctx context.Context, key string, sessionId string, parts []CompletedPart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionId]
	if !ok || s.aborted {
		return errors.New("no such session")
	}
	if len(parts) != len(s.parts) {
		return errors.New("part count mismatch")
	}
	for _, p := range parts {
		if p.ETag == "" {
			return errors.New("missing etag")
		}
	}
	s.completed = true
	return nil
}

func (f *fakeMultipart) AbortMultipart(ctx context.Context, key string, sessionId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionId]
	if !ok {
		return errors.New("no such session")
	}
	s.aborted = true
	return nil
}

func (f *fakeMultipart) attemptsFor(sessionId string, partNumber int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[fmt.Sprintf("%s/%d", sessionId, partNumber)]
}

func (f *fakeMultipart) sessionIdFor(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.sessions {
		if s.key == key {
			return id
		}
	}
	return ""
}

func (f *fakeMultipart) sessionsFor(key string) []*fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*fakeSession, 0)
	for _, s := range f.sessions {
		if s.key == key {
			out = append(out, s)
		}
	}
	return out
}

func bytesItem(name string, size int) types.MediaItem {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	return types.MediaItem{
		Name:        name,
		SizeBytes:   int64(size),
		ContentType: "application/octet-stream",
		Source:      &types.BytesSource{Bytes: payload},
	}
}
