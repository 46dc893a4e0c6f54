package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiport/episode-media-uploader/common/config"
)

type fakeSigner struct {
	mu          sync.Mutex
	batchCalls  int
	singleCalls int
	failBatch   bool
	failSingle  map[string]bool
}

func (f *fakeSigner) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sign/batch", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.batchCalls++
		fail := f.failBatch
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		body := batchRequestBody{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		res := batchResponseBody{}
		for _, item := range body.Items {
			res.Items = append(res.Items, signedUrl{Path: item.Path, Url: "https://bucket.test/" + item.Path})
		}
		_ = json.NewEncoder(w).Encode(&res)
	})
	mux.HandleFunc("/v1/sign", func(w http.ResponseWriter, r *http.Request) {
		body := SignRequest{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.singleCalls++
		fail := f.failSingle[body.Path]
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(&singleResponseBody{Url: "https://bucket.test/" + body.Path})
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeSigner, batchSize int) *Client {
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(config.SigningConfig{
		Endpoint:       srv.URL,
		SharedSecret:   "test-secret",
		BatchSize:      batchSize,
		TimeoutSeconds: 5,
	})
}

func signReqs(paths ...string) []SignRequest {
	reqs := make([]SignRequest, 0, len(paths))
	for _, p := range paths {
		reqs = append(reqs, SignRequest{Path: p, ContentType: "image/jpeg"})
	}
	return reqs
}

func TestSignBatch(t *testing.T) {
	f := &fakeSigner{}
	c := newTestClient(t, f, 100)

	urls, err := c.SignBatch(context.Background(), signReqs("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.test/a", urls["a"])
	assert.Equal(t, "https://bucket.test/b", urls["b"])
}

func TestSignOne(t *testing.T) {
	f := &fakeSigner{}
	c := newTestClient(t, f, 100)

	url, err := c.SignOne(context.Background(), "slug/1/images/001.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.test/slug/1/images/001.jpg", url)
}

func TestAuthorizeAllChunks(t *testing.T) {
	f := &fakeSigner{}
	c := newTestClient(t, f, 2)

	out := c.AuthorizeAll(context.Background(), logrus.WithField("test", t.Name()), signReqs("a", "b", "c", "d", "e"))
	assert.Len(t, out.Urls, 5)
	assert.Empty(t, out.Failed)
	assert.Equal(t, 3, f.batchCalls) // 2 + 2 + 1
	assert.Equal(t, 0, f.singleCalls)
}

func TestAuthorizeAllDegradesFailedChunk(t *testing.T) {
	f := &fakeSigner{failBatch: true}
	c := newTestClient(t, f, 2)

	out := c.AuthorizeAll(context.Background(), logrus.WithField("test", t.Name()), signReqs("a", "b", "c"))
	assert.Len(t, out.Urls, 3)
	assert.Empty(t, out.Failed)
	assert.Equal(t, 2, f.batchCalls)
	assert.Equal(t, 3, f.singleCalls)
}

func TestAuthorizeAllRecordsIndividualFailures(t *testing.T) {
	f := &fakeSigner{failBatch: true, failSingle: map[string]bool{"b": true}}
	c := newTestClient(t, f, 100)

	out := c.AuthorizeAll(context.Background(), logrus.WithField("test", t.Name()), signReqs("a", "b", "c"))
	assert.Len(t, out.Urls, 2)
	require.Len(t, out.Failed, 1)
	assert.Error(t, out.Failed["b"])
}

func TestAuthorizeAllObservesCancellation(t *testing.T) {
	f := &fakeSigner{}
	c := newTestClient(t, f, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := c.AuthorizeAll(ctx, logrus.WithField("test", t.Name()), signReqs("a", "b", "c"))
	assert.Empty(t, out.Urls)
	assert.Empty(t, out.Failed)
	assert.Equal(t, 0, f.batchCalls)
}
