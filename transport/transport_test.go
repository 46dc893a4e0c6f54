package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPut(t *testing.T) {
	var gotBody string
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient()
	err := c.Put(context.Background(), srv.URL+"/media/slug/001/images/001.jpg", "image/jpeg", strings.NewReader("payload"), 7)
	require.NoError(t, err)
	assert.Equal(t, "payload", gotBody)
	assert.Equal(t, "image/jpeg", gotType)
}

func TestPutNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient()
	err := c.Put(context.Background(), srv.URL, "image/jpeg", strings.NewReader("payload"), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPutHonorsContextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient()
	err := c.Put(ctx, srv.URL, "image/jpeg", strings.NewReader("payload"), 7)
	assert.Error(t, err)
}
