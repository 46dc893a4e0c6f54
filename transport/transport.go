package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Client issues raw PUTs against credentialed URLs. Timeouts are the
// caller's responsibility via the context; the underlying http.Client
// carries none so a long multipart batch is never cut short globally.
type Client struct {
	hc *http.Client
}

func NewClient() *Client {
	return &Client{hc: &http.Client{}}
}

// Put writes one payload to a presigned URL. Any non-2xx status is an error.
func (c *Client) Put(ctx context.Context, url string, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "put failed")
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.Errorf("storage returned status %d", res.StatusCode)
	}
	return nil
}
