package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/lexiport/episode-media-uploader/common/config"
	"github.com/lexiport/episode-media-uploader/metrics"
)

const DefaultBatchSize = 100

// SignRequest asks the signing service for a short-lived write credential
// bound to exactly one storage key.
type SignRequest struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

type signedUrl struct {
	Path string `json:"path"`
	Url  string `json:"url"`
}

type batchRequestBody struct {
	Items []SignRequest `json:"items"`
}

type batchResponseBody struct {
	Items []signedUrl `json:"items"`
}

type singleResponseBody struct {
	Url string `json:"url"`
}

type Client struct {
	endpoint  string
	secret    string
	batchSize int
	hc        *http.Client
}

func NewClient(cfg config.SigningConfig) *Client {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		secret:    cfg.SharedSecret,
		batchSize: batchSize,
		hc:        &http.Client{Timeout: timeout},
	}
}

// SignBatch requests credentials for many keys in one round trip.
func (c *Client) SignBatch(ctx context.Context, reqs []SignRequest) (map[string]string, error) {
	metrics.SignRequests.WithLabelValues("batch").Inc()

	res := batchResponseBody{}
	if err := c.post(ctx, c.endpoint+"/v1/sign/batch", &batchRequestBody{Items: reqs}, &res); err != nil {
		metrics.SignFailures.WithLabelValues("batch").Inc()
		return nil, errors.Wrap(err, "batch sign request failed")
	}

	urls := make(map[string]string)
	for _, s := range res.Items {
		urls[s.Path] = s.Url
	}
	return urls, nil
}

// SignOne requests a credential for a single key.
func (c *Client) SignOne(ctx context.Context, path string, contentType string) (string, error) {
	metrics.SignRequests.WithLabelValues("single").Inc()

	res := singleResponseBody{}
	if err := c.post(ctx, c.endpoint+"/v1/sign", &SignRequest{Path: path, ContentType: contentType}, &res); err != nil {
		metrics.SignFailures.WithLabelValues("single").Inc()
		return "", errors.Wrapf(err, "sign request failed for %s", path)
	}
	if res.Url == "" {
		return "", errors.Errorf("signing service returned no url for %s", path)
	}
	return res.Url, nil
}

func (c *Client) post(ctx context.Context, url string, body interface{}, into interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return errors.Errorf("signing service returned status %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(into)
}
