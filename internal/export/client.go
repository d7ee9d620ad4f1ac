package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// StatusError reports a webhook that answered with a non-2xx status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("export: %s answered %d", e.URL, e.Status)
}

type Client struct {
	http *http.Client
	log  *zap.Logger
}

// NewClient returns a webhook client. A zero timeout means requests run
// until the remote end gives up.
func NewClient(timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log.Named("export"),
	}
}

// Send posts p to url. The response body is never read: script endpoints
// often answer with an opaque redirect page.
func (c *Client) Send(ctx context.Context, url string, p Payload) (int, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("export: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("export: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return len(body), fmt.Errorf("export: post: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return len(body), &StatusError{URL: url, Status: resp.StatusCode}
	}
	c.log.Debug("export delivered",
		zap.String("form_title", p.FormTitle),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)
	return len(body), nil
}
