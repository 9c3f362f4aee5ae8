package httpx

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Client performs bounded GET requests against upstream price APIs. The
// injected http.Client carries the per-request timeout; Header entries
// are added to every request (API keys and the like).
type Client struct {
	HTTP   *http.Client
	Header http.Header
	Log    *zap.Logger
}

// FetchText GETs url and returns the response body as text. Failures of
// any kind (request build, transport, non-2xx status, body read) are
// logged and collapsed to an empty string. Callers treat "" as "no data
// this cycle"; there are no retries, the next scheduled cycle tries again.
func (c *Client) FetchText(ctx context.Context, url string) string {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn("upstream request build failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Warn("upstream request failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("upstream returned non-2xx",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("upstream body read failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return string(body)
}
