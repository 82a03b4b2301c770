package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lapedge/lapedge/pkg/metrics"
)

const userAgent = "LapEdge/1.0 (Personal use)"

// getJSON performs one bounded upstream GET and decodes the body.
// Latency and outcome are recorded per provider label.
func getJSON(ctx context.Context, client *http.Client, provider, url string, timeout time.Duration, v any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := client.Do(req)
	metrics.RecordUpstreamLatency(provider, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest(provider, outcomeOf(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamRequest(provider, "http_error")
		return &StatusError{Code: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		metrics.RecordUpstreamRequest(provider, "error")
		return err
	}
	metrics.RecordUpstreamRequest(provider, "ok")
	return nil
}

func outcomeOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
