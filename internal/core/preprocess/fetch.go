package preprocess

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// fetch performs the single GET for a source. No retries.
func (n *Normalizer) fetch(ctx context.Context, logger *slog.Logger, sourceURL string) ([]byte, string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("source body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("GET returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, n.cfg.MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > n.cfg.MaxBytes {
		return nil, "", fmt.Errorf("source exceeds %d bytes", n.cfg.MaxBytes)
	}

	logger.Debug("source fetched",
		"bytes", len(body),
		"content_type", resp.Header.Get("Content-Type"),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return body, resp.Header.Get("Content-Type"), nil
}
