package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"encoding/json"

	"github.com/avast/retry-go/v4"
)

// httpStatusError preserves the status code so callers and the retry policy
// can distinguish transient provider failures from hard ones. Its message is
// the user-visible "HTTP {status}" form.
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.status)
}

// doRequest performs one API call with retries on transient failures.
// The returned body is the raw response for the caller to decode.
func (c *OpenAICompatClient) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var respBody []byte
	err := retry.Do(
		func() error {
			var err error
			respBody, err = c.attempt(ctx, method, path, reqBody)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying provider request", "path", path, "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

// attempt performs a single HTTP round trip.
func (c *OpenAICompatClient) attempt(ctx context.Context, method, path string, reqBody []byte) ([]byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{status: resp.StatusCode}
	}
	return respBody, nil
}

// isRetryable reports whether a failed attempt is worth repeating:
// rate limits, server errors, and network failures. Client errors
// (auth, bad request) and cancellation are final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status == http.StatusTooManyRequests || statusErr.status >= 500
	}
	// Network-level failure.
	return true
}
