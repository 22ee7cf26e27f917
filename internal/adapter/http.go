package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/logger"
)

// maxErrorBodySize bounds how much of an error response body is kept
const maxErrorBodySize = 1024

// HTTPClient defines an interface for HTTP client operations to enable mocking
//
//go:generate mockgen -source=http.go -destination=../mocks/http.go -package=mocks -mock_names=HTTPClient=MockHTTPClient
type HTTPClient interface {
	// GetJSON performs a GET request and unmarshals the response into result
	GetJSON(ctx context.Context, url string, result interface{}) error

	// PostJSON marshals body, performs a POST request with the given headers and
	// unmarshals the response into result when result is not nil
	PostJSON(ctx context.Context, url string, headers map[string]string, body interface{}, result interface{}) error
}

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// StatusCodeOf extracts the HTTP status code from err, or 0 when err carries none
func StatusCodeOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// BackoffFactory creates a fresh backoff policy for one request
type BackoffFactory func() backoff.BackOff

// DefaultBackoff is the retry policy used for outbound API calls
func DefaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 1 * time.Minute
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5
	return b
}

// NoRetry is a policy that never retries
func NoRetry() backoff.BackOff {
	return &backoff.StopBackOff{}
}

// RealHTTPClient implements HTTPClient using the standard http package
type RealHTTPClient struct {
	client  *http.Client
	backoff BackoffFactory
}

// NewHTTPClient creates a new HTTP client retrying with the given policy.
// A nil policy falls back to DefaultBackoff.
func NewHTTPClient(timeout time.Duration, policy BackoffFactory) HTTPClient {
	if policy == nil {
		policy = DefaultBackoff
	}
	return &RealHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		backoff: policy,
	}
}

// retryAfter wraps an error with the server provided wait hint
type retryAfter struct {
	err  error
	wait time.Duration
}

func (r *retryAfter) Error() string { return r.err.Error() }
func (r *retryAfter) Unwrap() error { return r.err }

// do executes the request built by newReq with retry.
// Network errors, 429 and 5xx responses are retried, any other non-2xx status is permanent.
func (c *RealHTTPClient) do(ctx context.Context, newReq func() (*http.Request, error)) ([]byte, error) {
	var respBody []byte

	operation := func() error {
		req, err := newReq()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("failed to perform request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.WarnCtx(ctx, "failed to close response body", zap.Error(err))
			}
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
			respBody = body
			return nil
		}

		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBodySize)}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			logger.WarnCtx(ctx, "rate limited, retrying with backoff", zap.String("host", req.URL.Host))
			return &retryAfter{err: statusErr, wait: parseRetryAfter(resp.Header.Get("Retry-After"))}
		case resp.StatusCode >= http.StatusInternalServerError:
			return statusErr
		default:
			return backoff.Permanent(statusErr)
		}
	}

	b := backoff.WithContext(c.backoff(), ctx)
	notify := func(err error, next time.Duration) {
		logger.DebugCtx(ctx, "retrying request", zap.Error(err), zap.Duration("next", next))
	}

	err := backoff.RetryNotify(func() error {
		err := operation()
		var ra *retryAfter
		if errors.As(err, &ra) && ra.wait > 0 {
			select {
			case <-time.After(ra.wait):
			case <-ctx.Done():
				return backoff.Permanent(ctx.Err())
			}
		}
		return err
	}, b, notify)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return respBody, nil
}

// GetJSON performs a GET request and unmarshals the response into result
func (c *RealHTTPClient) GetJSON(ctx context.Context, url string, result interface{}) error {
	respBody, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// PostJSON performs a POST request with a JSON body
func (c *RealHTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, body interface{}, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	respBody, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return err
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	wait := time.Duration(seconds * float64(time.Second))
	if wait > time.Minute {
		wait = time.Minute
	}
	return wait
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
