package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/mysterie/creditgate/internal/shared/metrics"
)

// Error represents a failed vendor call. Status carries the upstream
// HTTP status when one was received; it is zero for transport failures.
type Error struct {
	Vendor string
	Op     string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Vendor, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Vendor, e.Op, e.Err)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a vendor Error from an error chain.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ImageGenerator generates one image for a prompt and returns a
// fetchable URL to the result. Both the synchronous and the job-polling
// vendors sit behind this contract.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Client wraps an HTTP client with a circuit breaker for one vendor.
// Transport failures and 5xx responses trip the breaker; 4xx responses
// are vendor errors but count as delivered.
type Client struct {
	vendor  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics *metrics.Metrics
}

// NewClient creates a vendor HTTP client.
func NewClient(vendor string, timeout time.Duration, m *metrics.Metrics) *Client {
	settings := gobreaker.Settings{
		Name: vendor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 60 * time.Second,
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var ve *Error
			if errors.As(err, &ve) {
				return ve.Status > 0 && ve.Status < 500
			}
			return false
		},
	}

	return &Client{
		vendor:  vendor,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		metrics: m,
	}
}

// PostJSON sends a JSON request and returns the response body.
func (c *Client) PostJSON(ctx context.Context, op, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(op, req)
}

// Get sends a GET request and returns the response body.
func (c *Client) Get(ctx context.Context, op, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	start := time.Now()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &Error{Vendor: c.vendor, Op: op, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &Error{Vendor: c.vendor, Op: op, Err: fmt.Errorf("read response: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &Error{
				Vendor: c.vendor,
				Op:     op,
				Status: resp.StatusCode,
				Err:    fmt.Errorf("unexpected status"),
			}
		}

		return data, nil
	})

	c.record(op, err, time.Since(start))

	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		// Breaker-open and similar internal errors still surface as a
		// vendor failure to the caller.
		return nil, &Error{Vendor: c.vendor, Op: op, Err: err}
	}
	return body, nil
}

func (c *Client) record(op string, err error, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordVendorRequest(c.vendor, op, status, duration)
}
