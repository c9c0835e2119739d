package vendorapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/mysterie/creditgate/internal/shared/config"
	"github.com/mysterie/creditgate/internal/shared/metrics"
)

// FluxClient calls the Flux image-generation API. Generation is a job:
// submit, then poll until the result is ready.
type FluxClient struct {
	client       *Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewFluxClient creates a new Flux vendor client.
func NewFluxClient(cfg *config.FluxConfig, m *metrics.Metrics) *FluxClient {
	return &FluxClient{
		client:       NewClient("flux", cfg.Timeout, m),
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
	}
}

// Name returns the vendor name.
func (c *FluxClient) Name() string {
	return "flux"
}

func (c *FluxClient) headers() map[string]string {
	return map[string]string{
		"accept": "application/json",
		"x-key":  c.apiKey,
	}
}

// GenerateImage submits a generation job and polls until the sample URL
// is ready. The poll loop is bounded by the configured timeout; a job
// that never becomes ready is a vendor failure, not an infinite block.
func (c *FluxClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"prompt": prompt,
		"width":  1024,
		"height": 768,
	}

	body, err := c.client.PostJSON(ctx, "submit", c.baseURL+"/flux-dev", c.headers(), payload)
	if err != nil {
		return "", err
	}

	var submitted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &submitted); err != nil {
		return "", &Error{Vendor: "flux", Op: "submit", Err: fmt.Errorf("decode response: %w", err)}
	}
	if submitted.ID == "" {
		return "", &Error{Vendor: "flux", Op: "submit", Err: fmt.Errorf("no job id in response")}
	}

	return c.pollResult(ctx, submitted.ID)
}

func (c *FluxClient) pollResult(ctx context.Context, jobID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	resultURL := c.baseURL + "/get_result?id=" + url.QueryEscape(jobID)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		body, err := c.client.Get(ctx, "poll", resultURL, c.headers())
		if err != nil {
			if ctx.Err() != nil {
				return "", &Error{Vendor: "flux", Op: "poll", Err: fmt.Errorf("job %s: %w", jobID, ctx.Err())}
			}
			return "", err
		}

		var result struct {
			Status string `json:"status"`
			Result struct {
				Sample string `json:"sample"`
			} `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return "", &Error{Vendor: "flux", Op: "poll", Err: fmt.Errorf("decode response: %w", err)}
		}

		switch result.Status {
		case "Ready":
			if result.Result.Sample == "" {
				return "", &Error{Vendor: "flux", Op: "poll", Err: fmt.Errorf("ready job %s has no sample", jobID)}
			}
			return result.Result.Sample, nil
		case "Error", "Content Moderated", "Request Moderated", "Task not found":
			return "", &Error{Vendor: "flux", Op: "poll", Err: fmt.Errorf("job %s failed: %s", jobID, result.Status)}
		}

		select {
		case <-ctx.Done():
			return "", &Error{Vendor: "flux", Op: "poll", Err: fmt.Errorf("job %s: %w", jobID, ctx.Err())}
		case <-ticker.C:
		}
	}
}

// Compile-time check
var _ ImageGenerator = (*FluxClient)(nil)
