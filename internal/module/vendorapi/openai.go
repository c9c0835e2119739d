package vendorapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mysterie/creditgate/internal/shared/config"
	"github.com/mysterie/creditgate/internal/shared/metrics"
)

// OpenAIClient calls the OpenAI chat-completion and image-generation
// endpoints.
type OpenAIClient struct {
	client     *Client
	baseURL    string
	apiKey     string
	chatModel  string
	imageModel string
}

// NewOpenAIClient creates a new OpenAI vendor client.
func NewOpenAIClient(cfg *config.OpenAIConfig, m *metrics.Metrics) *OpenAIClient {
	return &OpenAIClient{
		client:     NewClient("openai", cfg.Timeout, m),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
	}
}

// Name returns the vendor name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

func (c *OpenAIClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion submits a plain-text prompt and returns the completion
// text, bounded by maxTokens.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := map[string]any{
		"model":      c.chatModel,
		"messages":   []chatMessage{{Role: "user", Content: prompt}},
		"max_tokens": maxTokens,
	}
	return c.complete(ctx, "chat", payload)
}

// AnalyzeImage submits a prompt with an inline base64 JPEG and returns
// the completion text.
func (c *OpenAIClient) AnalyzeImage(ctx context.Context, prompt, imageB64 string, maxTokens int) (string, error) {
	content := []map[string]any{
		{"type": "text", "text": prompt},
		{"type": "image_url", "image_url": map[string]string{
			"url": "data:image/jpeg;base64," + imageB64,
		}},
	}
	payload := map[string]any{
		"model":      c.chatModel,
		"messages":   []chatMessage{{Role: "user", Content: content}},
		"max_tokens": maxTokens,
	}
	return c.complete(ctx, "vision", payload)
}

func (c *OpenAIClient) complete(ctx context.Context, op string, payload any) (string, error) {
	body, err := c.client.PostJSON(ctx, op, c.baseURL+"/chat/completions", c.headers(), payload)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Vendor: "openai", Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Vendor: "openai", Op: op, Err: fmt.Errorf("no choices in response")}
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateImage generates one image and returns its ephemeral vendor
// URL. The DALL-E endpoint is synchronous: a single round trip.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.imageModel,
		"prompt": prompt,
		"n":      1,
		"size":   "1024x1024",
	}

	body, err := c.client.PostJSON(ctx, "image", c.baseURL+"/images/generations", c.headers(), payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Vendor: "openai", Op: "image", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", &Error{Vendor: "openai", Op: "image", Err: fmt.Errorf("no image in response")}
	}

	return resp.Data[0].URL, nil
}

// Compile-time check
var _ ImageGenerator = (*OpenAIClient)(nil)
