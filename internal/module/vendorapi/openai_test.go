package vendorapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysterie/creditgate/internal/shared/config"
)

func newOpenAIClient(baseURL string) *OpenAIClient {
	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		ChatModel:  "gpt-4o",
		ImageModel: "dall-e-3",
		Timeout:    5 * time.Second,
	}, nil)
}

func TestOpenAIClient_ChatCompletion(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"a marketing plan"}}]}`))
	}))
	defer server.Close()

	client := newOpenAIClient(server.URL)
	text, err := client.ChatCompletion(context.Background(), "write me a plan", 1000)
	require.NoError(t, err)
	assert.Equal(t, "a marketing plan", text)

	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.EqualValues(t, 1000, gotBody["max_tokens"])
}

func TestOpenAIClient_AnalyzeImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content []map[string]any `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		require.Len(t, body.Messages[0].Content, 2)
		assert.Equal(t, "text", body.Messages[0].Content[0]["type"])
		assert.Equal(t, "image_url", body.Messages[0].Content[1]["type"])

		w.Write([]byte(`{"choices":[{"message":{"content":"three walls, one door"}}]}`))
	}))
	defer server.Close()

	client := newOpenAIClient(server.URL)
	analysis, err := client.AnalyzeImage(context.Background(), "describe the room", "aGVsbG8=", 700)
	require.NoError(t, err)
	assert.Equal(t, "three walls, one door", analysis)
}

func TestOpenAIClient_GenerateImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		w.Write([]byte(`{"data":[{"url":"https://img.example/out.png"}]}`))
	}))
	defer server.Close()

	client := newOpenAIClient(server.URL)
	url, err := client.GenerateImage(context.Background(), "a cozy living room")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/out.png", url)
}

func TestOpenAIClient_VendorFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := newOpenAIClient(server.URL)
	_, err := client.ChatCompletion(context.Background(), "hi", 10)
	require.Error(t, err)

	ve, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "openai", ve.Vendor)
	assert.Equal(t, http.StatusTooManyRequests, ve.Status)
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newOpenAIClient(server.URL)
	_, err := client.ChatCompletion(context.Background(), "hi", 10)
	require.Error(t, err)

	_, ok := AsError(err)
	assert.True(t, ok)
}
