package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/prompts"
	"github.com/AnthonySaldana/nujob/internal/mocks"
)

type capturedRequest struct {
	Model          string            `json:"model"`
	Temperature    float32           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
	Messages       []json.RawMessage `json:"messages"`
}

func newServer(t *testing.T, content string, seen *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if seen != nil {
			require.NoError(t, json.Unmarshal(body, seen))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
}

func newAdapter(url string) *OpenRouterAdapter {
	cfg := DefaultConfig("test-key", "test-model")
	cfg.BaseURL = url
	cfg.Logger = mocks.NewLogger()
	return NewOpenRouterAdapter(cfg)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("key", "openai/gpt-4o")

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.BaseURL)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-6)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestMapFields(t *testing.T) {
	var seen capturedRequest
	server := newServer(t, `{"formFields":[]}`, &seen)
	defer server.Close()

	req := &entity.MappingRequest{
		Fields:  []entity.DiscoveredField{{ID: "first_name", Label: "First Name", Type: entity.ControlText}},
		Profile: &entity.ApplicantProfile{},
	}
	reply, err := newAdapter(server.URL).MapFields(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, `{"formFields":[]}`, reply)
	assert.Equal(t, "test-model", seen.Model)
	assert.InDelta(t, 0.2, seen.Temperature, 1e-6)
	assert.Equal(t, "json_object", seen.ResponseFormat["type"])
	require.Len(t, seen.Messages, 2)

	var system struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(seen.Messages[0], &system))
	assert.Equal(t, "system", system.Role)
	assert.Equal(t, prompts.MappingSystemPrompt, system.Content)
	assert.Contains(t, string(seen.Messages[1]), "first_name")
}

func TestLocateClick_SendsImage(t *testing.T) {
	var seen capturedRequest
	server := newServer(t, `{"clickPositions":[{"x":0.5,"y":0.5}]}`, &seen)
	defer server.Close()

	img := &entity.ChallengeImage{Data: []byte{0xff, 0xd8, 0xff}, Format: "jpeg", Width: 400, Height: 580}
	reply, err := newAdapter(server.URL).LocateClick(context.Background(), img)
	require.NoError(t, err)

	assert.Contains(t, reply, "clickPositions")
	require.Len(t, seen.Messages, 2)
	user := string(seen.Messages[1])
	assert.Contains(t, user, "data:image/jpeg;base64,/9j/")
	assert.Contains(t, user, "400x580")
	assert.Contains(t, user, `"detail":"high"`)
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[]}`)
	}))
	defer server.Close()

	_, err := newAdapter(server.URL).MapFields(context.Background(), &entity.MappingRequest{})
	assert.ErrorIs(t, err, errNoChoices)
}

func TestComplete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newAdapter(server.URL).MapFields(context.Background(), &entity.MappingRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")
}

func TestComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	adapter := newAdapter(server.URL)
	adapter.timeout = 50 * time.Millisecond

	_, err := adapter.MapFields(context.Background(), &entity.MappingRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
