package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-todo/internal/model"
	"smart-todo/internal/suggest"
)

func chatServer(t *testing.T, status int, content string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		resp := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() suggest.Request {
	return suggest.Request{
		Title:       "Prepare presentation",
		Description: "Create slides",
		ContextEntries: []model.ContextEntry{
			{ID: 1, Content: "Monday meeting moved to 10am", SourceType: model.SourceEmail, CreatedAt: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)},
		},
	}
}

func TestChatProviderDecodesJSONContent(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, http.StatusOK, `{"priority_score": 0.8, "deadline": "2025-07-07T12:00:00Z", "category": "Work"}`, &seen)
	p := NewChatProvider(ChatConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})

	raw, err := p.Infer(context.Background(), testRequest())
	require.NoError(t, err)

	s, err := suggest.Normalize(raw)
	require.NoError(t, err)
	require.NotNil(t, s.PriorityScore)
	assert.Equal(t, 0.8, *s.PriorityScore)
	require.NotNil(t, s.CategoryName)
	assert.Equal(t, "Work", *s.CategoryName)

	assert.Equal(t, DefaultGroqModel, seen.Model)
	assert.Equal(t, 500, seen.MaxTokens)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Contains(t, seen.Messages[1].Content, "Prepare presentation")
	assert.Contains(t, seen.Messages[1].Content, "Monday meeting moved to 10am")
	assert.Contains(t, seen.Messages[1].Content, `"sentiment":0`)
}

func TestChatProviderStripsCodeFence(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```json\n{\"description\": \"Slides for Monday\"}\n```", nil)
	p := NewChatProvider(ChatConfig{APIKey: "test-key", BaseURL: srv.URL})

	raw, err := p.Infer(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"description": "Slides for Monday"}, raw)
}

func TestChatProviderNonJSONContentIsMalformed(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "I think this task is quite urgent.", nil)
	p := NewChatProvider(ChatConfig{APIKey: "test-key", BaseURL: srv.URL})

	raw, err := p.Infer(context.Background(), testRequest())
	require.NoError(t, err)

	_, err = suggest.Normalize(raw)
	assert.ErrorIs(t, err, suggest.ErrMalformedSuggestion)
}

func TestChatProviderHTTPError(t *testing.T) {
	srv := chatServer(t, http.StatusServiceUnavailable, "", nil)
	p := NewChatProvider(ChatConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Infer(context.Background(), testRequest())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "overloaded")
}

func TestFallbackProvider(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	secondary := suggest.ProviderFunc(func(context.Context, suggest.Request) (any, error) {
		return map[string]any{"priority_score": 0.3}, nil
	})
	p := &FallbackProvider{
		Primary:   NewChatProvider(ChatConfig{APIKey: "test-key", BaseURL: srv.URL}),
		Secondary: secondary,
	}

	raw, err := p.Infer(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"priority_score": 0.3}, raw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Infer(ctx, testRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeContent(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1.0}, decodeContent(` {"a": 1} `))
	assert.Equal(t, []any{"x"}, decodeContent(`["x"]`))
	assert.Equal(t, "plain words", decodeContent("plain words"))
	assert.Equal(t, map[string]any{"b": true}, decodeContent("```\n{\"b\": true}\n```"))
}
