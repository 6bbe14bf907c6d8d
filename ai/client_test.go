package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChatCompletion_Success 정상 응답에서 본문 텍스트를 추출해야 합니다.
func TestChatCompletion_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"model\":\"갤럭시 S25\"}"}}]}`))
	}))
	defer ts.Close()

	c := NewClient(ClientOptions{BaseURL: ts.URL, APIKey: "test-key", Model: "test-model"})
	got, err := c.ChatCompletion(context.Background(), "req-1", "system", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"model":"갤럭시 S25"}`, got)
}

// TestChatCompletion_RetryOn500 5xx 응답은 재시도 후 성공해야 합니다.
func TestChatCompletion_RetryOn500(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer ts.Close()

	c := NewClient(ClientOptions{BaseURL: ts.URL, APIKey: "k", RatePerSec: 100})
	c.retryConfig.InitialDelay = time.Millisecond

	got, err := c.ChatCompletion(context.Background(), "req-2", "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

// TestChatCompletion_NoRetryOn400 4xx는 재시도 없이 실패해야 합니다.
func TestChatCompletion_NoRetryOn400(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient(ClientOptions{BaseURL: ts.URL, APIKey: "k", RatePerSec: 100})
	_, err := c.ChatCompletion(context.Background(), "req-3", "s", "u")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

// TestChatCompletion_EmptyChoices choices가 비면 오류를 반환해야 합니다.
func TestChatCompletion_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	c := NewClient(ClientOptions{BaseURL: ts.URL, APIKey: "k"})
	_, err := c.ChatCompletion(context.Background(), "req-4", "s", "u")
	assert.Error(t, err)
}
