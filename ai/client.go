package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RetryConfig 재시도 동작 설정입니다.
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig 기본 재시도 설정을 반환합니다.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Completer 텍스트 이해 기능의 최소 표면입니다. 테스트에서 가짜 구현으로 대체합니다.
type Completer interface {
	// ChatCompletion 시스템/사용자 프롬프트를 보내고 응답 본문 텍스트를 반환합니다.
	ChatCompletion(ctx context.Context, requestID, systemPrompt, userPrompt string) (string, error)
}

// Client OpenAI 호환 chat completions API 클라이언트입니다.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	retryConfig RetryConfig
	limiter     *rate.Limiter
}

// ClientOptions Client 생성 옵션입니다.
type ClientOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	RatePerSec int
}

// NewClient 새로운 AI 클라이언트를 생성합니다.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ratePerSec := opts.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 2
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		retryConfig: DefaultRetryConfig(),
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// chatRequest chat completions 요청 본문입니다.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse chat completions 응답 본문입니다.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ChatCompletion 시스템/사용자 프롬프트로 완성 요청을 보내고 본문 텍스트를 반환합니다.
// 5xx/429는 지수 백오프로 재시도하고, 그 외 4xx는 즉시 실패합니다.
func (c *Client) ChatCompletion(ctx context.Context, requestID, systemPrompt, userPrompt string) (string, error) {
	startTime := time.Now()
	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[%s] Retry attempt %d/%d after %v", requestID, attempt, c.retryConfig.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retryConfig.BackoffMultiplier)
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		req.Header.Set("X-Request-ID", requestID)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Printf("[%s] Completion request failed: %v", requestID, lastErr)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = fmt.Errorf("failed to read response: %w", err)
				continue
			}

			var completion chatResponse
			if err := json.Unmarshal(body, &completion); err != nil {
				lastErr = fmt.Errorf("failed to decode response: %w", err)
				log.Printf("[%s] Failed to decode completion response: %v", requestID, lastErr)
				continue
			}
			if completion.Error != nil {
				return "", fmt.Errorf("api error: %s", completion.Error.Message)
			}
			if len(completion.Choices) == 0 {
				return "", fmt.Errorf("empty choices in completion response")
			}

			log.Printf("[%s] Completion succeeded (duration: %v)", requestID, time.Since(startTime))
			return completion.Choices[0].Message.Content, nil
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			log.Printf("[%s] Status %d, will retry", requestID, resp.StatusCode)
			continue
		}

		return "", fmt.Errorf("client error: %d", resp.StatusCode)
	}

	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}
