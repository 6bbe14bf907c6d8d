package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
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
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// GoogleClient Google Sheets values API에서 시세표를 읽는 클라이언트입니다.
// API 키 기반 읽기 전용 접근만 사용합니다.
type GoogleClient struct {
	baseURL       string
	apiKey        string
	spreadsheetID string
	httpClient    *http.Client
	retryConfig   RetryConfig
	limiter       *rate.Limiter
}

// GoogleClientOptions GoogleClient 생성 옵션입니다.
type GoogleClientOptions struct {
	BaseURL       string
	APIKey        string
	SpreadsheetID string
	Timeout       time.Duration
	RatePerSec    int
}

// NewGoogleClient 새로운 Google Sheets 클라이언트를 생성합니다.
func NewGoogleClient(opts GoogleClientOptions) *GoogleClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://sheets.googleapis.com/v4"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ratePerSec := opts.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 5
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	return &GoogleClient{
		baseURL:       baseURL,
		apiKey:        opts.APIKey,
		spreadsheetID: opts.SpreadsheetID,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		retryConfig: DefaultRetryConfig(),
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// spreadsheetMeta 스프레드시트 메타데이터 응답에서 시트 이름만 추출하기 위한 구조입니다.
type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// valuesResponse values.get 응답입니다.
// 셀 값은 문자열 또는 숫자로 내려오므로 디코딩 후 문자열로 통일합니다.
type valuesResponse struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// stringifyCells 셀 값을 문자열 그리드로 변환합니다. 숫자는 소수점 꼬리 없이 표기합니다.
func stringifyCells(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case string:
				cells[j] = v
			case float64:
				cells[j] = strconv.FormatFloat(v, 'f', -1, 64)
			case nil:
				cells[j] = ""
			default:
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows
}

// SectionNames 스프레드시트의 시트 이름 목록을 반환합니다.
func (c *GoogleClient) SectionNames(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s?fields=sheets.properties.title&key=%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.QueryEscape(c.apiKey))

	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var meta spreadsheetMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode spreadsheet metadata: %w", err)
	}

	names := make([]string, 0, len(meta.Sheets))
	for _, sheet := range meta.Sheets {
		if sheet.Properties.Title != "" {
			names = append(names, sheet.Properties.Title)
		}
	}
	return names, nil
}

// Rows 지정한 시트의 전체 셀 데이터를 반환합니다.
func (c *GoogleClient) Rows(ctx context.Context, section string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?key=%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(section), url.QueryEscape(c.apiKey))

	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var values valuesResponse
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, fmt.Errorf("failed to decode values for %q: %w", section, err)
	}
	return stringifyCells(values.Values), nil
}

// getWithRetry GET 요청을 재시도 정책에 따라 수행합니다.
// 5xx와 429는 재시도하고 그 외 4xx는 즉시 실패합니다.
func (c *GoogleClient) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Sheets] Retry attempt %d/%d after %v", attempt, c.retryConfig.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retryConfig.BackoffMultiplier)
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Printf("[Sheets] Request failed: %v", lastErr)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = fmt.Errorf("failed to read response: %w", err)
				continue
			}
			return body, nil
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			log.Printf("[Sheets] Status %d, will retry", resp.StatusCode)
			continue
		}

		// 4xx는 설정 오류일 가능성이 높으므로 재시도하지 않는다
		return nil, fmt.Errorf("client error: %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("all retry attempts failed: %w", lastErr)
}
