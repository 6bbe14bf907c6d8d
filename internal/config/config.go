package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// 시세표 출처 종류입니다.
const (
	SourceGoogle = "google"
	SourceXLSX   = "xlsx"
)

// Config 서버 구성입니다. 환경 변수에서 읽어옵니다.
type Config struct {
	// 서버
	Port string

	// 시세표 출처
	SourceKind    string
	SpreadsheetID string
	SheetsAPIKey  string
	SheetsBaseURL string
	XLSXPath      string
	FetchTimeout  time.Duration

	// AI 보조 해석
	AIAPIKey  string
	AIModel   string
	AIBaseURL string
	AITimeout time.Duration

	// 카탈로그 캐시. 0이면 캐시를 끕니다.
	CatalogCacheTTL time.Duration

	// 응답 정책
	MaxModelList int

	// 로깅
	LogLevel string
}

// LoadConfig 환경 변수에서 구성을 읽고 검증합니다.
func LoadConfig() (*Config, error) {
	config := &Config{
		Port: getEnv("SERVER_PORT", "8080"),

		SourceKind:    getEnv("SOURCE_KIND", SourceGoogle),
		SpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsAPIKey:  os.Getenv("SHEETS_API_KEY"),
		SheetsBaseURL: os.Getenv("SHEETS_BASE_URL"),
		XLSXPath:      getEnv("PRICE_XLSX_PATH", "price.xlsx"),
		FetchTimeout:  getEnvDuration("FETCH_TIMEOUT", 15*time.Second),

		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   getEnv("AI_MODEL", "gpt-4o-mini"),
		AIBaseURL: os.Getenv("AI_BASE_URL"),
		AITimeout: getEnvDuration("AI_TIMEOUT", 30*time.Second),

		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		MaxModelList: getEnvInt("MAX_MODEL_LIST", 10),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// AIEnabled AI 보조 해석에 필요한 키가 있는지 알려줍니다.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

// getEnv 환경 변수를 읽거나 기본값을 반환합니다.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 환경 변수를 int로 읽거나 기본값을 반환합니다.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration 환경 변수를 Duration으로 읽거나 기본값을 반환합니다.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
