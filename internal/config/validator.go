package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate 구성의 정합성을 검사합니다.
func (c *Config) Validate() error {
	var errors []string

	// 포트 검증
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	// 시세표 출처 검증
	switch c.SourceKind {
	case SourceGoogle:
		if c.SpreadsheetID == "" {
			errors = append(errors, "spreadsheet id is required for google source")
		}
		if c.SheetsAPIKey == "" {
			errors = append(errors, "sheets api key is required for google source")
		}
	case SourceXLSX:
		if c.XLSXPath == "" {
			errors = append(errors, "xlsx path is required for xlsx source")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid source kind: %s (valid: %s, %s)",
			c.SourceKind, SourceGoogle, SourceXLSX))
	}

	// 타임아웃 검증
	if c.FetchTimeout < time.Second {
		errors = append(errors, "fetch timeout must be at least 1 second")
	}
	if c.AITimeout < time.Second {
		errors = append(errors, "AI timeout must be at least 1 second")
	}

	// 캐시 TTL 검증. 0은 캐시 비활성화를 뜻하므로 허용한다
	if c.CatalogCacheTTL < 0 {
		errors = append(errors, "catalog cache TTL cannot be negative")
	}

	// 응답 정책 검증
	if c.MaxModelList < 1 {
		errors = append(errors, "max model list must be at least 1")
	}

	// AI 모델 검증
	if c.AIAPIKey != "" && c.AIModel == "" {
		errors = append(errors, "AI model is required when AI key is set")
	}

	// 로그 레벨 검증
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if c.LogLevel != "" {
		valid := false
		logLevelUpper := strings.ToUpper(c.LogLevel)
		for _, level := range validLogLevels {
			if logLevelUpper == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetDefaults 기본값으로 채운 구성을 반환합니다.
func GetDefaults() *Config {
	return &Config{
		Port:            "8080",
		SourceKind:      SourceXLSX,
		XLSXPath:        "price.xlsx",
		FetchTimeout:    15 * time.Second,
		AIModel:         "gpt-4o-mini",
		AITimeout:       30 * time.Second,
		CatalogCacheTTL: 5 * time.Minute,
		MaxModelList:    10,
		LogLevel:        "INFO",
	}
}
