package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricebot/ai"
	"pricebot/classification"
	"pricebot/internal/cache"
	"pricebot/internal/config"
	"pricebot/pricing"
	"pricebot/server"
	"pricebot/server/services"
	"pricebot/sheets"
)

func main() {
	// .env는 없어도 된다. 환경 변수가 이미 설정된 배포 환경을 위해서다
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	source, err := buildSource(cfg)
	if err != nil {
		log.Fatalf("Failed to build price sheet source: %v", err)
	}

	var resolver *classification.Resolver
	if cfg.AIEnabled() {
		client := ai.NewClient(ai.ClientOptions{
			BaseURL: cfg.AIBaseURL,
			APIKey:  cfg.AIAPIKey,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		})
		resolver = classification.NewResolver(client)
		log.Printf("AI fallback resolver enabled (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI fallback resolver disabled: no API key")
	}

	service := services.NewPriceService(
		source,
		cache.NewCatalogCache(cfg.CatalogCacheTTL),
		resolver,
		pricing.NewFormatter(pricing.Policy{
			MaxModelList:     cfg.MaxModelList,
			PriorityKeywords: pricing.DefaultPolicy().PriorityKeywords,
		}),
		cfg.FetchTimeout,
	)

	srv := server.NewServer(cfg, service)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Price bot listening on port %s (source: %s)", cfg.Port, cfg.SourceKind)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

// buildSource 구성에 따라 시세표 출처를 고릅니다.
func buildSource(cfg *config.Config) (sheets.Source, error) {
	switch cfg.SourceKind {
	case config.SourceGoogle:
		return sheets.NewGoogleClient(sheets.GoogleClientOptions{
			BaseURL:       cfg.SheetsBaseURL,
			APIKey:        cfg.SheetsAPIKey,
			SpreadsheetID: cfg.SpreadsheetID,
		}), nil
	case config.SourceXLSX:
		return sheets.NewXLSXSource(cfg.XLSXPath), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %s", cfg.SourceKind)
	}
}
