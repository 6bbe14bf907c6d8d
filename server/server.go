package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pricebot/internal/config"
	"pricebot/server/handlers"
	"pricebot/server/middleware"
	"pricebot/server/services"
)

// Server 시세 질문 HTTP 서버입니다.
type Server struct {
	config     *config.Config
	service    *services.PriceService
	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer 라우트와 미들웨어를 구성한 서버를 생성합니다.
func NewServer(cfg *config.Config, service *services.PriceService) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(middleware.GinRecoveryMiddleware())
	engine.Use(middleware.GinRequestIDMiddleware())
	engine.Use(middleware.GinLoggerMiddleware())
	engine.Use(middleware.GinCORSMiddleware())
	engine.Use(middleware.GinGzipMiddleware())

	s := &Server{
		config:  cfg,
		service: service,
		engine:  engine,
	}
	s.registerRoutes()
	return s
}

// registerRoutes 엔드포인트를 등록합니다.
func (s *Server) registerRoutes() {
	questionHandler := handlers.NewQuestionHandler(s.service)
	kakaoHandler := handlers.NewKakaoHandler(s.service)

	api := s.engine.Group("/api")
	{
		api.GET("/question", questionHandler.Handle)
		api.POST("/question", questionHandler.Handle)
		api.POST("/kakao/skill", kakaoHandler.Handle)
	}

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler 테스트에서 쓸 수 있도록 HTTP 핸들러를 노출합니다.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start HTTP 서버를 시작합니다. 서버가 닫힐 때까지 블록됩니다.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting HTTP server on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown 서버를 정상 종료합니다.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Printf("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
