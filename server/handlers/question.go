package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pricebot/server/errors"
	"pricebot/server/middleware"
	"pricebot/server/services"
)

// QuestionHandler 일반 질문 엔드포인트 핸들러입니다.
type QuestionHandler struct {
	service *services.PriceService
}

// NewQuestionHandler 새로운 질문 핸들러를 생성합니다.
func NewQuestionHandler(service *services.PriceService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// questionRequest POST 본문의 질문 형식입니다.
type questionRequest struct {
	Question string `json:"question"`
}

// Handle GET은 q 쿼리 파라미터, POST는 JSON 본문에서 질문을 읽습니다.
func (h *QuestionHandler) Handle(c *gin.Context) {
	reqID := middleware.GetRequestIDFromGin(c)

	question := c.Query("q")
	if question == "" && c.Request.Method == http.MethodPost {
		var req questionRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			question = req.Question
		}
	}

	if question == "" {
		respondError(c, apperrors.NewValidationError(
			"질문을 q 파라미터나 JSON 본문의 question 필드로 보내주세요.", nil))
		return
	}

	answer, err := h.service.Answer(c.Request.Context(), reqID, question)
	if err != nil {
		log.Printf("[QuestionHandler] Answer failed: %v [RequestID: %s]", err, reqID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question": question,
		"scenario": answer.Scenario,
		"answer":   answer.Text,
	})
}

// respondError AppError를 HTTP 응답으로 바꿉니다.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.StatusCode(), gin.H{
		"error":      true,
		"message":    appErr.UserMessage(),
		"request_id": middleware.GetRequestIDFromGin(c),
	})
}
