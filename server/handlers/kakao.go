package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pricebot/server/middleware"
	"pricebot/server/services"
)

// KakaoHandler 카카오 챗봇 스킬 웹훅 핸들러입니다.
// 스킬 서버는 어떤 입력에도 200을 기대하므로 오류도 안내 문구로 바꿔 응답합니다.
type KakaoHandler struct {
	service *services.PriceService
}

// NewKakaoHandler 새로운 카카오 스킬 핸들러를 생성합니다.
func NewKakaoHandler(service *services.PriceService) *KakaoHandler {
	return &KakaoHandler{service: service}
}

// skillPayload 스킬 요청에서 사용자 발화만 읽습니다.
type skillPayload struct {
	UserRequest struct {
		Utterance string `json:"utterance"`
	} `json:"userRequest"`
}

// skillResponse 카카오 스킬 v2.0 simpleText 응답입니다.
type skillResponse struct {
	Version  string        `json:"version"`
	Template skillTemplate `json:"template"`
}

type skillTemplate struct {
	Outputs []skillOutput `json:"outputs"`
}

type skillOutput struct {
	SimpleText skillSimpleText `json:"simpleText"`
}

type skillSimpleText struct {
	Text string `json:"text"`
}

// Handle 발화를 파이프라인에 넘기고 답변을 simpleText로 감싸 반환합니다.
func (h *KakaoHandler) Handle(c *gin.Context) {
	reqID := middleware.GetRequestIDFromGin(c)

	var payload skillPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.UserRequest.Utterance == "" {
		log.Printf("[KakaoHandler] Malformed skill payload [RequestID: %s]", reqID)
		h.respond(c, "질문을 이해하지 못했어요. 모델명과 용량, 통신사를 적어 다시 물어봐 주세요.")
		return
	}

	answer, err := h.service.Answer(c.Request.Context(), reqID, payload.UserRequest.Utterance)
	if err != nil {
		log.Printf("[KakaoHandler] Answer failed: %v [RequestID: %s]", err, reqID)
		h.respond(c, "시세를 불러오지 못했어요. 잠시 후 다시 물어봐 주세요.")
		return
	}

	h.respond(c, answer.Text)
}

// respond 항상 200으로 simpleText 응답을 보냅니다.
func (h *KakaoHandler) respond(c *gin.Context, text string) {
	c.JSON(http.StatusOK, skillResponse{
		Version: "2.0",
		Template: skillTemplate{
			Outputs: []skillOutput{{SimpleText: skillSimpleText{Text: text}}},
		},
	})
}
