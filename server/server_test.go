package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricebot/classification"
	"pricebot/internal/cache"
	"pricebot/internal/config"
	"pricebot/pricing"
	"pricebot/server/services"
	"pricebot/sheets"
)

// fakeSource 고정된 시트 데이터를 돌려주는 시세표 출처입니다.
type fakeSource struct {
	sections map[string][][]string
	order    []string
	err      error
}

func (f *fakeSource) SectionNames(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeSource) Rows(ctx context.Context, name string) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sections[name], nil
}

// row 번호이동과 기기변경 레코드를 하나씩 담은 시트 행을 만듭니다.
func row(model, capacity, plan, price, upgPlan, upgPrice string) []string {
	return []string{
		model, capacity, plan, price, "",
		model, capacity, upgPlan, upgPrice, "",
		"", "", "", "",
	}
}

func priceSheet() *fakeSource {
	header := [][]string{
		{"번호이동", "", "", "", "", "기기변경", "", "", "", "", "부가서비스", "", "", ""},
		{"모델", "용량", "요금제", "할부원금", "", "모델", "용량", "요금제", "할부원금", "", "이름", "요금", "기간", "위약금"},
	}
	skOnline := append(append([][]string{}, header...),
		row("갤럭시 S25", "256GB", "55,000", "550,000원", "60,000", "600,000"),
		row("갤럭시 S25", "512GB", "55,000", "700,000원", "60,000", "750,000"),
		row("아이폰 16", "256GB", "59,000", "900,000원", "62,000", "950,000"),
	)
	ktOnline := append(append([][]string{}, header...),
		row("갤럭시 S25", "256GB", "55,000", "570,000원", "60,000", "620,000"),
	)
	return &fakeSource{
		sections: map[string][][]string{
			"SK 온라인": skOnline,
			"KT 온라인": ktOnline,
		},
		order: []string{"SK 온라인", "KT 온라인"},
	}
}

func newTestServer(t *testing.T, source sheets.Source) *Server {
	t.Helper()
	return newTestServerWithResolver(t, source, nil)
}

func newTestServerWithResolver(t *testing.T, source sheets.Source, resolver *classification.Resolver) *Server {
	t.Helper()

	cfg := config.GetDefaults()
	service := services.NewPriceService(
		source,
		cache.NewCatalogCache(time.Minute),
		resolver,
		pricing.NewFormatter(pricing.DefaultPolicy()),
		5*time.Second,
	)
	return NewServer(cfg, service)
}

// fakeCompleter 고정된 응답을 돌려주는 가짜 텍스트 이해 클라이언트입니다.
type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) ChatCompletion(ctx context.Context, requestID, systemPrompt, userPrompt string) (string, error) {
	return f.reply, f.err
}

func askQuestion(t *testing.T, srv *Server, question string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/question?q="+strings.ReplaceAll(question, " ", "+"), nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

// TestQuestion_FullCondition 모든 조건이 주어진 질문은 해당 통신사 시세만 답해야 합니다.
func TestQuestion_FullCondition(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	w, body := askQuestion(t, srv, "갤럭시 S25 256 SK 번호이동 얼마예요?")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "full_condition", body["scenario"])
	answer := body["answer"].(string)
	assert.Contains(t, answer, "[SK 온라인]")
	assert.Contains(t, answer, "550,000원")
	assert.NotContains(t, answer, "KT")
	assert.NotContains(t, answer, "기기변경")
}

// TestQuestion_ModelCapacity 통신사 미지정 질문은 통신사별로 묶어 답해야 합니다.
func TestQuestion_ModelCapacity(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	w, body := askQuestion(t, srv, "갤럭시 S25 256 얼마예요?")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "model_capacity", body["scenario"])
	answer := body["answer"].(string)
	assert.Contains(t, answer, "[SK 온라인]")
	assert.Contains(t, answer, "[KT 온라인]")
	assert.Contains(t, answer, "번호이동")
	assert.Contains(t, answer, "기기변경")
}

// TestQuestion_ModelOnly 모델만 물으면 용량 목록을 안내해야 합니다.
func TestQuestion_ModelOnly(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	w, body := askQuestion(t, srv, "갤럭시 S25 얼마예요?")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "model_only", body["scenario"])
	answer := body["answer"].(string)
	assert.Contains(t, answer, "256/512GB")
	assert.Contains(t, answer, "용량까지 알려주시면")
}

// TestQuestion_Comparison 비교 질문은 카탈로그 없이 안내 템플릿으로 답해야 합니다.
func TestQuestion_Comparison(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	w, body := askQuestion(t, srv, "SK와 KT 중 어디가 더 저렴한가요?")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "comparison", body["scenario"])
	assert.Equal(t, pricing.GuidanceMessage, body["answer"])
}

// TestQuestion_InformalResolved 비정형 질문이 AI 해석으로 복원되면
// 복원된 필드 기준으로 시세를 답해야 합니다.
func TestQuestion_InformalResolved(t *testing.T) {
	resolver := classification.NewResolver(&fakeCompleter{
		reply: `{"brand":"갤럭시","model":"갤럭시 S25","capacity":"256","telecom":"SK","type":"번호이동"}`,
	})
	srv := newTestServerWithResolver(t, priceSheet(), resolver)

	w, body := askQuestion(t, srv, "갤스25 256 번이 얼마?")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "full_condition", body["scenario"])
	assert.Contains(t, body["answer"], "550,000원")
}

// TestQuestion_InformalUnresolved AI 해석까지 실패하면 안내 템플릿이어야 합니다.
func TestQuestion_InformalUnresolved(t *testing.T) {
	resolver := classification.NewResolver(&fakeCompleter{err: errors.New("upstream down")})
	srv := newTestServerWithResolver(t, priceSheet(), resolver)

	w, body := askQuestion(t, srv, "갤스25 256 번이 얼마?")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "informal", body["scenario"])
	assert.Equal(t, pricing.GuidanceMessage, body["answer"])
}

// TestQuestion_PostBody POST JSON 본문으로도 질문할 수 있어야 합니다.
func TestQuestion_PostBody(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	payload, _ := json.Marshal(map[string]string{"question": "갤럭시 S25 256 SK 번호이동 얼마예요?"})
	req := httptest.NewRequest(http.MethodPost, "/api/question", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "full_condition", body["scenario"])
}

// TestQuestion_MissingQuestion 질문이 없으면 400과 사용 안내여야 합니다.
func TestQuestion_MissingQuestion(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	req := httptest.NewRequest(http.MethodGet, "/api/question", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "question")
	assert.NotEmpty(t, body["request_id"])
}

// TestQuestion_UpstreamFailure 시세표 출처 장애는 서버 오류와 일반 사과 문구여야 합니다.
func TestQuestion_UpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &fakeSource{err: errors.New("network down")})

	w, body := askQuestion(t, srv, "갤럭시 S25 256 SK 번호이동 얼마예요?")
	require.Equal(t, http.StatusBadGateway, w.Code)

	message := body["message"].(string)
	assert.Contains(t, message, "시세표를 불러오지 못했어요")
	assert.NotContains(t, message, "network down")
}

// TestKakaoSkill_Answer 카카오 스킬 응답은 simpleText 봉투여야 합니다.
func TestKakaoSkill_Answer(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	payload := `{"userRequest":{"utterance":"갤럭시 S25 256 SK 번호이동 얼마예요?"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/kakao/skill", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Version  string `json:"version"`
		Template struct {
			Outputs []struct {
				SimpleText struct {
					Text string `json:"text"`
				} `json:"simpleText"`
			} `json:"outputs"`
		} `json:"template"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2.0", body.Version)
	require.Len(t, body.Template.Outputs, 1)
	assert.Contains(t, body.Template.Outputs[0].SimpleText.Text, "550,000원")
}

// TestKakaoSkill_Malformed 잘못된 페이로드도 200과 안내 문구여야 합니다.
func TestKakaoSkill_Malformed(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	req := httptest.NewRequest(http.MethodPost, "/api/kakao/skill", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "simpleText")
	assert.Contains(t, w.Body.String(), "다시 물어봐 주세요")
}

// TestKakaoSkill_UpstreamFailure 출처 장애도 스킬에는 항상 200이어야 합니다.
func TestKakaoSkill_UpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &fakeSource{err: errors.New("network down")})

	payload := `{"userRequest":{"utterance":"갤럭시 S25 256 SK 번호이동 얼마예요?"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/kakao/skill", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "잠시 후 다시 물어봐 주세요")
	assert.NotContains(t, w.Body.String(), "network down")
}

// TestHealth 헬스 체크는 상태만 반환합니다.
func TestHealth(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

// TestRequestID 응답에 X-Request-ID 헤더가 붙어야 합니다.
func TestRequestID(t *testing.T) {
	srv := newTestServer(t, priceSheet())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
