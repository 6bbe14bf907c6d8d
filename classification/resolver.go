package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"pricebot/ai"
	"pricebot/extractors"
)

// resolverSystemPrompt 폴백 해석의 역할을 고정하는 시스템 프롬프트입니다.
const resolverSystemPrompt = `너는 휴대폰 시세 질문에서 구조화된 필드를 뽑는 도우미다. 반드시 JSON 하나만 출력한다.`

// resolverInstruction 필드 집합과 은어 정규화 예시를 담은 고정 지시문입니다.
const resolverInstruction = `다음 질문에서 아래 필드를 추출해 JSON으로만 답하라.
필드: brand(갤럭시|아이폰), model(모델명), capacity(용량 숫자), telecom(SK|KT|LG), type(번호이동|기기변경)
모르는 필드는 null로 둔다.

정규화 규칙 예시:
- "+", "plus", "플" 표기는 "플러스"로 통일한다 (예: "아이폰16+" -> "아이폰 16 플러스")
- "프맥", "프로맥"은 "프로맥스"로 풀어 쓴다 (예: "아이폰16프맥" -> "아이폰 16 프로맥스")
- "갤스", "갤"은 "갤럭시"로 풀어 쓴다 (예: "갤스25울트라" -> "갤럭시 S25 울트라")
- "번이"는 "번호이동", "기변"은 "기기변경"이다

출력 형식: {"brand": "...", "model": "...", "capacity": "...", "telecom": "...", "type": "..."}

질문: %s`

// Resolver 패턴 추출이 실패한 질문을 외부 텍스트 이해 기능으로 해석하는 폴백입니다.
// 순수 보조 역할이며 실패해도 오류를 전파하지 않습니다.
type Resolver struct {
	client ai.Completer
}

// NewResolver 새로운 폴백 해석기를 생성합니다.
func NewResolver(client ai.Completer) *Resolver {
	return &Resolver{client: client}
}

// resolvedFields 응답 JSON에서 한글/영문 별칭 키를 모두 받는 중간 구조입니다.
// 별칭 키 접근은 이 경계 밖으로 새어 나가지 않습니다.
type resolvedFields map[string]any

// fieldAliases 필드별로 허용하는 응답 키 별칭입니다.
var fieldAliases = map[string][]string{
	"brand":    {"brand", "브랜드", "제조사"},
	"model":    {"model", "모델", "모델명", "기종"},
	"capacity": {"capacity", "용량"},
	"telecom":  {"telecom", "carrier", "통신사"},
	"type":     {"type", "구분", "개통유형", "개통구분"},
}

// Resolve 질문을 텍스트 이해 기능으로 해석해 ParsedQuery를 복원합니다.
// 파싱 실패나 빈 필드 집합이면 resolved=false를 반환하며, 어떤 경우에도
// 오류를 전파하지 않습니다. 호출자는 미해석 결과에 대한 안내 응답을 준비해야 합니다.
func (r *Resolver) Resolve(ctx context.Context, requestID, question string) (ParsedQuery, bool) {
	if r.client == nil {
		return ParsedQuery{OriginalQuestion: question, Scenario: ScenarioInformal}, false
	}

	reply, err := r.client.ChatCompletion(ctx, requestID, resolverSystemPrompt, fmt.Sprintf(resolverInstruction, question))
	if err != nil {
		log.Printf("[%s] Fallback resolution failed: %v", requestID, err)
		return ParsedQuery{OriginalQuestion: question, Scenario: ScenarioInformal}, false
	}

	fields, err := parseReply(reply)
	if err != nil {
		log.Printf("[%s] Failed to parse fallback reply: %v", requestID, err)
		return ParsedQuery{OriginalQuestion: question, Scenario: ScenarioInformal}, false
	}

	query := ParsedQuery{
		OriginalQuestion: question,
		Brand:            normalizeBrand(fields.get("brand")),
		Model:            fields.get("model"),
		Capacity:         normalizeCapacity(fields.get("capacity")),
		Telecom:          detectTelecom(Fold(fields.get("telecom"))),
		Type:             detectType(Fold(fields.get("type"))),
	}

	if query.Brand == "" && query.Model == "" && query.Capacity == "" && query.Telecom == "" && query.Type == "" {
		log.Printf("[%s] Fallback reply contained no usable fields", requestID)
		return ParsedQuery{OriginalQuestion: question, Scenario: ScenarioInformal}, false
	}

	query.Scenario = ScenarioForFields(query)
	return query, true
}

// parseReply 코드 펜스 등 부수 포맷을 걷어내고 JSON 페이로드를 파싱합니다.
func parseReply(reply string) (resolvedFields, error) {
	reply = StripCodeFences(reply)

	// 본문에 설명이 섞여 있어도 첫 JSON 오브젝트만 취한다
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply: %q", truncate(reply, 120))
	}

	var fields resolvedFields
	if err := json.Unmarshal([]byte(reply[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse reply JSON: %w", err)
	}
	return fields, nil
}

// StripCodeFences 응답을 감싼 마크다운 코드 펜스를 제거합니다.
func StripCodeFences(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```json") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimSuffix(reply, "```")
	} else if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```")
		reply = strings.TrimSuffix(reply, "```")
	}
	return strings.TrimSpace(reply)
}

// get 별칭 키들을 순서대로 찾아 문자열 값을 반환합니다.
func (f resolvedFields) get(field string) string {
	for _, key := range fieldAliases[field] {
		value, ok := f[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed != "" && !strings.EqualFold(trimmed, "null") {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// normalizeBrand 응답의 브랜드 표기를 정식 브랜드로 접습니다.
func normalizeBrand(raw string) string {
	return detectBrand(Fold(raw))
}

// normalizeCapacity 응답의 용량 표기에서 숫자만 취합니다.
func normalizeCapacity(raw string) string {
	capacity := extractors.ExtractCapacity(raw)
	if capacity == extractors.CapacityUnspecified {
		return ""
	}
	return capacity
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
