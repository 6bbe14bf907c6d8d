package classification

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"pricebot/extractors"
)

// Scenario 질문 구체성 시나리오 태그입니다.
type Scenario string

const (
	// ScenarioComparison 비교 질문. 응답 형태가 달라지므로 다른 모든 시나리오에 우선합니다.
	ScenarioComparison Scenario = "comparison"
	// ScenarioInformal 축약어/은어/붙여쓰기 등 패턴 추출이 어려운 질문. 폴백 해석기로 보냅니다.
	ScenarioInformal Scenario = "informal"
	// ScenarioFullCondition 모델+용량+통신사+구분이 모두 있는 질문.
	ScenarioFullCondition Scenario = "full_condition"
	// ScenarioModelCapacityTelecom 구분만 빠진 질문.
	ScenarioModelCapacityTelecom Scenario = "model_capacity_telecom"
	// ScenarioModelCapacity 통신사/구분 없이 모델+용량만 있는 질문.
	ScenarioModelCapacity Scenario = "model_capacity"
	// ScenarioModelOnly 모델만 알 수 있는 질문.
	ScenarioModelOnly Scenario = "model_only"
)

// 브랜드 식별자입니다.
const (
	BrandGalaxy = "갤럭시"
	BrandIPhone = "아이폰"
)

// ParsedQuery 자유 텍스트 질문에서 추출한 구조화 질의입니다.
// 요청마다 새로 생성되며 생성 후 변경하지 않습니다. 빈 문자열은 미추출을 뜻합니다.
type ParsedQuery struct {
	Brand            string
	Model            string
	Capacity         string
	Telecom          extractors.Telecom
	Type             extractors.TransactionType
	Scenario         Scenario
	OriginalQuestion string
}

// minCapacity 이 값 미만의 숫자 토큰은 저장 용량으로 보지 않습니다.
// "아이폰 16"의 16 같은 모델 숫자를 용량으로 오인하지 않기 위한 컷오프입니다.
const minCapacity = 64

// comparisonKeywords 비교 질문 어휘입니다.
var comparisonKeywords = []string{"더 싸", "더 저렴", "어디가 싸", "어디가 저렴", "vs", "비교", "차이"}

// informalKeywords 폴백 해석기로 보내는 축약어/은어 목록입니다.
var informalKeywords = []string{"갤놀", "갤스", "아엑", "프맥", "프로맥", "엘지폰", "갤탭", "자급", "사전예약", "성지"}

// brandKeywords 브랜드 키워드와 음역 표기입니다.
var brandKeywords = map[string][]string{
	BrandGalaxy: {"갤럭시", "galaxy", "겔럭시", "갤"},
	BrandIPhone: {"아이폰", "iphone", "아폰"},
}

// telecomKeywords 통신사 키워드입니다. 별칭은 정식 코드로 접습니다.
var telecomKeywords = map[extractors.Telecom][]string{
	extractors.TelecomSK: {"skt", "sk", "에스케이"},
	extractors.TelecomKT: {"kt", "케이티"},
	extractors.TelecomLG: {"lgu+", "lgu", "lg", "엘지", "유플러스", "유플"},
}

// typeKeywords 개통 구분 키워드 쌍입니다. 각 쌍은 하나의 정식 라벨로 접힙니다.
var typeKeywords = map[extractors.TransactionType][]string{
	extractors.TypePortIn:  {"번호이동", "번이"},
	extractors.TypeUpgrade: {"기기변경", "기변"},
}

// questionSuffixes 모델 문자열에서 걷어내는 질문 꼬리말입니다.
var questionSuffixes = []string{
	"얼마예요", "얼마에요", "얼마인가요", "얼마야", "얼마", "가격", "시세",
	"알려주세요", "알려줘", "궁금해요", "궁금", "주세요", "인가요", "해주세요",
}

// Classifier 자유 텍스트 질문을 시나리오와 구조화 필드로 분류합니다.
type Classifier struct{}

// NewClassifier 새로운 질문 분류기를 생성합니다.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify 질문을 분류해 ParsedQuery를 반환합니다.
//
// 시나리오 우선순위는 다음 순서로 고정되어 있습니다(설계 결정):
//  1. 비교 — 응답 형태 자체가 달라지므로 다른 추출 결과와 무관하게 최우선
//  2. 비정형 — 일부 필드가 우연히 맞았더라도 폴백 해석기로 보낸다
//  3. 전체 조건 → 4. 모델+용량+통신사 → 5. 모델+용량 → 6. 모델만
func (c *Classifier) Classify(question string) ParsedQuery {
	folded := Fold(question)

	query := ParsedQuery{
		OriginalQuestion: question,
		Brand:            detectBrand(folded),
		Capacity:         detectCapacity(folded),
		Telecom:          detectTelecom(folded),
		Type:             detectType(folded),
	}
	query.Model = extractModelText(folded, query.Capacity)

	switch {
	case containsAny(folded, comparisonKeywords):
		query.Scenario = ScenarioComparison
	case isInformal(folded, query):
		query.Scenario = ScenarioInformal
	default:
		query.Scenario = ScenarioForFields(query)
	}
	return query
}

// ScenarioForFields 추출된 필드 조합에서 구체성 시나리오를 결정합니다.
// 폴백 해석기가 복원한 필드에도 동일한 사다리를 적용합니다.
func ScenarioForFields(q ParsedQuery) Scenario {
	hasModel := q.Brand != "" || q.Model != ""
	switch {
	case hasModel && q.Capacity != "" && q.Telecom != "" && q.Type != "":
		return ScenarioFullCondition
	case hasModel && q.Capacity != "" && q.Telecom != "":
		return ScenarioModelCapacityTelecom
	case hasModel && q.Capacity != "":
		return ScenarioModelCapacity
	default:
		return ScenarioModelOnly
	}
}

// Fold 질문을 NFKC 정규화 후 소문자화합니다. 모든 키워드 매칭 전에 적용합니다.
func Fold(question string) string {
	return strings.ToLower(norm.NFKC.String(question))
}

// detectBrand 브랜드 키워드를 탐지합니다. 미탐지 시 빈 문자열을 반환합니다.
func detectBrand(folded string) string {
	for brand, keywords := range brandKeywords {
		if containsAny(folded, keywords) {
			return brand
		}
	}
	return ""
}

// detectCapacity 질문에서 용량 후보 중 가장 큰 숫자 토큰을 고릅니다.
// 저장 용량과 무관한 숫자(모델 숫자 등)는 대체로 실제 용량보다 작으므로
// "가장 큰 값" 휴리스틱을 쓰되, 컷오프 미만은 용량으로 보지 않습니다.
func detectCapacity(folded string) string {
	best := 0
	for _, token := range numericTokens(folded) {
		value, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if value >= minCapacity && value > best {
			best = value
		}
	}
	if best == 0 {
		return ""
	}
	return strconv.Itoa(best)
}

// detectTelecom 통신사 키워드를 탐지해 정식 코드로 접습니다.
func detectTelecom(folded string) extractors.Telecom {
	// LG 계열 별칭을 먼저 본다. "LGU+" 안의 "u"가 다른 매칭을 방해하지 않도록
	// 구체적인 키워드부터 검사한다.
	for _, tel := range []extractors.Telecom{extractors.TelecomLG, extractors.TelecomSK, extractors.TelecomKT} {
		if containsAny(folded, telecomKeywords[tel]) {
			return tel
		}
	}
	return ""
}

// detectType 개통 구분 키워드를 탐지해 정식 라벨로 접습니다.
func detectType(folded string) extractors.TransactionType {
	for typ, keywords := range typeKeywords {
		if containsAny(folded, keywords) {
			return typ
		}
	}
	return ""
}

// isInformal 패턴 추출이 어려운 질문인지 판정합니다.
func isInformal(folded string, q ParsedQuery) bool {
	if containsAny(folded, informalKeywords) {
		return true
	}
	// 띄어쓰기 없이 길게 붙여 쓴 질문
	if !strings.ContainsRune(folded, ' ') && len([]rune(folded)) > 10 {
		return true
	}
	// 브랜드도 다른 필드도 전혀 안 잡히면 패턴 추출 실패로 본다
	if q.Brand == "" && q.Capacity == "" && q.Telecom == "" && q.Type == "" {
		return true
	}
	return false
}

// extractModelText 질문에서 통신사/구분/용량/질문 꼬리말을 걷어내 모델 질의 문자열을 만듭니다.
// 매칭은 퍼지 매처가 하므로 결과가 거칠어도 됩니다.
func extractModelText(folded, capacity string) string {
	text := folded
	for _, keywords := range telecomKeywords {
		for _, kw := range keywords {
			text = strings.ReplaceAll(text, kw, " ")
		}
	}
	for _, keywords := range typeKeywords {
		for _, kw := range keywords {
			text = strings.ReplaceAll(text, kw, " ")
		}
	}
	for _, suffix := range questionSuffixes {
		text = strings.ReplaceAll(text, suffix, " ")
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '?' || r == '!' || r == ',' || r == '.'
	})
	var kept []string
	for _, f := range fields {
		// 선택된 용량 토큰과 용량 단위는 모델 문자열에서 제외한다
		if f == capacity || f == capacity+"gb" || f == capacity+"g" || f == capacity+"기가" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// numericTokens 문자열에서 연속된 숫자 구간들을 추출합니다.
func numericTokens(s string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// containsAny 부분 문자열 목록 중 하나라도 포함하는지 확인합니다.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
