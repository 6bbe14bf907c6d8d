package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize 모델 표시명을 정규화된 식별자로 변환합니다.
// 소문자화, 공백 제거 후 영숫자와 한글 이외의 문자를 모두 제거합니다.
// modelNorm은 반드시 이 함수로만 생성해야 합니다.
func Normalize(raw string) string {
	folded := norm.NFKC.String(raw)
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			// 한글(Hangul)과 영숫자만 통과, 그 외 기호/공백은 제거
			if r <= unicode.MaxASCII || unicode.Is(unicode.Hangul, r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// ModelMatcher 추출된 모델 문자열을 카탈로그의 모델 식별자와 매칭하는 유사도 매처입니다.
type ModelMatcher struct{}

// NewModelMatcher 새로운 모델 매처를 생성합니다.
func NewModelMatcher() *ModelMatcher {
	return &ModelMatcher{}
}

// BestMatch 질의 문자열과 가장 유사한 후보 식별자를 반환합니다.
// Dice 계수(문자 바이그램 중복도)로 순위를 매기며, 동점이면 입력 순서가
// 빠른 후보가 우선합니다. 후보가 비어 있으면 빈 문자열과 0을 반환합니다.
func (m *ModelMatcher) BestMatch(query string, candidates []string) (string, float64) {
	if len(candidates) == 0 {
		return "", 0
	}

	best := candidates[0]
	bestScore := m.DiceCoefficient(query, candidates[0])
	for _, candidate := range candidates[1:] {
		score := m.DiceCoefficient(query, candidate)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore
}

// DiceCoefficient 두 문자열의 문자 바이그램 기반 Dice 계수를 계산합니다.
// 결과는 0.0(불일치) ~ 1.0(일치) 범위입니다.
func (m *ModelMatcher) DiceCoefficient(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	grams1 := bigrams(s1)
	grams2 := bigrams(s2)

	if len(grams1) == 0 && len(grams2) == 0 {
		return 1.0
	}
	if len(grams1) == 0 || len(grams2) == 0 {
		return 0.0
	}

	intersection := 0
	for gram, count1 := range grams1 {
		if count2, ok := grams2[gram]; ok {
			if count1 < count2 {
				intersection += count1
			} else {
				intersection += count2
			}
		}
	}

	total1 := 0
	for _, c := range grams1 {
		total1 += c
	}
	total2 := 0
	for _, c := range grams2 {
		total2 += c
	}

	return 2.0 * float64(intersection) / float64(total1+total2)
}

// bigrams 문자열에서 문자 바이그램 빈도 맵을 생성합니다.
// 길이가 2 미만이면 문자열 자체를 하나의 그램으로 취급합니다.
func bigrams(text string) map[string]int {
	grams := make(map[string]int)

	runes := []rune(text)
	if len(runes) < 2 {
		if len(runes) > 0 {
			grams[string(runes)] = 1
		}
		return grams
	}

	for i := 0; i <= len(runes)-2; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}
