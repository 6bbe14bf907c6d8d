package services

import (
	"context"
	"log"
	"time"

	"pricebot/classification"
	"pricebot/extractors"
	"pricebot/internal/cache"
	"pricebot/normalization"
	"pricebot/pricing"
	apperrors "pricebot/server/errors"
	"pricebot/sheets"
)

// Answer 질문 하나에 대한 파이프라인 결과입니다.
type Answer struct {
	Scenario classification.Scenario
	Text     string
}

// PriceService 질문을 받아 시세 답변을 만드는 파이프라인입니다.
// 시세표 조회 → 레코드 추출 → 질문 분류 → 모델 매칭 → 필터 → 렌더링 순서로
// 진행하며 요청 간에 공유하는 가변 상태는 카탈로그 캐시뿐입니다.
type PriceService struct {
	source       sheets.Source
	catalogCache *cache.CatalogCache
	classifier   *classification.Classifier
	resolver     *classification.Resolver
	matcher      *normalization.ModelMatcher
	formatter    *pricing.Formatter
	fetchTimeout time.Duration
}

// NewPriceService 새로운 시세 서비스를 생성합니다.
// resolver는 nil일 수 있으며 그 경우 AI 보조 해석 없이 동작합니다.
func NewPriceService(
	source sheets.Source,
	catalogCache *cache.CatalogCache,
	resolver *classification.Resolver,
	formatter *pricing.Formatter,
	fetchTimeout time.Duration,
) *PriceService {
	return &PriceService{
		source:       source,
		catalogCache: catalogCache,
		classifier:   classification.NewClassifier(),
		resolver:     resolver,
		matcher:      normalization.NewModelMatcher(),
		formatter:    formatter,
		fetchTimeout: fetchTimeout,
	}
}

// Answer 자연어 질문에 대한 시세 답변을 만듭니다.
// 조건에 맞는 시세가 없는 것은 오류가 아니라 미발견 안내 응답입니다.
func (s *PriceService) Answer(ctx context.Context, requestID, question string) (*Answer, error) {
	if question == "" {
		return nil, apperrors.NewValidationError("질문을 입력해 주세요.", nil)
	}

	parsed := s.classifier.Classify(question)

	// 분류 실패 시에만 AI 보조 해석을 시도한다
	if parsed.Scenario == classification.ScenarioInformal && s.resolver != nil {
		if resolved, ok := s.resolver.Resolve(ctx, requestID, question); ok {
			log.Printf("[PriceService] Resolved informal question: scenario=%s model=%q [RequestID: %s]",
				resolved.Scenario, resolved.Model, requestID)
			parsed = resolved
		}
	}

	// 비교 질문과 미해석 질문은 카탈로그 없이 안내 템플릿으로 답한다
	if parsed.Scenario == classification.ScenarioComparison || parsed.Scenario == classification.ScenarioInformal {
		return &Answer{Scenario: parsed.Scenario, Text: s.formatter.Guidance()}, nil
	}

	records, err := s.catalog(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if parsed.Scenario == classification.ScenarioModelOnly {
		return &Answer{
			Scenario: parsed.Scenario,
			Text:     s.formatter.ModelList(records, parsed.Model),
		}, nil
	}

	modelNorm := s.matchModel(parsed.Model, records)
	if modelNorm == "" {
		return &Answer{Scenario: parsed.Scenario, Text: s.formatter.NotFound()}, nil
	}

	result := pricing.Filter(records, pricing.Criteria{
		ModelNorm: modelNorm,
		Capacity:  parsed.Capacity,
		Telecom:   parsed.Telecom,
		Type:      parsed.Type,
	})
	return &Answer{
		Scenario: parsed.Scenario,
		Text:     s.formatter.Breakdown(result, parsed.Capacity),
	}, nil
}

// catalog 시세표를 내려받아 레코드로 추출합니다. TTL 안에서는 캐시를 씁니다.
func (s *PriceService) catalog(ctx context.Context, requestID string) ([]extractors.PriceRecord, error) {
	if records, ok := s.catalogCache.Get(); ok {
		return records, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	sections, err := sheets.FetchAll(fetchCtx, s.source)
	if err != nil {
		log.Printf("[PriceService] Failed to fetch price sheet: %v [RequestID: %s]", err, requestID)
		return nil, apperrors.NewUpstreamError("failed to fetch price sheet", err)
	}

	records := extractors.ExtractRecords(convertSections(sections))
	log.Printf("[PriceService] Extracted %d records from %d sections [RequestID: %s]",
		len(records), len(sections), requestID)

	s.catalogCache.Set(records)
	return records, nil
}

// matchModel 질문의 모델 텍스트를 카탈로그의 정규화 모델 식별자로 매칭합니다.
func (s *PriceService) matchModel(modelText string, records []extractors.PriceRecord) string {
	candidates := distinctModels(records)
	if len(candidates) == 0 {
		return ""
	}

	query := normalization.Normalize(modelText)
	if query == "" {
		return ""
	}

	best, _ := s.matcher.BestMatch(query, candidates)
	return best
}

// convertSections 출처 계층의 시트를 추출기 입력으로 바꿉니다.
func convertSections(sections []sheets.Section) []extractors.Section {
	converted := make([]extractors.Section, 0, len(sections))
	for _, sec := range sections {
		converted = append(converted, extractors.Section{
			Name: sec.Name,
			Rows: sec.Rows,
		})
	}
	return converted
}

// distinctModels 레코드들의 정규화 모델 식별자를 처음 등장 순서대로 모읍니다.
func distinctModels(records []extractors.PriceRecord) []string {
	seen := make(map[string]bool)
	var models []string
	for _, rec := range records {
		if rec.ModelNorm == "" || seen[rec.ModelNorm] {
			continue
		}
		seen[rec.ModelNorm] = true
		models = append(models, rec.ModelNorm)
	}
	return models
}
