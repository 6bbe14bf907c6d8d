package pricing

import (
	"strconv"

	"pricebot/extractors"
)

// Criteria 레코드 필터 조건입니다. 빈 필드는 제약을 걸지 않습니다.
type Criteria struct {
	ModelNorm string
	Capacity  string
	Telecom   extractors.Telecom
	Type      extractors.TransactionType
}

// Result 필터 결과입니다. 근사 용량으로 대체된 경우 SubstitutedCapacity에
// 대체 용량이 담기며, 포매터는 반드시 대체 사실을 응답에 명시해야 합니다.
type Result struct {
	Records             []extractors.PriceRecord
	SubstitutedCapacity string
}

// Filter 매칭된 모델 식별자와 나머지 조건으로 레코드를 좁힙니다.
//
// 용량 미지정 센티널 레코드는 요청 용량과 무관하게 매칭됩니다. 단일 구성 모델은
// 용량 구분이 없으므로 용량을 지정한 질문에도 노출되어야 하기 때문입니다.
// 요청 용량으로 결과가 없고 해당 모델에 다른 용량이 있으면 수치 차이가 가장
// 작은 용량으로 대체하고 그 사실을 결과에 표시합니다.
func Filter(records []extractors.PriceRecord, c Criteria) Result {
	matched := apply(records, c)
	if len(matched) > 0 || c.Capacity == "" {
		return Result{Records: matched}
	}

	// 용량 제약만 풀어 대체 후보를 찾는다
	relaxed := c
	relaxed.Capacity = ""
	candidates := apply(records, relaxed)
	if len(candidates) == 0 {
		return Result{}
	}

	nearest := nearestCapacity(c.Capacity, candidates)
	if nearest == "" {
		return Result{}
	}

	substituted := c
	substituted.Capacity = nearest
	return Result{
		Records:             apply(records, substituted),
		SubstitutedCapacity: nearest,
	}
}

// apply 조건을 모두 만족하는 레코드만 남깁니다.
// 통신사/채널을 알 수 없는 구역의 레코드는 답변 대상에서 제외합니다.
func apply(records []extractors.PriceRecord, c Criteria) []extractors.PriceRecord {
	var matched []extractors.PriceRecord
	for _, rec := range records {
		if rec.Telecom == extractors.TelecomUnknown || rec.Channel == extractors.ChannelUnknown {
			continue
		}
		if c.ModelNorm != "" && rec.ModelNorm != c.ModelNorm {
			continue
		}
		if c.Capacity != "" && rec.Capacity != c.Capacity && rec.Capacity != extractors.CapacityUnspecified {
			continue
		}
		if c.Telecom != "" && rec.Telecom != c.Telecom {
			continue
		}
		if c.Type != "" && rec.Type != c.Type {
			continue
		}
		matched = append(matched, rec)
	}
	return matched
}

// nearestCapacity 후보 레코드들의 용량 중 요청 용량과 수치 차이가 가장 작은
// 값을 고릅니다. 차이가 같으면 작은 용량을 택합니다.
func nearestCapacity(requested string, candidates []extractors.PriceRecord) string {
	want, err := strconv.Atoi(requested)
	if err != nil {
		return ""
	}

	best := ""
	bestDiff := 0
	bestValue := 0
	for _, rec := range candidates {
		if rec.Capacity == extractors.CapacityUnspecified {
			continue
		}
		value, err := strconv.Atoi(rec.Capacity)
		if err != nil {
			continue
		}
		diff := value - want
		if diff < 0 {
			diff = -diff
		}
		if best == "" || diff < bestDiff || (diff == bestDiff && value < bestValue) {
			best = rec.Capacity
			bestDiff = diff
			bestValue = value
		}
	}
	return best
}
