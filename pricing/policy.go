package pricing

// Policy 원본 구현들마다 달랐던 휴리스틱을 모아 둔 설정 표입니다.
// 분류기나 필터에 분기를 복제하는 대신 여기서 조정합니다.
type Policy struct {
	// MaxModelList 모델 전용 응답에 나열하는 최대 모델 수입니다.
	MaxModelList int
	// PriorityKeywords 목록이 한도를 넘을 때 우선 노출할 모델 키워드입니다.
	PriorityKeywords []string
}

// DefaultPolicy 기본 정책을 반환합니다.
func DefaultPolicy() Policy {
	return Policy{
		MaxModelList:     10,
		PriorityKeywords: []string{"울트라", "프로", "맥스", "플립", "폴드", "플러스"},
	}
}
