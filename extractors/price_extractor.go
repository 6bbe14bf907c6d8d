package extractors

import (
	"strings"

	"pricebot/normalization"
)

// Telecom 통신사 코드입니다.
type Telecom string

const (
	TelecomSK      Telecom = "SK"
	TelecomKT      Telecom = "KT"
	TelecomLG      Telecom = "LG"
	TelecomUnknown Telecom = "UNKNOWN"
)

// TransactionType 개통 구분입니다.
type TransactionType string

const (
	// TypePortIn 번호이동(통신사 변경) 개통입니다.
	TypePortIn TransactionType = "번호이동"
	// TypeUpgrade 기기변경(통신사 유지) 개통입니다.
	TypeUpgrade TransactionType = "기기변경"
)

// Channel 판매 채널입니다.
type Channel string

const (
	ChannelOnline  Channel = "온라인"
	ChannelStore   Channel = "내방"
	ChannelUnknown Channel = "UNKNOWN"
)

// CapacityUnspecified 용량 미지정(단일 구성 모델) 센티널 값입니다.
const CapacityUnspecified = "-"

// ServiceInfo 통신사+채널 조합에 붙는 부가서비스 설명입니다.
type ServiceInfo struct {
	Name     string // 부가서비스명
	Fee      string // 월 요금 (정제된 숫자 문자열, 없으면 빈 문자열)
	Duration string // 의무 유지 기간 설명
	Penalty  string // 미가입 시 위약금 (정제된 숫자 문자열)
}

// PriceRecord 시세표 한 행에서 뽑아낸 모델/용량/통신사/구분/채널 조합 하나의 시세입니다.
type PriceRecord struct {
	ModelRaw  string          // 원본 모델 표시명
	ModelNorm string          // 정규화된 모델 식별자 (매칭 조인 키)
	Capacity  string          // 저장 용량 숫자 문자열 또는 CapacityUnspecified
	Telecom   Telecom         // 통신사 (시트 이름에서 결정)
	Type      TransactionType // 개통 구분 (열 그룹에서 결정)
	Channel   Channel         // 판매 채널 (시트 이름에서 결정)
	Plan      string          // 월 요금제 금액 (정제된 숫자 문자열)
	Price     string          // 할부원금 (정제된 숫자 문자열)
	Services  []ServiceInfo   // 해당 통신사+채널의 부가서비스 목록 (0개 이상)
}

// 시트 열 배치. 한 행이 번호이동/기기변경 레코드를 각각 하나씩 담을 수 있고
// 부가서비스 4개 열이 뒤따른다.
const (
	colPortInModel    = 0
	colPortInCapacity = 1
	colPortInPlan     = 2
	colPortInPrice    = 3

	colUpgradeModel    = 5
	colUpgradeCapacity = 6
	colUpgradePlan     = 7
	colUpgradePrice    = 8

	colServiceName     = 10
	colServiceFee      = 11
	colServiceDuration = 12
	colServicePenalty  = 13
)

// headerRows 각 시트 상단의 머리글 행 수. 데이터는 3행부터 시작한다.
const headerRows = 2

// placeholderValues 부가서비스 셀에서 걸러내는 테스트/빈자리 표시 값입니다.
var placeholderValues = map[string]struct{}{
	"-":    {},
	"x":    {},
	"X":    {},
	"없음":   {},
	"테스트":  {},
	"test": {},
}

// Section 추출기의 입력 구역입니다. sheets.Section과 같은 모양이지만
// 추출기는 소스 패키지에 의존하지 않습니다.
type Section struct {
	Name string
	Rows [][]string
}

// ExtractRecords 이름 붙은 구역들을 PriceRecord 목록으로 펼칩니다.
// 변환만 수행하며 업무 기준의 필터링은 하지 않습니다. 통신사/채널을 알 수 없는
// 구역도 UNKNOWN 센티널로 유지되어 하류에서 제외 여부를 결정합니다.
func ExtractRecords(sections []Section) []PriceRecord {
	var records []PriceRecord
	for _, section := range sections {
		records = append(records, extractSection(section)...)
	}
	return records
}

// extractSection 구역 하나를 레코드 목록으로 변환합니다.
func extractSection(section Section) []PriceRecord {
	telecom := telecomFromName(section.Name)
	channel := channelFromName(section.Name)

	services := extractServices(section.Rows)

	var records []PriceRecord
	for i := headerRows; i < len(section.Rows); i++ {
		row := section.Rows[i]

		if rec, ok := recordFromRow(row, colPortInModel, colPortInCapacity, colPortInPlan, colPortInPrice); ok {
			rec.Telecom = telecom
			rec.Type = TypePortIn
			rec.Channel = channel
			rec.Services = services
			records = append(records, rec)
		}
		if rec, ok := recordFromRow(row, colUpgradeModel, colUpgradeCapacity, colUpgradePlan, colUpgradePrice); ok {
			rec.Telecom = telecom
			rec.Type = TypeUpgrade
			rec.Channel = channel
			rec.Services = services
			records = append(records, rec)
		}
	}
	return records
}

// recordFromRow 지정한 열 그룹에서 레코드 하나를 만들어 봅니다.
// 모델/요금제/할부원금 세 셀이 모두 비어 있지 않을 때만 레코드를 반환합니다.
func recordFromRow(row []string, modelCol, capacityCol, planCol, priceCol int) (PriceRecord, bool) {
	model := strings.TrimSpace(cell(row, modelCol))
	plan := CleanPrice(cell(row, planCol))
	price := CleanPrice(cell(row, priceCol))

	if model == "" || plan == "" || price == "" {
		return PriceRecord{}, false
	}

	return PriceRecord{
		ModelRaw:  model,
		ModelNorm: normalization.Normalize(model),
		Capacity:  ExtractCapacity(cell(row, capacityCol)),
		Plan:      plan,
		Price:     price,
	}, true
}

// extractServices 구역 전체에서 부가서비스 설명을 수집하고
// (이름, 요금, 기간, 위약금) 4중 키로 중복을 제거합니다.
func extractServices(rows [][]string) []ServiceInfo {
	var services []ServiceInfo
	seen := make(map[[4]string]struct{})

	for i := headerRows; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cell(row, colServiceName))
		fee := strings.TrimSpace(cell(row, colServiceFee))
		duration := strings.TrimSpace(cell(row, colServiceDuration))
		penalty := strings.TrimSpace(cell(row, colServicePenalty))

		if name == "" || fee == "" || duration == "" || penalty == "" {
			continue
		}
		if isPlaceholder(name) || isPlaceholder(fee) || isPlaceholder(duration) || isPlaceholder(penalty) {
			continue
		}

		svc := ServiceInfo{
			Name:     name,
			Fee:      CleanPrice(fee),
			Duration: duration,
			Penalty:  CleanPrice(penalty),
		}
		key := [4]string{svc.Name, svc.Fee, svc.Duration, svc.Penalty}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		services = append(services, svc)
	}
	return services
}

// telecomFromName 구역 이름에서 통신사 코드를 판별합니다.
func telecomFromName(name string) Telecom {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "SK"):
		return TelecomSK
	case strings.Contains(upper, "KT"):
		return TelecomKT
	case strings.Contains(upper, "LG"), strings.Contains(name, "엘지"), strings.Contains(name, "유플러스"):
		return TelecomLG
	default:
		return TelecomUnknown
	}
}

// channelFromName 구역 이름에서 판매 채널을 판별합니다.
func channelFromName(name string) Channel {
	switch {
	case strings.Contains(name, "온라인"), strings.Contains(strings.ToLower(name), "online"):
		return ChannelOnline
	case strings.Contains(name, "내방"), strings.Contains(name, "오프라인"), strings.Contains(name, "매장"):
		return ChannelStore
	default:
		return ChannelUnknown
	}
}

// CleanPrice 금액 셀에서 숫자와 앞머리 음수 부호만 남깁니다.
// "1,250,000원", "-50000", "55만" 류의 표기를 허용합니다.
func CleanPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '-' && i == 0 {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "-" {
		return ""
	}
	return cleaned
}

// ExtractCapacity 용량 셀에서 첫 숫자 연속 구간을 추출합니다.
// "256GB", "256", 빈 셀 모두 허용하며 숫자가 없으면 미지정 센티널을 반환합니다.
func ExtractCapacity(raw string) string {
	raw = strings.TrimSpace(raw)
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return raw[start:i]
		}
	}
	if start >= 0 {
		return raw[start:]
	}
	return CapacityUnspecified
}

// isPlaceholder 부가서비스 셀 값이 자리표시자인지 확인합니다.
func isPlaceholder(value string) bool {
	_, ok := placeholderValues[strings.TrimSpace(value)]
	return ok
}

// cell 범위를 벗어난 열 접근을 빈 문자열로 처리합니다.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
