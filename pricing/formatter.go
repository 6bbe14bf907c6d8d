package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pricebot/extractors"
	"pricebot/normalization"
)

// GuidanceMessage 비교 질문과 미해석 질문에 쓰는 고정 안내 템플릿입니다.
// 비교 질문은 추측으로 답하지 않고 조건을 명시해 다시 묻도록 안내합니다.
const GuidanceMessage = `조건을 조금 더 구체적으로 알려주시면 정확한 시세를 안내해 드릴 수 있어요.

아래 다섯 가지를 함께 적어 주세요.
1. 모델명 (예: 갤럭시 S25, 아이폰 16 프로)
2. 용량 (예: 256, 512)
3. 통신사 (SK / KT / LG)
4. 개통 구분 (번호이동 / 기기변경)
5. 구매 방식 (온라인 / 내방)

예시: "갤럭시 S25 256 SK 번호이동 온라인 얼마예요?"`

// telecomOrder 응답에서 통신사를 나열하는 고정 순서입니다.
var telecomOrder = []extractors.Telecom{extractors.TelecomSK, extractors.TelecomKT, extractors.TelecomLG}

// channelOrder 응답에서 채널을 나열하는 고정 순서입니다.
var channelOrder = []extractors.Channel{extractors.ChannelOnline, extractors.ChannelStore}

// typeOrder 응답에서 개통 구분을 나열하는 고정 순서입니다.
var typeOrder = []extractors.TransactionType{extractors.TypePortIn, extractors.TypeUpgrade}

// Formatter 필터링된 레코드를 사람이 읽는 시세 답변으로 렌더링합니다.
type Formatter struct {
	policy  Policy
	printer *message.Printer
}

// NewFormatter 새로운 응답 포매터를 생성합니다.
func NewFormatter(policy Policy) *Formatter {
	if policy.MaxModelList <= 0 {
		policy = DefaultPolicy()
	}
	return &Formatter{
		policy:  policy,
		printer: message.NewPrinter(language.Korean),
	}
}

// ModelOption 모델 전용 응답의 항목 하나입니다.
type ModelOption struct {
	Display    string
	Capacities []string
}

// Guidance 고정 안내 템플릿을 반환합니다. 카탈로그 내용과 무관합니다.
func (f *Formatter) Guidance() string {
	return GuidanceMessage
}

// NotFound 조건에 맞는 시세가 없을 때의 정상 분기 응답입니다. 오류가 아닙니다.
func (f *Formatter) NotFound() string {
	return "조건에 맞는 시세를 찾지 못했어요. 모델명과 용량, 통신사를 다시 확인해 주세요."
}

// ModelList 키워드에 해당하는 모델 목록과 용량 안내를 렌더링합니다.
// 목록이 정책 한도를 넘으면 우선 키워드 모델부터 한도까지만 노출합니다.
func (f *Formatter) ModelList(records []extractors.PriceRecord, keyword string) string {
	options := collectModels(records, keyword)
	if len(options) == 0 {
		return f.NotFound()
	}
	options = f.trimModels(options)

	var b strings.Builder
	fmt.Fprintf(&b, "'%s' 관련 모델 시세를 보유하고 있어요.\n\n", strings.TrimSpace(keyword))
	for _, opt := range options {
		if len(opt.Capacities) > 0 {
			fmt.Fprintf(&b, "· %s (%sGB)\n", opt.Display, strings.Join(opt.Capacities, "/"))
		} else {
			fmt.Fprintf(&b, "· %s\n", opt.Display)
		}
	}
	b.WriteString("\n용량까지 알려주시면 통신사별 시세를 안내해 드릴게요. (예: \"")
	b.WriteString(options[0].Display)
	b.WriteString(" 256 얼마예요?\")")
	return b.String()
}

// Breakdown 필터 결과를 통신사 → 채널 → 개통 구분 순으로 묶어 렌더링합니다.
// 질문에서 파악된 필드 수에 따라 남는 그룹 수가 달라질 뿐 렌더링 규칙은 같습니다.
// 근사 용량으로 대체된 결과라면 반드시 대체 사실을 먼저 알립니다.
func (f *Formatter) Breakdown(result Result, requestedCapacity string) string {
	if len(result.Records) == 0 {
		return f.NotFound()
	}

	var b strings.Builder

	first := result.Records[0]
	header := first.ModelRaw
	capacity := displayCapacity(result, requestedCapacity)
	if capacity != "" {
		header += " " + capacity + "GB"
	}
	fmt.Fprintf(&b, "📱 %s 시세 안내\n", header)

	if result.SubstitutedCapacity != "" {
		fmt.Fprintf(&b, "\n요청하신 %sGB 시세가 없어 가장 가까운 %sGB 기준으로 안내드려요.\n",
			requestedCapacity, result.SubstitutedCapacity)
	}

	for _, telecom := range telecomOrder {
		for _, channel := range channelOrder {
			group := filterGroup(result.Records, telecom, channel)
			if len(group) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n[%s %s]\n", telecom, channel)
			for _, typ := range typeOrder {
				for _, rec := range group {
					if rec.Type != typ {
						continue
					}
					f.writeLeaf(&b, rec)
				}
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// writeLeaf 통신사+채널+구분 조합 하나의 시세 블록을 씁니다.
func (f *Formatter) writeLeaf(b *strings.Builder, rec extractors.PriceRecord) {
	fmt.Fprintf(b, "· %s | 할부원금 %s | 요금제 월 %s\n", rec.Type, f.won(rec.Price), f.won(rec.Plan))

	for _, svc := range rec.Services {
		line := "  부가서비스: " + svc.Name
		if svc.Fee != "" {
			line += " 월 " + f.won(svc.Fee)
		}
		if svc.Duration != "" {
			line += " (" + svc.Duration + " 유지)"
		}
		b.WriteString(line + "\n")
	}

	var penalties []string
	for _, svc := range rec.Services {
		if svc.Penalty != "" && svc.Penalty != "0" {
			penalties = append(penalties, svc.Name+" "+f.won(svc.Penalty))
		}
	}
	if len(penalties) > 0 {
		fmt.Fprintf(b, "  미가입 시 위약금: %s\n", strings.Join(penalties, ", "))
	}
}

// won 정제된 금액 문자열을 천 단위 구분 기호가 있는 원화 표기로 바꿉니다.
func (f *Formatter) won(cleaned string) string {
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return cleaned + "원"
	}
	return f.printer.Sprintf("%d원", n)
}

// trimModels 정책 한도를 넘는 목록을 우선 키워드 기준으로 줄입니다.
func (f *Formatter) trimModels(options []ModelOption) []ModelOption {
	if len(options) <= f.policy.MaxModelList {
		return options
	}

	var prioritized []ModelOption
	var rest []ModelOption
	for _, opt := range options {
		if containsKeyword(opt.Display, f.policy.PriorityKeywords) {
			prioritized = append(prioritized, opt)
		} else {
			rest = append(rest, opt)
		}
	}
	merged := append(prioritized, rest...)
	return merged[:f.policy.MaxModelList]
}

// collectModels 키워드와 일치하는 모델을 처음 등장 순서대로 수집합니다.
func collectModels(records []extractors.PriceRecord, keyword string) []ModelOption {
	keyNorm := normalization.Normalize(keyword)

	index := make(map[string]int)
	var options []ModelOption
	for _, rec := range records {
		if rec.Telecom == extractors.TelecomUnknown || rec.Channel == extractors.ChannelUnknown {
			continue
		}
		if keyNorm != "" && !strings.Contains(rec.ModelNorm, keyNorm) {
			continue
		}
		i, ok := index[rec.ModelNorm]
		if !ok {
			index[rec.ModelNorm] = len(options)
			options = append(options, ModelOption{Display: rec.ModelRaw})
			i = len(options) - 1
		}
		if rec.Capacity != extractors.CapacityUnspecified && !contains(options[i].Capacities, rec.Capacity) {
			options[i].Capacities = append(options[i].Capacities, rec.Capacity)
		}
	}
	return options
}

// filterGroup 통신사+채널 그룹의 레코드만 남깁니다.
func filterGroup(records []extractors.PriceRecord, telecom extractors.Telecom, channel extractors.Channel) []extractors.PriceRecord {
	var group []extractors.PriceRecord
	for _, rec := range records {
		if rec.Telecom == telecom && rec.Channel == channel {
			group = append(group, rec)
		}
	}
	return group
}

// displayCapacity 헤더에 표기할 용량을 결정합니다.
func displayCapacity(result Result, requestedCapacity string) string {
	if result.SubstitutedCapacity != "" {
		return result.SubstitutedCapacity
	}
	if requestedCapacity != "" {
		return requestedCapacity
	}
	if c := result.Records[0].Capacity; c != extractors.CapacityUnspecified {
		return c
	}
	return ""
}

func containsKeyword(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
