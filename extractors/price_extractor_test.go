package extractors

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricebot/normalization"
)

// sampleSection 머리글 2행 뒤에 데이터가 오는 표준 구역 픽스처입니다.
func sampleSection() Section {
	return Section{
		Name: "SK 온라인",
		Rows: [][]string{
			{"번호이동", "", "", "", "", "기기변경", "", "", "", "", "부가서비스"},
			{"모델", "용량", "요금제", "할부원금", "", "모델", "용량", "요금제", "할부원금", "", "이름", "요금", "기간", "위약금"},
			{"갤럭시 S25", "256GB", "55,000원", "550,000원", "", "갤럭시 S25", "256GB", "55,000원", "700,000원", "", "우주패스", "9,900", "3개월", "29,700"},
			{"갤럭시 S25", "512", "55,000원", "700,000원", "", "", "", "", "", "", "우주패스", "9,900", "3개월", "29,700"},
			{"아이폰 16", "", "69,000원", "1,250,000원", "", "아이폰 16", "", "69,000원", "1,350,000원"},
		},
	}
}

// TestExtractRecords_Basic 행 하나가 번호이동/기기변경 레코드 둘로 펼쳐져야 합니다.
func TestExtractRecords_Basic(t *testing.T) {
	records := ExtractRecords([]Section{sampleSection()})
	require.Len(t, records, 5)

	first := records[0]
	assert.Equal(t, "갤럭시 S25", first.ModelRaw)
	assert.Equal(t, "갤럭시s25", first.ModelNorm)
	assert.Equal(t, "256", first.Capacity)
	assert.Equal(t, TelecomSK, first.Telecom)
	assert.Equal(t, TypePortIn, first.Type)
	assert.Equal(t, ChannelOnline, first.Channel)
	assert.Equal(t, "55000", first.Plan)
	assert.Equal(t, "550000", first.Price)

	second := records[1]
	assert.Equal(t, TypeUpgrade, second.Type)
	assert.Equal(t, "700000", second.Price)
}

// TestExtractRecords_ModelNormPurity 모든 레코드의 ModelNorm은
// normalization.Normalize(ModelRaw)와 일치해야 합니다.
func TestExtractRecords_ModelNormPurity(t *testing.T) {
	records := ExtractRecords([]Section{sampleSection()})
	for _, rec := range records {
		assert.Equal(t, normalization.Normalize(rec.ModelRaw), rec.ModelNorm)
	}
}

// TestExtractRecords_CapacitySentinel 용량은 숫자 문자열이거나 센티널이어야 하며
// 빈 문자열이 되어서는 안 됩니다.
func TestExtractRecords_CapacitySentinel(t *testing.T) {
	records := ExtractRecords([]Section{sampleSection()})
	for _, rec := range records {
		assert.NotEmpty(t, rec.Capacity)
	}

	// 빈 용량 셀의 아이폰 16 레코드는 센티널을 갖는다
	var found bool
	for _, rec := range records {
		if rec.ModelRaw == "아이폰 16" {
			assert.Equal(t, CapacityUnspecified, rec.Capacity)
			found = true
		}
	}
	assert.True(t, found)
}

// TestExtractRecords_Idempotent 동일 입력의 재실행은 동일한 레코드 집합을 내야 합니다.
func TestExtractRecords_Idempotent(t *testing.T) {
	a := ExtractRecords([]Section{sampleSection()})
	b := ExtractRecords([]Section{sampleSection()})

	keyOf := func(r PriceRecord) string {
		return r.ModelNorm + "|" + r.Capacity + "|" + string(r.Telecom) + "|" + string(r.Type) + "|" + string(r.Channel) + "|" + r.Plan + "|" + r.Price
	}
	keysA := make([]string, 0, len(a))
	keysB := make([]string, 0, len(b))
	for _, r := range a {
		keysA = append(keysA, keyOf(r))
	}
	for _, r := range b {
		keysB = append(keysB, keyOf(r))
	}
	sort.Strings(keysA)
	sort.Strings(keysB)
	assert.Equal(t, keysA, keysB)
}

// TestExtractRecords_IncompleteRows 모델/요금제/할부원금 중 하나라도 비면
// 해당 열 그룹에서 레코드가 나오면 안 됩니다.
func TestExtractRecords_IncompleteRows(t *testing.T) {
	section := Section{
		Name: "KT 내방",
		Rows: [][]string{
			{}, {},
			{"갤럭시 S25", "256", "", "550,000원"},          // 요금제 없음
			{"", "256", "55,000원", "550,000원"},           // 모델 없음
			{"갤럭시 S25", "256", "55,000원", ""},           // 할부원금 없음
			{"갤럭시 S25", "256", "55,000원", "550,000원"},   // 정상
		},
	}
	records := ExtractRecords([]Section{section})
	require.Len(t, records, 1)
	assert.Equal(t, TelecomKT, records[0].Telecom)
	assert.Equal(t, ChannelStore, records[0].Channel)
}

// TestExtractRecords_UnknownSection 통신사를 알 수 없는 구역도 버리지 않고
// UNKNOWN 센티널로 유지해야 합니다.
func TestExtractRecords_UnknownSection(t *testing.T) {
	section := Section{
		Name: "참고자료",
		Rows: [][]string{
			{}, {},
			{"갤럭시 S25", "256", "55,000원", "550,000원"},
		},
	}
	records := ExtractRecords([]Section{section})
	require.Len(t, records, 1)
	assert.Equal(t, TelecomUnknown, records[0].Telecom)
	assert.Equal(t, ChannelUnknown, records[0].Channel)
}

// TestExtractServices_Dedup 부가서비스는 구역 내에서 4중 키로 중복 제거되어야 합니다.
func TestExtractServices_Dedup(t *testing.T) {
	records := ExtractRecords([]Section{sampleSection()})
	require.NotEmpty(t, records)
	require.Len(t, records[0].Services, 1)

	svc := records[0].Services[0]
	assert.Equal(t, "우주패스", svc.Name)
	assert.Equal(t, "9900", svc.Fee)
	assert.Equal(t, "3개월", svc.Duration)
	assert.Equal(t, "29700", svc.Penalty)
}

// TestExtractServices_Placeholder 자리표시자 값이 섞인 부가서비스 행은 무시해야 합니다.
func TestExtractServices_Placeholder(t *testing.T) {
	section := Section{
		Name: "LG 온라인",
		Rows: [][]string{
			{}, {},
			{"갤럭시 S25", "256", "55,000원", "550,000원", "", "", "", "", "", "", "테스트", "9,900", "3개월", "29,700"},
			{"갤럭시 S25", "512", "55,000원", "650,000원", "", "", "", "", "", "", "유독", "9,900", "3개월", "-"},
		},
	}
	records := ExtractRecords([]Section{section})
	require.NotEmpty(t, records)
	assert.Empty(t, records[0].Services)
}

// TestCleanPrice 금액 정제 규칙을 검증합니다.
func TestCleanPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1,250,000원", "1250000"},
		{"55,000", "55000"},
		{"-50000", "-50000"},
		{"₩700,000", "700000"},
		{"-", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanPrice(tt.raw), "raw=%q", tt.raw)
	}
}

// TestExtractCapacity 용량 추출 규칙을 검증합니다.
func TestExtractCapacity(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"256GB", "256"},
		{"256", "256"},
		{" 512 GB ", "512"},
		{"", CapacityUnspecified},
		{"미정", CapacityUnspecified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractCapacity(tt.raw), "raw=%q", tt.raw)
	}
}
