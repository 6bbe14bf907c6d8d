package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricebot/extractors"
)

func sampleRecords() []extractors.PriceRecord {
	return []extractors.PriceRecord{{
		ModelRaw:  "갤럭시 S25",
		ModelNorm: "갤럭시s25",
		Capacity:  "256",
		Telecom:   extractors.TelecomSK,
		Type:      extractors.TypePortIn,
		Channel:   extractors.ChannelOnline,
		Plan:      "55000",
		Price:     "550000",
	}}
}

// TestCatalogCache_SetGet 저장한 레코드를 TTL 안에서는 그대로 돌려줘야 합니다.
func TestCatalogCache_SetGet(t *testing.T) {
	c := NewCatalogCache(time.Minute)

	_, ok := c.Get()
	assert.False(t, ok)

	c.Set(sampleRecords())
	got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, sampleRecords(), got)
}

// TestCatalogCache_Expiry TTL이 지나면 miss여야 합니다.
func TestCatalogCache_Expiry(t *testing.T) {
	c := NewCatalogCache(10 * time.Millisecond)
	c.Set(sampleRecords())

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get()
	assert.False(t, ok)
}

// TestCatalogCache_Disabled TTL 0은 캐시를 끕니다.
func TestCatalogCache_Disabled(t *testing.T) {
	c := NewCatalogCache(0)
	c.Set(sampleRecords())

	_, ok := c.Get()
	assert.False(t, ok)
}

// TestCatalogCache_Invalidate 무효화 후에는 miss여야 합니다.
func TestCatalogCache_Invalidate(t *testing.T) {
	c := NewCatalogCache(time.Minute)
	c.Set(sampleRecords())
	c.Invalidate()

	_, ok := c.Get()
	assert.False(t, ok)
}
