package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pricebot/extractors"
)

const catalogKey = "catalog"

// CatalogCache 추출된 시세 레코드를 TTL 동안 보관합니다.
// 같은 시세표를 질문마다 다시 내려받지 않기 위한 캐시입니다.
// TTL이 0 이하이면 캐시가 비활성화되어 항상 miss를 반환합니다.
type CatalogCache struct {
	store *gocache.Cache
}

// NewCatalogCache 새로운 카탈로그 캐시를 생성합니다.
func NewCatalogCache(ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		return &CatalogCache{}
	}
	return &CatalogCache{
		store: gocache.New(ttl, 2*ttl),
	}
}

// Get 캐시된 레코드를 반환합니다. 없거나 만료되었으면 false입니다.
func (c *CatalogCache) Get() ([]extractors.PriceRecord, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	value, ok := c.store.Get(catalogKey)
	if !ok {
		return nil, false
	}
	records, ok := value.([]extractors.PriceRecord)
	return records, ok
}

// Set 레코드를 캐시에 저장합니다. 캐시가 꺼져 있으면 아무 일도 하지 않습니다.
func (c *CatalogCache) Set(records []extractors.PriceRecord) {
	if c == nil || c.store == nil {
		return
	}
	c.store.Set(catalogKey, records, gocache.DefaultExpiration)
}

// Invalidate 캐시를 비웁니다. 시세표가 갱신되었을 때 호출합니다.
func (c *CatalogCache) Invalidate() {
	if c == nil || c.store == nil {
		return
	}
	c.store.Delete(catalogKey)
}
