package pkg

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// OwnerCache 缓存 community -> owner。owner 创建后不再变化，只需在社区删除时失效
type OwnerCache struct {
	c *cache.Cache
}

func NewOwnerCache(ttl time.Duration) *OwnerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OwnerCache{c: cache.New(ttl, 2*ttl)}
}

func (o *OwnerCache) Owner(communityID string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o.c.Get(communityID)
	if !ok {
		return "", false
	}
	owner, ok := v.(string)
	return owner, ok
}

func (o *OwnerCache) Remember(communityID, ownerID string) {
	if o == nil {
		return
	}
	o.c.SetDefault(communityID, ownerID)
}

func (o *OwnerCache) Forget(communityID string) {
	if o == nil {
		return
	}
	o.c.Delete(communityID)
}
