package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
	"ubot-platform/internal/infra/metrics"
)

var _ repository.OwnerRepository = (*ownerRepoCacheDecorator)(nil)

// ownerRepoCacheDecorator caches owner lookups; voucher inspection reads the
// owner name on every call.
type ownerRepoCacheDecorator struct {
	inner repository.OwnerRepository
	cache RedisClient
	ttl   time.Duration
}

func NewOwnerRepoCacheDecorator(inner repository.OwnerRepository, cache RedisClient, ttl time.Duration) repository.OwnerRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ownerRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func ownerKey(id string) string { return fmt.Sprintf("owner:id:%s", id) }

func (d *ownerRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, o *model.Owner) error {
	_ = d.cache.Del(ctx, ownerKey(o.ID))
	return d.inner.Save(ctx, tx, o)
}

func (d *ownerRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Owner, error) {
	key := ownerKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var o model.Owner
		if json.Unmarshal([]byte(val), &o) == nil {
			metrics.IncCacheRequest("owner", "hit")
			return &o, nil
		}
	} else if !errors.Is(err, Nil) {
		metrics.IncCacheRequest("owner", "error")
	}

	metrics.IncCacheRequest("owner", "miss")
	o, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if o != nil {
		if b, err := json.Marshal(o); err == nil {
			_ = d.cache.Set(ctx, key, string(b), d.ttl)
		}
	}
	return o, nil
}
