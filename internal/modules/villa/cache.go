// README: Read-through Redis cache over the villa store; serves nightly rates to the pricing engine.
package villa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"villaquote/internal/modules/pricing"
)

const ratesKeyPrefix = "villa:%s:rates"

// Source is where cache misses are resolved; *Store implements it.
type Source interface {
	Get(ctx context.Context, id string) (*Villa, error)
}

type Cache struct {
	redis  *redis.Client
	source Source
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(redis *redis.Client, source Source, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{redis: redis, source: source, ttl: ttl, logger: logger}
}

// Rates implements pricing.VillaCatalog. A Redis failure degrades to the source.
func (c *Cache) Rates(ctx context.Context, villaID string) (pricing.VillaRates, bool, error) {
	key := ratesKey(villaID)
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rates pricing.VillaRates
		if err := json.Unmarshal(raw, &rates); err == nil {
			return rates, true, nil
		}
		c.logger.Warn("dropping corrupt villa cache entry", zap.String("villa_id", villaID))
	case err != redis.Nil:
		c.logger.Warn("villa cache read failed", zap.String("villa_id", villaID), zap.Error(err))
	}

	v, err := c.source.Get(ctx, villaID)
	if errors.Is(err, ErrNotFound) {
		return pricing.VillaRates{}, false, nil
	}
	if err != nil {
		return pricing.VillaRates{}, false, fmt.Errorf("load villa %s: %w", villaID, err)
	}

	if raw, err := json.Marshal(v.Rates); err == nil {
		if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("villa cache write failed", zap.String("villa_id", villaID), zap.Error(err))
		}
	}
	return v.Rates, true, nil
}

// Invalidate drops the cached rates so the next lookup re-reads the store.
func (c *Cache) Invalidate(ctx context.Context, villaID string) error {
	return c.redis.Del(ctx, ratesKey(villaID)).Err()
}

func ratesKey(villaID string) string {
	return fmt.Sprintf(ratesKeyPrefix, villaID)
}
