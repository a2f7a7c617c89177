// README: Exchange-rate store backed by a Redis hash that an external feeder keeps fresh.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	ratesKey     = "fx:usd"
	updatedAtKey = "fx:usd:updated_at"
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// SetRates replaces the whole rate set atomically.
func (s *Store) SetRates(ctx context.Context, values map[string]decimal.Decimal, at time.Time) error {
	fields := make([]interface{}, 0, len(values)*2)
	for code, rate := range values {
		fields = append(fields, code, rate.String())
	}
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, ratesKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, ratesKey, fields...)
	}
	pipe.Set(ctx, updatedAtKey, at.UTC().Format(time.RFC3339), 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Rates(ctx context.Context) (Rates, error) {
	raw, err := s.redis.HGetAll(ctx, ratesKey).Result()
	if err != nil {
		return Rates{}, err
	}
	out := Rates{Values: make(map[string]decimal.Decimal, len(raw))}
	for code, v := range raw {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return Rates{}, fmt.Errorf("parse rate %s: %w", code, err)
		}
		out.Values[code] = rate
	}

	at, err := s.redis.Get(ctx, updatedAtKey).Result()
	if err == redis.Nil {
		return out, nil
	}
	if err != nil {
		return Rates{}, err
	}
	if out.UpdatedAt, err = time.Parse(time.RFC3339, at); err != nil {
		return Rates{}, err
	}
	return out, nil
}
