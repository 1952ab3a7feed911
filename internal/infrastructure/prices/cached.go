package prices

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CacheKey is the Redis hash holding coin -> USD price.
const CacheKey = "prices:usd"

// Cached serves prices from a Redis hash and asks Next only for coins the
// cache lacks. The hash expires as a whole after TTL. Redis failures fall
// through to Next.
type Cached struct {
	Next  Source
	Redis *redis.Client
	TTL   time.Duration
}

func NewCached(next Source, rdb *redis.Client, ttl time.Duration) *Cached {
	return &Cached{Next: next, Redis: rdb, TTL: ttl}
}

func (c *Cached) GetPrices(ctx context.Context, coins []string) (map[string]decimal.Decimal, error) {
	if c.Redis == nil || len(coins) == 0 {
		return c.Next.GetPrices(ctx, coins)
	}

	out := make(map[string]decimal.Decimal, len(coins))
	missing := coins
	vals, err := c.Redis.HMGet(ctx, CacheKey, coins...).Result()
	if err != nil {
		log.Warn().Err(err).Msg("price cache read failed")
	} else {
		missing = missing[:0:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, coins[i])
				continue
			}
			p, err := decimal.NewFromString(s)
			if err != nil {
				missing = append(missing, coins[i])
				continue
			}
			out[coins[i]] = p
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := c.Next.GetPrices(ctx, missing)
	if err != nil {
		if len(out) > 0 {
			log.Warn().Err(err).Int("cached", len(out)).Msg("price source failed, serving cached subset")
			return out, nil
		}
		return nil, err
	}
	if len(fresh) == 0 {
		return out, nil
	}

	// Only the first fill of the hash sets the expiry.
	firstFill := len(out) == 0
	fields := make(map[string]interface{}, len(fresh))
	for coin, p := range fresh {
		out[coin] = p
		fields[coin] = p.String()
	}
	pipe := c.Redis.TxPipeline()
	pipe.HSet(ctx, CacheKey, fields)
	if c.TTL > 0 && firstFill {
		pipe.Expire(ctx, CacheKey, c.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("price cache write failed")
	}
	return out, nil
}
