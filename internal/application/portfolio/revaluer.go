package portfolio

import (
	"context"
	"errors"
	"time"

	"coinfolio-backend/internal/application/holdings"
	"coinfolio-backend/internal/application/valuation"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/infrastructure/lock"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceSource returns USD unit prices for coins. It may omit coins.
type PriceSource interface {
	GetPrices(ctx context.Context, coins []string) (map[string]decimal.Decimal, error)
}

const lockName = "revaluation"

// RevaluationResult describes one revaluation pass.
type RevaluationResult struct {
	Skipped    bool            `json:"skipped"`
	Reason     string          `json:"reason,omitempty"`
	Day        domain.Day      `json:"day"`
	Holdings   int             `json:"holdings"`
	Priced     int             `json:"priced"`
	Snapshots  int             `json:"snapshots"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Revaluer prices every holding from the live source and records today's
// snapshot.
type Revaluer struct {
	Holdings *holdings.Store
	Prices   PriceSource
	Lock     *lock.Redis
	LockTTL  time.Duration
	Location *time.Location
	Now      func() time.Time
}

func (r *Revaluer) now() time.Time {
	t := time.Now()
	if r.Now != nil {
		t = r.Now()
	}
	if r.Location != nil {
		t = t.In(r.Location)
	}
	return t
}

// RevalueAll runs one pass. A missing or failing price source skips the pass
// without touching storage. Only storage failures are returned as errors.
func (r *Revaluer) RevalueAll(ctx context.Context) (*RevaluationResult, error) {
	now := r.now()
	res := &RevaluationResult{Day: domain.DayOf(now), TotalValue: decimal.Zero}

	ttl := r.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	lease, err := r.Lock.Acquire(ctx, lockName, ttl)
	switch {
	case errors.Is(err, lock.ErrHeld):
		return skip(res, "revaluation already running"), nil
	case err != nil:
		log.Warn().Err(err).Msg("revaluation lock unavailable, continuing without it")
	default:
		defer func() {
			if err := lease.Release(context.Background()); err != nil {
				log.Warn().Err(err).Msg("revaluation lock release failed")
			}
		}()
	}

	held, err := r.Holdings.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return skip(res, "no holdings"), nil
	}

	coins := domain.Coins(held)
	prices, err := r.Prices.GetPrices(ctx, coins)
	if err != nil {
		log.Warn().Err(err).Strs("coins", coins).Msg("price source failed, treating as empty")
		prices = nil
	}
	if len(prices) == 0 {
		return skip(res, "no prices available"), nil
	}

	err = r.Holdings.Mutate(ctx, func(tx *gorm.DB, locked []domain.Holding) ([]domain.Holding, error) {
		out := valuation.RecomputePercentages(valuation.RecomputeValues(locked, prices, now))

		var existing []domain.HistorySnapshot
		if err := tx.Where("snap_date = ?", res.Day).Find(&existing).Error; err != nil {
			return nil, err
		}
		snaps := valuation.MergeSnapshot(res.Day, out, existing)
		for i := range snaps {
			if err := tx.Save(&snaps[i]).Error; err != nil {
				return nil, err
			}
		}

		res.Holdings = len(out)
		res.Snapshots = len(snaps)
		res.TotalValue = domain.TotalValue(out)
		for _, h := range out {
			if _, ok := prices[h.Coin]; ok {
				res.Priced++
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("day", string(res.Day)).
		Int("holdings", res.Holdings).
		Int("priced", res.Priced).
		Int("snapshots", res.Snapshots).
		Str("total_usd", res.TotalValue.StringFixed(2)).
		Msg("portfolio revalued")
	return res, nil
}

func skip(res *RevaluationResult, reason string) *RevaluationResult {
	res.Skipped = true
	res.Reason = reason
	log.Warn().Str("day", string(res.Day)).Str("reason", reason).Msg("revaluation skipped")
	return res
}
