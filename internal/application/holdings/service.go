package holdings

import (
	"context"
	"time"

	"coinfolio-backend/internal/application/valuation"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"
	"coinfolio-backend/internal/pkg/constants"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service encapsulates holdings operations.
type Service struct {
	Store           *Store
	ReferencePrices map[string]decimal.Decimal
	Now             func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the current holdings ordered by coin.
func (s *Service) List(ctx context.Context) ([]domain.Holding, error) {
	return s.Store.List(ctx)
}

// Add creates the holding row for a coin not held yet, values it from the
// reference table and recomputes every weight.
func (s *Service) Add(ctx context.Context, coin string, amount decimal.Decimal) (*domain.Holding, error) {
	coin = constants.NormalizeCoin(coin)
	if coin == "" {
		return nil, apperrors.Validation("coin is required")
	}
	if amount.IsNegative() {
		return nil, apperrors.Validation("amount must not be negative for coin %s", coin)
	}

	var created domain.Holding
	err := s.Store.Mutate(ctx, func(tx *gorm.DB, held []domain.Holding) ([]domain.Holding, error) {
		for _, h := range held {
			if h.Coin == coin {
				return nil, apperrors.Validation("holding already exists for coin %s", coin)
			}
		}
		h := domain.Holding{Coin: coin, Amount: amount, UpdatedAt: s.now()}
		if price, ok := s.ReferencePrices[coin]; ok {
			h.ValueUSD = amount.Mul(price).Round(2)
		}
		out := valuation.RecomputePercentages(append(held, h))
		created = out[len(out)-1]
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	// Save filled in the ID on the slice element, re-read for the caller.
	var saved domain.Holding
	if err := s.Store.DB.WithContext(ctx).Where("coin = ?", coin).First(&saved).Error; err != nil {
		log.Warn().Err(err).Str("coin", coin).Msg("holding created but reload failed")
		return &created, nil
	}
	log.Info().Str("coin", coin).Str("amount", amount.String()).Msg("holding created")
	return &saved, nil
}

// View is the API shape of a holding.
type View struct {
	Coin       string          `json:"coin"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Value      decimal.Decimal `json:"value"`
}

func NewView(h domain.Holding) View {
	return View{Coin: h.Coin, Amount: h.Amount, Percentage: h.Percentage, Value: h.ValueUSD}
}
