// Package prices provides USD unit price sources for held coins.
package prices

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source returns current USD unit prices for coins. Missing entries are
// omitted from the result, not reported as errors. An error means the
// source itself could not be reached.
type Source interface {
	GetPrices(ctx context.Context, coins []string) (map[string]decimal.Decimal, error)
}

// Static serves a fixed price table.
type Static map[string]decimal.Decimal

func (s Static) GetPrices(_ context.Context, coins []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(coins))
	for _, c := range coins {
		if p, ok := s[c]; ok {
			out[c] = p
		}
	}
	return out, nil
}
