// Package valuation holds the pure portfolio math: USD values, percentage
// weights, daily snapshot merging and report change percentages. Nothing
// here touches storage; callers run it inside holdings.Store.Mutate.
package valuation

import (
	"time"

	"coinfolio-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	valuePlaces        = 2
	percentPlaces      = 2
	intermediatePlaces = 4
	changePctPlaces    = 1
)

var hundred = decimal.NewFromInt(100)

// RecomputeValues sets ValueUSD = Amount * price for every holding whose coin
// has a price. Holdings without a price keep their previous ValueUSD.
// The input slice is not modified.
func RecomputeValues(hs []domain.Holding, prices map[string]decimal.Decimal, now time.Time) []domain.Holding {
	out := make([]domain.Holding, len(hs))
	copy(out, hs)
	for i := range out {
		price, ok := prices[out[i].Coin]
		if !ok {
			continue
		}
		out[i].ValueUSD = out[i].Amount.Mul(price).Round(valuePlaces)
		out[i].UpdatedAt = now
	}
	return out
}

// RecomputePercentages sets each holding's weight to value/total*100. The
// ratio is rounded to 4 places first, then the percentage to 2. When the
// total is not positive every percentage is zero. Rounded weights are not
// reconciled to sum to exactly 100.
func RecomputePercentages(hs []domain.Holding) []domain.Holding {
	out := make([]domain.Holding, len(hs))
	copy(out, hs)
	total := domain.TotalValue(out)
	for i := range out {
		if !total.IsPositive() {
			out[i].Percentage = decimal.Zero
			continue
		}
		out[i].Percentage = Percentage(out[i].ValueUSD, total)
	}
	return out
}

// Percentage returns part/total*100 with 4-place intermediate precision,
// rounded half away from zero to 2 places.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.DivRound(total, intermediatePlaces).Mul(hundred).Round(percentPlaces)
}

// MergeSnapshot returns the snapshot rows for day after folding in hs.
// Existing rows for held coins get the new percentage. Missing rows are
// appended. Rows for coins no longer held are returned unchanged.
// Rows in existing that belong to another day are ignored.
func MergeSnapshot(day domain.Day, hs []domain.Holding, existing []domain.HistorySnapshot) []domain.HistorySnapshot {
	out := make([]domain.HistorySnapshot, 0, len(existing)+len(hs))
	index := make(map[string]int, len(existing))
	for _, s := range existing {
		if s.SnapDate != day {
			continue
		}
		if _, dup := index[s.Coin]; dup {
			continue
		}
		index[s.Coin] = len(out)
		out = append(out, s)
	}
	for _, h := range hs {
		if i, ok := index[h.Coin]; ok {
			out[i].Percentage = h.Percentage
			continue
		}
		index[h.Coin] = len(out)
		out = append(out, domain.HistorySnapshot{SnapDate: day, Coin: h.Coin, Percentage: h.Percentage})
	}
	return out
}

// ChangePct is (proposed-current)/current*100 rounded to one place.
// current must be non-zero.
func ChangePct(current, proposed decimal.Decimal) decimal.Decimal {
	return proposed.Sub(current).DivRound(current, intermediatePlaces).Mul(hundred).Round(changePctPlaces)
}

// ApplyAmounts sets the amount of every holding whose coin appears in
// amounts, revalues it from prices and recomputes all percentages. Coins in
// amounts with no holding row are skipped. It returns the updated set and
// the coins that were touched.
func ApplyAmounts(hs []domain.Holding, amounts map[string]decimal.Decimal, prices map[string]decimal.Decimal, now time.Time) ([]domain.Holding, []string) {
	out := make([]domain.Holding, len(hs))
	copy(out, hs)
	var touched []string
	for i := range out {
		amount, ok := amounts[out[i].Coin]
		if !ok {
			continue
		}
		out[i].Amount = amount
		out[i].UpdatedAt = now
		if price, ok := prices[out[i].Coin]; ok {
			out[i].ValueUSD = amount.Mul(price).Round(valuePlaces)
		}
		touched = append(touched, out[i].Coin)
	}
	return RecomputePercentages(out), touched
}
