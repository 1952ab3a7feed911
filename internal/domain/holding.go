package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one coin's current amount and USD valuation. One row per coin.
type Holding struct {
	ID         uint            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Coin       string          `gorm:"column:coin;type:varchar(16);not null;uniqueIndex" json:"coin"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(30,10);not null" json:"amount"`
	ValueUSD   decimal.Decimal `gorm:"column:value_usd;type:numeric(30,2);not null" json:"value_usd"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:numeric(7,2);not null" json:"percentage"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "portfolio_holding"
}

// Coins returns the distinct coin symbols of hs in input order.
func Coins(hs []Holding) []string {
	seen := make(map[string]bool, len(hs))
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		if seen[h.Coin] {
			continue
		}
		seen[h.Coin] = true
		out = append(out, h.Coin)
	}
	return out
}

// TotalValue sums ValueUSD across hs.
func TotalValue(hs []Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range hs {
		total = total.Add(h.ValueUSD)
	}
	return total
}
