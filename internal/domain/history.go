package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Day is a calendar date in YYYY-MM-DD form.
type Day string

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format("2006-01-02"))
}

// Time parses d back to midnight UTC.
func (d Day) Time() (time.Time, error) {
	return time.Parse("2006-01-02", string(d))
}

// HistorySnapshot freezes one coin's percentage weight for one day. (SnapDate, Coin) is unique.
type HistorySnapshot struct {
	ID         uint            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SnapDate   Day             `gorm:"column:snap_date;type:varchar(10);not null;uniqueIndex:idx_history_day_coin" json:"day"`
	Coin       string          `gorm:"column:coin;type:varchar(16);not null;uniqueIndex:idx_history_day_coin" json:"coin"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:numeric(7,2);not null" json:"percentage"`
}

func (HistorySnapshot) TableName() string {
	return "portfolio_history"
}
