package constants

import "strings"

// Time layouts used at the API boundary.
const (
	DateTimeLayout      = "2006-01-02 15:04:05"
	DateTimeShortLayout = "2006-01-02 15:04"
	DayLayout           = "2006-01-02"
	HistoryLabelLayout  = "01-02"
)

// SupportedCoins are the symbols news items may be tagged with.
var SupportedCoins = []string{"BTC", "ETH", "SOL", "USDT"}

// IsSupportedCoin reports whether coin (any case) is in SupportedCoins.
func IsSupportedCoin(coin string) bool {
	upper := strings.ToUpper(strings.TrimSpace(coin))
	for _, c := range SupportedCoins {
		if c == upper {
			return true
		}
	}
	return false
}

// NormalizeCoin trims and upper-cases a coin symbol.
func NormalizeCoin(coin string) string {
	return strings.ToUpper(strings.TrimSpace(coin))
}
