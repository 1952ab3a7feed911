package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// CoinGeckoIDs maps coin symbols to CoinGecko asset ids.
var CoinGeckoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"USDT": "tether",
	"BNB":  "binancecoin",
	"DOGE": "dogecoin",
	"ADA":  "cardano",
	"XRP":  "ripple",
	"DOT":  "polkadot",
	"LTC":  "litecoin",
	"BCH":  "bitcoin-cash",
}

// CoinGecko fetches prices from the /simple/price endpoint.
type CoinGecko struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewCoinGecko builds a client limited to requestsPerMinute outbound calls.
func NewCoinGecko(baseURL, apiKey string, requestsPerMinute int) *CoinGecko {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

func (c *CoinGecko) GetPrices(ctx context.Context, coins []string) (map[string]decimal.Decimal, error) {
	bySymbol := make(map[string]string)
	for _, coin := range coins {
		if id, ok := CoinGeckoIDs[coin]; ok {
			bySymbol[id] = coin
		}
	}
	out := make(map[string]decimal.Decimal)
	if len(bySymbol) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(bySymbol))
	for id := range bySymbol {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Upstream("price request throttled", err)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.Upstream("build price request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Upstream("price source unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.Upstream("price source error", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Upstream("decode price response", err)
	}
	for id, quotes := range payload {
		coin, ok := bySymbol[id]
		if !ok {
			continue
		}
		raw, ok := quotes["usd"]
		if !ok {
			log.Warn().Str("coin", coin).Msg("no USD quote in price response")
			continue
		}
		price, err := decimal.NewFromString(raw.String())
		if err != nil {
			log.Warn().Str("coin", coin).Str("raw", raw.String()).Msg("unparseable USD quote")
			continue
		}
		out[coin] = price
	}
	return out, nil
}
