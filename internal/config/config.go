package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultReferencePrices is the fixed USD table approve/undo value holdings with.
var DefaultReferencePrices = map[string]decimal.Decimal{
	"BTC":  decimal.NewFromInt(50000),
	"ETH":  decimal.NewFromInt(2500),
	"BNB":  decimal.NewFromInt(300),
	"SOL":  decimal.NewFromInt(100),
	"DOGE": decimal.RequireFromString("0.1"),
	"ADA":  decimal.RequireFromString("1.0"),
	"XRP":  decimal.RequireFromString("0.5"),
	"DOT":  decimal.RequireFromString("7.0"),
	"LTC":  decimal.RequireFromString("80.0"),
	"BCH":  decimal.RequireFromString("250.0"),
}

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	ReviewerKeyHash     string // bcrypt hash of the X-Review-Key value; empty disables the check

	PriceSource            string // "coingecko" or "static"
	CoinGeckoURL           string
	CoinGeckoAPIKey        string
	PriceRequestsPerMinute int
	PriceCacheTTL          time.Duration

	RevalueInterval time.Duration // 0 disables the in-process scheduler
	RevalueOnStart  bool

	ReferencePrices map[string]decimal.Decimal
	Location        *time.Location
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = viper.GetString("NODE_ENV")
	}
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	cacheTTL, err := durationOr(viper.GetString("PRICE_CACHE_TTL"), 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("PRICE_CACHE_TTL: %w", err)
	}
	interval, err := durationOr(viper.GetString("REVALUE_INTERVAL"), 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("REVALUE_INTERVAL: %w", err)
	}
	refPrices, err := ParseReferencePrices(viper.GetString("REFERENCE_PRICES"))
	if err != nil {
		return nil, fmt.Errorf("REFERENCE_PRICES: %w", err)
	}

	loc, err := time.LoadLocation(strings.TrimSpace(viper.GetString("TIMEZONE")))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	priceSource := strings.ToLower(strings.TrimSpace(viper.GetString("PRICE_SOURCE")))
	if priceSource == "" {
		priceSource = "coingecko"
	}
	if priceSource != "coingecko" && priceSource != "static" {
		return nil, fmt.Errorf("PRICE_SOURCE: unknown source %q", priceSource)
	}

	rpm := viper.GetInt("PRICE_REQUESTS_PER_MINUTE")
	if rpm <= 0 {
		rpm = 20
	}
	logLevel := viper.GetString("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Env:                    env,
		Port:                   port,
		LogLevel:               logLevel,
		DatabaseURL:            dbURL,
		RedisURL:               viper.GetString("REDIS_URL"),
		FrontendURLEndsWith:    viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:            viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:         viper.GetString("HEALTH_ADMIN_KEY"),
		ReviewerKeyHash:        viper.GetString("REVIEWER_KEY_HASH"),
		PriceSource:            priceSource,
		CoinGeckoURL:           coinGeckoURL(viper.GetString("COINGECKO_URL")),
		CoinGeckoAPIKey:        viper.GetString("COINGECKO_API_KEY"),
		PriceRequestsPerMinute: rpm,
		PriceCacheTTL:          cacheTTL,
		RevalueInterval:        interval,
		RevalueOnStart:         strings.EqualFold(viper.GetString("REVALUE_ON_START"), "true"),
		ReferencePrices:        refPrices,
		Location:               loc,
	}, nil
}

// ParseReferencePrices parses "BTC:50000,ETH:2500". Empty input yields a copy of DefaultReferencePrices.
func ParseReferencePrices(s string) (map[string]decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	out := make(map[string]decimal.Decimal)
	if s == "" {
		for k, v := range DefaultReferencePrices {
			out[k] = v
		}
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		coin, price, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("expected COIN:PRICE, got %q", pair)
		}
		coin = strings.ToUpper(strings.TrimSpace(coin))
		d, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", coin, err)
		}
		if coin == "" || d.IsNegative() {
			return nil, fmt.Errorf("invalid entry %q", pair)
		}
		out[coin] = d
	}
	return out, nil
}

func durationOr(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func coinGeckoURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return "https://api.coingecko.com/api/v3"
	}
	return s
}
