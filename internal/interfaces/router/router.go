package router

import (
	"context"

	healthsvc "coinfolio-backend/internal/application/health"
	holdsvc "coinfolio-backend/internal/application/holdings"
	metricssvc "coinfolio-backend/internal/application/metrics"
	newssvc "coinfolio-backend/internal/application/news"
	portfoliosvc "coinfolio-backend/internal/application/portfolio"
	reportsvc "coinfolio-backend/internal/application/reports"
	"coinfolio-backend/internal/config"
	"coinfolio-backend/internal/infrastructure/cache"
	"coinfolio-backend/internal/infrastructure/database"
	"coinfolio-backend/internal/infrastructure/lock"
	"coinfolio-backend/internal/infrastructure/prices"
	healthhandler "coinfolio-backend/internal/interfaces/handlers/health"
	metricshandler "coinfolio-backend/internal/interfaces/handlers/metrics"
	newshandler "coinfolio-backend/internal/interfaces/handlers/news"
	portfoliohandler "coinfolio-backend/internal/interfaces/handlers/portfolio"
	reporthandler "coinfolio-backend/internal/interfaces/handlers/reports"
	"coinfolio-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the long-lived resources behind the app. The caller owns their
// lifecycle (scheduler start, connection close).
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Revaluer *portfoliosvc.Revaluer
}

// Close releases the database pool and the Redis client.
func (d *Deps) Close() {
	if d == nil {
		return
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// PriceSource builds the live price chain from cfg: CoinGecko behind the
// Redis cache, or the reference table when PRICE_SOURCE=static.
func PriceSource(cfg *config.Config, rdb *redis.Client) prices.Source {
	if cfg.PriceSource == "static" {
		return prices.Static(cfg.ReferencePrices)
	}
	var src prices.Source = prices.NewCoinGecko(cfg.CoinGeckoURL, cfg.CoinGeckoAPIKey, cfg.PriceRequestsPerMinute)
	if rdb != nil {
		src = prices.NewCached(src, rdb, cfg.PriceCacheTTL)
	}
	return src
}

func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	rdb, err := cache.Open(context.Background(), cfg.RedisURL)
	if err != nil {
		// Redis only backs caching, locking and traffic counters.
		log.Warn().Err(err).Msg("redis unavailable, continuing without it")
		rdb = nil
	}
	deps := &Deps{DB: db, Redis: rdb}
	app := NewApp(cfg, deps)
	return app, deps, nil
}

// NewApp wires services and routes over already opened resources.
func NewApp(cfg *config.Config, deps *Deps) *fiber.App {
	db, rdb := deps.DB, deps.Redis

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.RouteLogger())

	priceURL := ""
	if cfg.PriceSource != "static" {
		priceURL = cfg.CoinGeckoURL
	}
	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &healthsvc.GormPinger{DB: db},
		HealthAdminKey: cfg.HealthAdminKey,
		PriceURL:       priceURL,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	store := holdsvc.NewStore(db)
	news := &newssvc.Service{DB: db, Location: cfg.Location}
	reports := &reportsvc.Service{
		DB:              db,
		Holdings:        store,
		News:            news,
		ReferencePrices: cfg.ReferencePrices,
		Location:        cfg.Location,
	}
	if deps.Revaluer == nil {
		deps.Revaluer = &portfoliosvc.Revaluer{
			Holdings: store,
			Prices:   PriceSource(cfg, rdb),
			Lock:     lock.NewRedis(rdb),
			Location: cfg.Location,
		}
	}
	reviewer := middleware.RequireReviewer(cfg.ReviewerKeyHash)

	// Reports
	rh := &reporthandler.Handlers{Service: reports}
	rg := app.Group("/api/v1/reports")
	rg.Get("/", rh.List)
	rg.Get("/:id", rh.Detail)
	rg.Post("/", reviewer, rh.Ingest)
	rg.Post("/batch", reviewer, rh.IngestBatch)
	rg.Post("/:id/approve", reviewer, rh.Approve)
	rg.Post("/:id/reject", reviewer, rh.Reject)
	rg.Post("/:id/undo", reviewer, rh.Undo)
	rg.Delete("/:id", reviewer, rh.Delete)

	// Portfolio
	ph := &portfoliohandler.Handlers{
		Portfolio: &portfoliosvc.Service{DB: db, Holdings: store},
		Holdings:  &holdsvc.Service{Store: store, ReferencePrices: cfg.ReferencePrices},
		Revaluer:  deps.Revaluer,
	}
	pg := app.Group("/api/v1/portfolio")
	pg.Get("/", ph.Get)
	pg.Post("/holdings", reviewer, ph.AddHolding)
	pg.Post("/revalue", reviewer, ph.Revalue)

	// News
	nh := &newshandler.Handlers{Service: news}
	app.Post("/api/v1/news", reviewer, nh.Ingest)
	app.Patch("/api/v1/news/:id/read", nh.MarkRead)

	// Metrics
	mh := &metricshandler.Handlers{Service: &metricssvc.Service{DB: db}}
	app.Get("/api/v1/metrics", mh.Get)

	return app
}
