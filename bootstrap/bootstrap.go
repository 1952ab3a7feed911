package bootstrap

import (
	"coinfolio-backend/internal/config"
	"coinfolio-backend/internal/interfaces/router"
	"coinfolio-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless hosting (api handler imports this package, not internal).
// No scheduler runs here; revaluation is triggered through POST /api/v1/portfolio/revalue.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, cfg.Env)
	app, _, err := router.CreateApp(cfg)
	return app, err
}
