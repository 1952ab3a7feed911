package metrics

import (
	metricssvc "coinfolio-backend/internal/application/metrics"
	"coinfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *metricssvc.Service
}

// GET /api/v1/metrics
func (h *Handlers) Get(c *fiber.Ctx) error {
	d, err := h.Service.Load(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Metrics fetched successfully", d, nil)
}
