package portfolio

import (
	holdsvc "coinfolio-backend/internal/application/holdings"
	portfoliosvc "coinfolio-backend/internal/application/portfolio"
	"coinfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Portfolio *portfoliosvc.Service
	Holdings  *holdsvc.Service
	Revaluer  portfoliosvc.Runner
}

type addHoldingBody struct {
	Coin   string          `json:"coin"`
	Amount decimal.Decimal `json:"amount"`
}

// GET /api/v1/portfolio
func (h *Handlers) Get(c *fiber.Ctx) error {
	v, err := h.Portfolio.GetPortfolio(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Portfolio fetched successfully", v, nil)
}

// POST /api/v1/portfolio/holdings
func (h *Handlers) AddHolding(c *fiber.Ctx) error {
	var body addHoldingBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	created, err := h.Holdings.Add(c.UserContext(), body.Coin, body.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Holding created successfully", holdsvc.NewView(*created), nil)
}

// POST /api/v1/portfolio/revalue runs one revaluation pass now.
func (h *Handlers) Revalue(c *fiber.Ctx) error {
	res, err := h.Revaluer.RevalueAll(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	msg := "Portfolio revalued"
	if res.Skipped {
		msg = "Revaluation skipped: " + res.Reason
	}
	return response.Success(c, msg, res, nil)
}
