package news

import (
	"strconv"

	newssvc "coinfolio-backend/internal/application/news"
	"coinfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *newssvc.Service
}

// POST /api/v1/news
func (h *Handlers) Ingest(c *fiber.Ctx) error {
	var in newssvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	id, err := h.Service.Ingest(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "News stored successfully", fiber.Map{"id": id}, nil)
}

// PATCH /api/v1/news/:id/read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return response.Error(c, "Invalid news id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.MarkRead(c.UserContext(), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "News marked as read", fiber.Map{"id": id}, nil)
}
