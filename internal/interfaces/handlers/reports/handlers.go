package reports

import (
	reportsvc "coinfolio-backend/internal/application/reports"
	"coinfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *reportsvc.Service
}

type batchBody struct {
	Reports []reportsvc.IngestRequest `json:"reports"`
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// GET /api/v1/reports
func (h *Handlers) List(c *fiber.Ctx) error {
	out, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Reports fetched successfully", out, fiber.Map{"count": len(out)})
}

// GET /api/v1/reports/:id
func (h *Handlers) Detail(c *fiber.Ctx) error {
	id, err := reportsvc.ParseID(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	d, err := h.Service.Detail(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Report fetched successfully", d, nil)
}

// POST /api/v1/reports
func (h *Handlers) Ingest(c *fiber.Ctx) error {
	var req reportsvc.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	id, err := h.Service.Ingest(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Report ingested successfully", fiber.Map{"report_id": id}, nil)
}

// POST /api/v1/reports/batch. Always 200; per-item failures are in results.
func (h *Handlers) IngestBatch(c *fiber.Ctx) error {
	var body batchBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	res := h.Service.IngestBatch(c.UserContext(), body.Reports)
	return response.Success(c, "Batch processed", res, nil)
}

// POST /api/v1/reports/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	id, err := reportsvc.ParseID(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Approve(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Report approved", fiber.Map{"report_id": id, "status": "approved"}, nil)
}

// POST /api/v1/reports/:id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	id, err := reportsvc.ParseID(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	var body rejectBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Reject(c.UserContext(), id, body.Reason); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Report rejected", fiber.Map{"report_id": id, "status": "rejected"}, nil)
}

// POST /api/v1/reports/:id/undo
func (h *Handlers) Undo(c *fiber.Ctx) error {
	id, err := reportsvc.ParseID(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Undo(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Report approval undone", fiber.Map{"report_id": id, "status": "pending"}, nil)
}

// DELETE /api/v1/reports/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := reportsvc.ParseID(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Report deleted", fiber.Map{"report_id": id}, nil)
}
