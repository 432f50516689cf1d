package reporting

import (
	"sitestock-backend/internal/middleware"
	"sitestock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles reporting handlers. All endpoints are reads.
type Handlers struct {
	Service *Service
}

// LowStock GET /api/v1/reports/low-stock
func (h *Handlers) LowStock(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	warehouseID, bad := optionalWarehouse(c)
	if bad {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	entries, err := h.Service.ListLowStock(c.Context(), ident.OrgID, warehouseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Low stock report fetched successfully", entries, fiber.Map{"count": len(entries)})
}

// Valuation GET /api/v1/reports/valuation
func (h *Handlers) Valuation(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	warehouseID, bad := optionalWarehouse(c)
	if bad {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	report, err := h.Service.EstimateValue(c.Context(), ident.OrgID, warehouseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Valuation fetched successfully", report, nil)
}

// ProjectUsage GET /api/v1/reports/project-usage/:project_id
func (h *Handlers) ProjectUsage(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	usage, err := h.Service.GetUsageByProject(c.Context(), ident.OrgID, projectID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Project usage fetched successfully", usage, fiber.Map{"count": len(usage)})
}

func optionalWarehouse(c *fiber.Ctx) (*uuid.UUID, bool) {
	whStr := c.Query("warehouse_id")
	if whStr == "" {
		return nil, false
	}
	id, err := uuid.Parse(whStr)
	if err != nil {
		return nil, true
	}
	return &id, false
}
