package warehouse

import (
	"sitestock-backend/internal/middleware"
	"sitestock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles warehouse registry handlers.
type Handlers struct {
	Service *Service
}

type warehouseRequest struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Address string `json:"address"`
}

// CreateWarehouse POST /api/v1/warehouses/create-warehouse
func (h *Handlers) CreateWarehouse(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req warehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	wh, err := h.Service.Create(c.Context(), CreateInput{
		OrgID:   ident.OrgID,
		Name:    req.Name,
		Kind:    req.Kind,
		Address: req.Address,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Warehouse created successfully", wh, nil)
}

type updateWarehouseRequest struct {
	Name    *string `json:"name"`
	Kind    *string `json:"kind"`
	Address *string `json:"address"`
}

// UpdateWarehouse PATCH /api/v1/warehouses/update-warehouse/:id
func (h *Handlers) UpdateWarehouse(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	warehouseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid warehouse ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req updateWarehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	wh, err := h.Service.Update(c.Context(), ident.OrgID, warehouseID, UpdateInput{
		Name:    req.Name,
		Kind:    req.Kind,
		Address: req.Address,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Warehouse updated successfully", wh, nil)
}

// DeactivateWarehouse PATCH /api/v1/warehouses/deactivate-warehouse/:id
func (h *Handlers) DeactivateWarehouse(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	warehouseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid warehouse ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	wh, err := h.Service.Deactivate(c.Context(), ident.OrgID, warehouseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Warehouse deactivated successfully", wh, nil)
}

// ViewWarehouse GET /api/v1/warehouses/view-warehouse/:id
func (h *Handlers) ViewWarehouse(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	warehouseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid warehouse ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	wh, err := h.Service.Get(c.Context(), ident.OrgID, warehouseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Warehouse fetched successfully", wh, nil)
}

// ListWarehouses GET /api/v1/warehouses/list-warehouses
func (h *Handlers) ListWarehouses(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	whs, err := h.Service.List(c.Context(), ident.OrgID, c.QueryBool("active_only"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Warehouses fetched successfully", whs, fiber.Map{"count": len(whs)})
}

type bulkWarehousesRequest struct {
	Warehouses []warehouseRequest `json:"warehouses"`
}

type bulkResult struct {
	Index     int         `json:"index"`
	OK        bool        `json:"ok"`
	Error     string      `json:"error,omitempty"`
	Warehouse interface{} `json:"warehouse,omitempty"`
}

// BulkCreateWarehouses POST /api/v1/warehouses/bulk-create-warehouses
// Seeding path: same Create validation per row, per-row failure reporting.
func (h *Handlers) BulkCreateWarehouses(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req bulkWarehousesRequest
	if err := c.BodyParser(&req); err != nil || len(req.Warehouses) == 0 {
		return response.Error(c, "Invalid request body: warehouses required", fiber.StatusBadRequest, nil)
	}
	results := make([]bulkResult, 0, len(req.Warehouses))
	created := 0
	for i, row := range req.Warehouses {
		wh, err := h.Service.Create(c.Context(), CreateInput{
			OrgID:   ident.OrgID,
			Name:    row.Name,
			Kind:    row.Kind,
			Address: row.Address,
		})
		if err != nil {
			results = append(results, bulkResult{Index: i, OK: false, Error: err.Error()})
			continue
		}
		created++
		results = append(results, bulkResult{Index: i, OK: true, Warehouse: wh})
	}
	return response.Success(c, "Bulk create finished", results, fiber.Map{
		"created": created,
		"failed":  len(req.Warehouses) - created,
	})
}
