package ledger

import (
	"time"

	"sitestock-backend/internal/middleware"
	"sitestock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers bundles stock ledger handlers.
type Handlers struct {
	Service *Service
}

type movementRequest struct {
	ItemID        string          `json:"item_id"`
	WarehouseID   string          `json:"warehouse_id"`
	OriginID      string          `json:"origin_warehouse_id"`
	DestinationID string          `json:"destination_warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Delta         decimal.Decimal `json:"delta"`
	ProjectID     *string         `json:"project_id"`
	Reason        string          `json:"reason"`
}

// RecordIngress POST /api/v1/ledger/record-ingress
func (h *Handlers) RecordIngress(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return response.Error(c, "Invalid item_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	mv, err := h.Service.Ingress(c.Context(), IngressInput{
		OrgID:       ident.OrgID,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		CreatedBy:   ident.UserID,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Ingress recorded successfully", mv, nil)
}

// RecordEgress POST /api/v1/ledger/record-egress
func (h *Handlers) RecordEgress(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return response.Error(c, "Invalid item_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	in := EgressInput{
		OrgID:       ident.OrgID,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		CreatedBy:   ident.UserID,
	}
	if req.ProjectID != nil && *req.ProjectID != "" {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return response.Error(c, "Invalid project_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		in.ProjectID = &projectID
	}
	mv, err := h.Service.Egress(c.Context(), in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Egress recorded successfully", mv, nil)
}

// RecordTransfer POST /api/v1/ledger/record-transfer
func (h *Handlers) RecordTransfer(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return response.Error(c, "Invalid item_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	originID, err := uuid.Parse(req.OriginID)
	if err != nil {
		return response.Error(c, "Invalid origin_warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	destinationID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		return response.Error(c, "Invalid destination_warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	mv, err := h.Service.Transfer(c.Context(), TransferInput{
		OrgID:         ident.OrgID,
		ItemID:        itemID,
		OriginID:      originID,
		DestinationID: destinationID,
		Quantity:      req.Quantity,
		Reason:        req.Reason,
		CreatedBy:     ident.UserID,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Transfer recorded successfully", mv, nil)
}

// RecordAdjustment POST /api/v1/ledger/record-adjustment
func (h *Handlers) RecordAdjustment(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return response.Error(c, "Invalid item_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	mv, err := h.Service.Adjust(c.Context(), AdjustInput{
		OrgID:       ident.OrgID,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Delta:       req.Delta,
		Reason:      req.Reason,
		CreatedBy:   ident.UserID,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Adjustment recorded successfully", mv, nil)
}

// ViewBalance GET /api/v1/ledger/view-balance/:item_id
func (h *Handlers) ViewBalance(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("item_id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	warehouseID, badWh := optionalWarehouse(c)
	if badWh {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	balance, err := h.Service.GetBalance(c.Context(), ident.OrgID, itemID, warehouseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Balance fetched successfully", fiber.Map{
		"item_id":      itemID,
		"warehouse_id": warehouseID,
		"balance":      balance,
	}, nil)
}

// ViewAvailable GET /api/v1/ledger/view-available/:item_id
func (h *Handlers) ViewAvailable(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("item_id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	warehouseID, badWh := optionalWarehouse(c)
	if badWh {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	available, err := h.Service.GetAvailable(c.Context(), ident.OrgID, itemID, warehouseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Available quantity fetched successfully", fiber.Map{
		"item_id":      itemID,
		"warehouse_id": warehouseID,
		"available":    available,
	}, nil)
}

// ViewHistory GET /api/v1/ledger/view-history/:item_id
func (h *Handlers) ViewHistory(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("item_id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	f := HistoryFilter{
		Kind:  c.Query("kind"),
		Limit: c.QueryInt("limit"),
	}
	warehouseID, badWh := optionalWarehouse(c)
	if badWh {
		return response.Error(c, "Invalid warehouse_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	f.WarehouseID = warehouseID
	if projStr := c.Query("project_id"); projStr != "" {
		projectID, err := uuid.Parse(projStr)
		if err != nil {
			return response.Error(c, "Invalid project_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		f.ProjectID = &projectID
	}
	if beforeStr := c.Query("before"); beforeStr != "" {
		before, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			return response.Error(c, "Invalid before cursor (must be RFC3339)", fiber.StatusBadRequest, nil)
		}
		f.Before = &before
	}
	movements, err := h.Service.GetHistory(c.Context(), ident.OrgID, itemID, f)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "History fetched successfully", movements, fiber.Map{"count": len(movements)})
}

// VerifyBalance GET /api/v1/ledger/verify-balance/:item_id/:warehouse_id
func (h *Handlers) VerifyBalance(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("item_id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	warehouseID, err := uuid.Parse(c.Params("warehouse_id"))
	if err != nil {
		return response.Error(c, "Invalid warehouse ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.VerifyBalance(c.Context(), ident.OrgID, itemID, warehouseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Balance verified", result, nil)
}

// optionalWarehouse parses the warehouse_id query parameter; the bool reports
// a present-but-invalid value.
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
