package reservation

import (
	"sitestock-backend/internal/middleware"
	"sitestock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers bundles reservation handlers.
type Handlers struct {
	Service *Service
}

type reserveRequest struct {
	ItemID    string          `json:"item_id"`
	ProjectID string          `json:"project_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateReservation POST /api/v1/reservations/create-reservation
func (h *Handlers) CreateReservation(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req reserveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return response.Error(c, "Invalid item_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return response.Error(c, "Invalid project_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.Reserve(c.Context(), ReserveInput{
		OrgID:     ident.OrgID,
		ItemID:    itemID,
		ProjectID: projectID,
		Quantity:  req.Quantity,
		CreatedBy: ident.UserID,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Reservation created successfully", res, nil)
}

// ReleaseReservation PATCH /api/v1/reservations/release-reservation/:id
func (h *Handlers) ReleaseReservation(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	reservationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid reservation ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.Release(c.Context(), ident.OrgID, reservationID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Reservation released successfully", res, nil)
}

// ConfirmReservation PATCH /api/v1/reservations/confirm-reservation/:id
func (h *Handlers) ConfirmReservation(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	reservationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid reservation ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.Confirm(c.Context(), ident.OrgID, reservationID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Reservation confirmed successfully", res, nil)
}

// ViewReservation GET /api/v1/reservations/view-reservation/:id
func (h *Handlers) ViewReservation(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	reservationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid reservation ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.Get(c.Context(), ident.OrgID, reservationID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Reservation fetched successfully", res, nil)
}

// ListItemReservations GET /api/v1/reservations/list-item-reservations/:item_id
func (h *Handlers) ListItemReservations(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("item_id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.ListByItem(c.Context(), ident.OrgID, itemID, c.QueryBool("active_only"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Reservations fetched successfully", out, fiber.Map{"count": len(out)})
}

// ListProjectReservations GET /api/v1/reservations/list-project-reservations/:project_id
func (h *Handlers) ListProjectReservations(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.ListByProject(c.Context(), ident.OrgID, projectID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Reservations fetched successfully", out, fiber.Map{"count": len(out)})
}
