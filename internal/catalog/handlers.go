package catalog

import (
	"sitestock-backend/internal/domain"
	"sitestock-backend/internal/middleware"
	"sitestock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers bundles catalog handlers.
type Handlers struct {
	Service *Service
}

type itemRequest struct {
	SKU            string             `json:"sku"`
	Name           string             `json:"name"`
	CategoryID     *string            `json:"category_id"`
	Unit           string             `json:"unit"`
	MinStock       *decimal.Decimal   `json:"min_stock"`
	ReferencePrice *decimal.Decimal   `json:"reference_price"`
	Packagings     []domain.Packaging `json:"packagings"`
}

// CreateItem POST /api/v1/catalog/create-item
func (h *Handlers) CreateItem(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	in, err := req.toCreateInput(ident.OrgID)
	if err != nil {
		return response.Error(c, "Invalid category_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	item, err := h.Service.CreateItem(c.Context(), in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Item created successfully", item, nil)
}

func (r *itemRequest) toCreateInput(orgID uuid.UUID) (CreateItemInput, error) {
	in := CreateItemInput{
		OrgID:          orgID,
		SKU:            r.SKU,
		Name:           r.Name,
		Unit:           r.Unit,
		ReferencePrice: r.ReferencePrice,
		Packagings:     r.Packagings,
	}
	if r.MinStock != nil {
		in.MinStock = *r.MinStock
	}
	if r.CategoryID != nil && *r.CategoryID != "" {
		id, err := uuid.Parse(*r.CategoryID)
		if err != nil {
			return in, err
		}
		in.CategoryID = &id
	}
	return in, nil
}

type updateItemRequest struct {
	SKU            *string            `json:"sku"`
	Name           *string            `json:"name"`
	CategoryID     *string            `json:"category_id"`
	Unit           *string            `json:"unit"`
	MinStock       *decimal.Decimal   `json:"min_stock"`
	ReferencePrice *decimal.Decimal   `json:"reference_price"`
	Packagings     []domain.Packaging `json:"packagings"`
}

// UpdateItem PATCH /api/v1/catalog/update-item/:id
func (h *Handlers) UpdateItem(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	in := UpdateItemInput{
		SKU:            req.SKU,
		Name:           req.Name,
		Unit:           req.Unit,
		MinStock:       req.MinStock,
		ReferencePrice: req.ReferencePrice,
		Packagings:     req.Packagings,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return response.Error(c, "Invalid category_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		in.CategoryID = &id
	}
	item, err := h.Service.UpdateItem(c.Context(), ident.OrgID, itemID, in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Item updated successfully", item, nil)
}

// DeactivateItem PATCH /api/v1/catalog/deactivate-item/:id
func (h *Handlers) DeactivateItem(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	item, err := h.Service.DeactivateItem(c.Context(), ident.OrgID, itemID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Item deactivated successfully", item, nil)
}

// ViewItem GET /api/v1/catalog/view-item/:id
func (h *Handlers) ViewItem(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid item ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	item, err := h.Service.GetItem(c.Context(), ident.OrgID, itemID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Item fetched successfully", item, nil)
}

// ListItems GET /api/v1/catalog/list-items
func (h *Handlers) ListItems(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	f := ListItemsFilter{
		ActiveOnly: c.QueryBool("active_only"),
		Search:     c.Query("search"),
	}
	if catStr := c.Query("category_id"); catStr != "" {
		id, err := uuid.Parse(catStr)
		if err != nil {
			return response.Error(c, "Invalid category_id (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		f.CategoryID = &id
	}
	items, err := h.Service.ListItems(c.Context(), ident.OrgID, f)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Items fetched successfully", items, fiber.Map{"count": len(items)})
}

type categoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory POST /api/v1/catalog/create-category
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	cat, err := h.Service.CreateCategory(c.Context(), ident.OrgID, req.Name)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Category created successfully", cat, nil)
}

// ListCategories GET /api/v1/catalog/list-categories
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	cats, err := h.Service.ListCategories(c.Context(), ident.OrgID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Categories fetched successfully", cats, nil)
}

// ListUnits GET /api/v1/catalog/list-units
func (h *Handlers) ListUnits(c *fiber.Ctx) error {
	return response.Success(c, "Units fetched successfully", domain.Units, nil)
}

type bulkItemsRequest struct {
	Items []itemRequest `json:"items"`
}

type bulkResult struct {
	Index int         `json:"index"`
	OK    bool        `json:"ok"`
	Error string      `json:"error,omitempty"`
	Item  interface{} `json:"item,omitempty"`
}

// BulkCreateItems POST /api/v1/catalog/bulk-create-items
// Seeding path: each row goes through the same CreateItem validation; failures
// are reported per row without aborting the batch.
func (h *Handlers) BulkCreateItems(c *fiber.Ctx) error {
	ident, err := middleware.SessionIdentity(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req bulkItemsRequest
	if err := c.BodyParser(&req); err != nil || len(req.Items) == 0 {
		return response.Error(c, "Invalid request body: items required", fiber.StatusBadRequest, nil)
	}
	results := make([]bulkResult, 0, len(req.Items))
	created := 0
	for i, row := range req.Items {
		in, err := row.toCreateInput(ident.OrgID)
		if err != nil {
			results = append(results, bulkResult{Index: i, OK: false, Error: "Invalid category_id"})
			continue
		}
		item, err := h.Service.CreateItem(c.Context(), in)
		if err != nil {
			results = append(results, bulkResult{Index: i, OK: false, Error: err.Error()})
			continue
		}
		created++
		results = append(results, bulkResult{Index: i, OK: true, Item: item})
	}
	return response.Success(c, "Bulk create finished", results, fiber.Map{
		"created": created,
		"failed":  len(req.Items) - created,
	})
}
