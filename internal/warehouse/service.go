package warehouse

import (
	"context"
	"strings"

	"sitestock-backend/internal/domain"
	"sitestock-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages the warehouse registry.
type Service struct {
	DB *gorm.DB
}

// CreateInput describes a new warehouse.
type CreateInput struct {
	OrgID   uuid.UUID
	Name    string
	Kind    string
	Address string
}

// UpdateInput patches a warehouse; nil fields are left untouched.
type UpdateInput struct {
	Name    *string
	Kind    *string
	Address *string
}

// Create registers a warehouse (fixed depot or project site).
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Warehouse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.MissingField("warehouse", "name", "Warehouse name is required")
	}
	kind := in.Kind
	if kind == "" {
		kind = domain.WarehouseFixedDepot
	}
	if kind != domain.WarehouseFixedDepot && kind != domain.WarehouseProjectSite {
		return nil, apperror.InvalidState("warehouse", "", "Unrecognized warehouse kind: "+kind)
	}
	wh := &domain.Warehouse{
		OrgID:   in.OrgID,
		Name:    name,
		Kind:    kind,
		Address: strings.TrimSpace(in.Address),
		Active:  true,
	}
	if err := s.DB.WithContext(ctx).Create(wh).Error; err != nil {
		return nil, err
	}
	return wh, nil
}

// Update patches a warehouse.
func (s *Service) Update(ctx context.Context, orgID, warehouseID uuid.UUID, in UpdateInput) (*domain.Warehouse, error) {
	var wh domain.Warehouse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND warehouse_id = ?", orgID, warehouseID).First(&wh).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("warehouse", warehouseID.String())
			}
			return err
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return apperror.MissingField("warehouse", "name", "Warehouse name must not be empty")
			}
			wh.Name = strings.TrimSpace(*in.Name)
		}
		if in.Kind != nil {
			if *in.Kind != domain.WarehouseFixedDepot && *in.Kind != domain.WarehouseProjectSite {
				return apperror.InvalidState("warehouse", warehouseID.String(), "Unrecognized warehouse kind: "+*in.Kind)
			}
			wh.Kind = *in.Kind
		}
		if in.Address != nil {
			wh.Address = strings.TrimSpace(*in.Address)
		}
		return tx.Save(&wh).Error
	})
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

// Deactivate marks a warehouse inactive. Fails while any balance row is
// nonzero; stock must be explicitly transferred out first.
func (s *Service) Deactivate(ctx context.Context, orgID, warehouseID uuid.UUID) (*domain.Warehouse, error) {
	var wh domain.Warehouse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND warehouse_id = ?", orgID, warehouseID).First(&wh).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("warehouse", warehouseID.String())
			}
			return err
		}
		var count int64
		if err := tx.Model(&domain.Stock{}).
			Where("org_id = ? AND warehouse_id = ? AND quantity <> 0", orgID, warehouseID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.HasActiveStock(warehouseID.String())
		}
		wh.Active = false
		return tx.Save(&wh).Error
	})
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

// Get returns one org warehouse.
func (s *Service) Get(ctx context.Context, orgID, warehouseID uuid.UUID) (*domain.Warehouse, error) {
	var wh domain.Warehouse
	if err := s.DB.WithContext(ctx).Where("org_id = ? AND warehouse_id = ?", orgID, warehouseID).First(&wh).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("warehouse", warehouseID.String())
		}
		return nil, err
	}
	return &wh, nil
}

// List lists org warehouses by name, optionally active only.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]domain.Warehouse, error) {
	q := s.DB.WithContext(ctx).Where("org_id = ?", orgID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var whs []domain.Warehouse
	if err := q.Order("name ASC").Find(&whs).Error; err != nil {
		return nil, err
	}
	return whs, nil
}
