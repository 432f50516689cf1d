package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"sitestock-backend/internal/domain"
	"sitestock-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service manages the item catalog and its categories.
type Service struct {
	DB *gorm.DB
}

// CreateItemInput describes a new catalog item.
type CreateItemInput struct {
	OrgID          uuid.UUID
	SKU            string
	Name           string
	CategoryID     *uuid.UUID
	Unit           string
	MinStock       decimal.Decimal
	ReferencePrice *decimal.Decimal
	Packagings     []domain.Packaging
}

// UpdateItemInput patches an item; nil fields are left untouched.
type UpdateItemInput struct {
	SKU            *string
	Name           *string
	CategoryID     *uuid.UUID
	Unit           *string
	MinStock       *decimal.Decimal
	ReferencePrice *decimal.Decimal
	Packagings     []domain.Packaging
}

// CreateItem validates and creates a catalog item. SKU is unique per org.
func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (*domain.Item, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, apperror.MissingField("item", "sku", "SKU and name are required")
	}
	if !domain.IsValidUnit(in.Unit) {
		return nil, apperror.InvalidUnit(in.Unit)
	}
	if in.MinStock.IsNegative() {
		return nil, apperror.InvalidThreshold("min_stock", "Minimum stock must not be negative")
	}
	packJSON, err := packagingsJSON(in.Packagings)
	if err != nil {
		return nil, err
	}

	var item *domain.Item
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Item{}).
			Where("org_id = ? AND sku = ?", in.OrgID, sku).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.DuplicateSKU(sku)
		}
		if in.CategoryID != nil {
			if err := categoryExists(tx, in.OrgID, *in.CategoryID); err != nil {
				return err
			}
		}
		item = &domain.Item{
			OrgID:          in.OrgID,
			SKU:            sku,
			Name:           strings.TrimSpace(in.Name),
			CategoryID:     in.CategoryID,
			Unit:           in.Unit,
			MinStock:       in.MinStock,
			ReferencePrice: in.ReferencePrice,
			Active:         true,
			Packagings:     packJSON,
		}
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem patches an item; SKU uniqueness is re-checked when it changes.
func (s *Service) UpdateItem(ctx context.Context, orgID, itemID uuid.UUID, in UpdateItemInput) (*domain.Item, error) {
	var item *domain.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found domain.Item
		if err := tx.Where("org_id = ? AND item_id = ?", orgID, itemID).First(&found).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("item", itemID.String())
			}
			return err
		}
		if in.SKU != nil {
			sku := strings.TrimSpace(*in.SKU)
			if sku == "" {
				return apperror.MissingField("item", "sku", "SKU must not be empty")
			}
			if sku != found.SKU {
				var count int64
				if err := tx.Model(&domain.Item{}).
					Where("org_id = ? AND sku = ? AND item_id <> ?", orgID, sku, itemID).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return apperror.DuplicateSKU(sku)
				}
			}
			found.SKU = sku
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return apperror.MissingField("item", "name", "Name must not be empty")
			}
			found.Name = strings.TrimSpace(*in.Name)
		}
		if in.CategoryID != nil {
			if err := categoryExists(tx, orgID, *in.CategoryID); err != nil {
				return err
			}
			found.CategoryID = in.CategoryID
		}
		if in.Unit != nil {
			if !domain.IsValidUnit(*in.Unit) {
				return apperror.InvalidUnit(*in.Unit)
			}
			found.Unit = *in.Unit
		}
		if in.MinStock != nil {
			if in.MinStock.IsNegative() {
				return apperror.InvalidThreshold("min_stock", "Minimum stock must not be negative")
			}
			found.MinStock = *in.MinStock
		}
		if in.ReferencePrice != nil {
			found.ReferencePrice = in.ReferencePrice
		}
		if in.Packagings != nil {
			packJSON, err := packagingsJSON(in.Packagings)
			if err != nil {
				return err
			}
			found.Packagings = packJSON
		}
		if err := tx.Save(&found).Error; err != nil {
			return err
		}
		item = &found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeactivateItem marks the item inactive. History and balances stay readable;
// only new movements are blocked, so this never fails on nonzero balances.
func (s *Service) DeactivateItem(ctx context.Context, orgID, itemID uuid.UUID) (*domain.Item, error) {
	var item domain.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND item_id = ?", orgID, itemID).First(&item).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("item", itemID.String())
			}
			return err
		}
		item.Active = false
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItem returns one org item.
func (s *Service) GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*domain.Item, error) {
	var item domain.Item
	if err := s.DB.WithContext(ctx).Where("org_id = ? AND item_id = ?", orgID, itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("item", itemID.String())
		}
		return nil, err
	}
	return &item, nil
}

// ListItemsFilter narrows ListItems.
type ListItemsFilter struct {
	ActiveOnly bool
	CategoryID *uuid.UUID
	Search     string
}

// ListItems lists org items, SKU ascending.
func (s *Service) ListItems(ctx context.Context, orgID uuid.UUID, f ListItemsFilter) ([]domain.Item, error) {
	q := s.DB.WithContext(ctx).Where("org_id = ?", orgID)
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(sku) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	var items []domain.Item
	if err := q.Order("sku ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateCategory creates an org category; names are unique per org.
func (s *Service) CreateCategory(ctx context.Context, orgID uuid.UUID, name string) (*domain.ItemCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.MissingField("category", "name", "Category name is required")
	}
	var cat *domain.ItemCategory
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.ItemCategory{}).
			Where("org_id = ? AND name = ?", orgID, name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.InvalidState("category", name, "Category already exists")
		}
		cat = &domain.ItemCategory{OrgID: orgID, Name: name}
		return tx.Create(cat).Error
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// ListCategories lists org categories by name.
func (s *Service) ListCategories(ctx context.Context, orgID uuid.UUID) ([]domain.ItemCategory, error) {
	var cats []domain.ItemCategory
	if err := s.DB.WithContext(ctx).Where("org_id = ?", orgID).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func categoryExists(tx *gorm.DB, orgID, categoryID uuid.UUID) error {
	var count int64
	if err := tx.Model(&domain.ItemCategory{}).
		Where("org_id = ? AND category_id = ?", orgID, categoryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperror.NotFound("category", categoryID.String())
	}
	return nil
}

// packagingsJSON validates conversions and marshals them for storage.
func packagingsJSON(packs []domain.Packaging) (datatypes.JSON, error) {
	if len(packs) == 0 {
		return nil, nil
	}
	for _, p := range packs {
		if strings.TrimSpace(p.Label) == "" {
			return nil, apperror.MissingField("item", "packagings", "Packaging label is required")
		}
		if !domain.IsValidUnit(p.Unit) {
			return nil, apperror.InvalidUnit(p.Unit)
		}
		if !p.Factor.IsPositive() {
			return nil, apperror.InvalidThreshold("packagings", "Packaging factor must be greater than zero")
		}
	}
	b, err := json.Marshal(packs)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
