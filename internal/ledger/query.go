package ledger

import (
	"context"
	"time"

	"sitestock-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 50
const maxHistoryLimit = 200

// HistoryFilter narrows GetHistory. Before is an exclusive cursor: pass the
// CreatedAt of the last movement seen to continue a listing.
type HistoryFilter struct {
	Kind        string
	WarehouseID *uuid.UUID
	ProjectID   *uuid.UUID
	Before      *time.Time
	Limit       int
}

// GetBalance returns the cached balance of an item, at one warehouse or summed
// across all of them when warehouseID is nil.
func (s *Service) GetBalance(ctx context.Context, orgID, itemID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Stock{}).
		Where("org_id = ? AND item_id = ?", orgID, itemID)
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}
	var stocks []domain.Stock
	if err := q.Find(&stocks).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, st := range stocks {
		total = total.Add(st.Quantity)
	}
	return total, nil
}

// GetAvailable returns balance minus active reservations. Reservations are
// item-scoped, so the per-warehouse figure is capped by both the physical
// balance at the warehouse and the item-wide unreserved quantity.
func (s *Service) GetAvailable(ctx context.Context, orgID, itemID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	total, err := s.GetBalance(ctx, orgID, itemID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	reserved, err := ActiveReserved(s.DB.WithContext(ctx), orgID, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	available := total.Sub(reserved)
	if warehouseID == nil {
		return available, nil
	}
	atWarehouse, err := s.GetBalance(ctx, orgID, itemID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	if atWarehouse.LessThan(available) {
		return atWarehouse, nil
	}
	return available, nil
}

// GetHistory lists movements of an item in reverse chronological order. Pure
// read; restart with Before to page through long histories.
func (s *Service) GetHistory(ctx context.Context, orgID, itemID uuid.UUID, f HistoryFilter) ([]domain.StockMovement, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	q := s.DB.WithContext(ctx).
		Where("org_id = ? AND item_id = ?", orgID, itemID)
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.WarehouseID != nil {
		q = q.Where("(origin_warehouse_id = ? OR destination_warehouse_id = ?)", *f.WarehouseID, *f.WarehouseID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.Before != nil {
		q = q.Where("created_at < ?", *f.Before)
	}
	var movements []domain.StockMovement
	if err := q.Order("created_at DESC, movement_id DESC").Limit(limit).Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// DeriveBalance replays the movement log for one (item, warehouse) pair. The
// result must always equal the cached Stock row; VerifyBalance exposes the
// comparison.
func (s *Service) DeriveBalance(ctx context.Context, orgID, itemID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var movements []domain.StockMovement
	err := s.DB.WithContext(ctx).
		Where("org_id = ? AND item_id = ? AND (origin_warehouse_id = ? OR destination_warehouse_id = ?)",
			orgID, itemID, warehouseID, warehouseID).
		Find(&movements).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for i := range movements {
		sum = sum.Add(movements[i].SignedDelta(warehouseID))
	}
	return sum, nil
}

// VerifyResult reports a replayed balance against the cached one.
type VerifyResult struct {
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Cached      decimal.Decimal `json:"cached"`
	Derived     decimal.Decimal `json:"derived"`
	Match       bool            `json:"match"`
}

// VerifyBalance re-derives the balance from the movement log and compares it
// with the cached row. A mismatch means the ledger invariant was broken.
func (s *Service) VerifyBalance(ctx context.Context, orgID, itemID, warehouseID uuid.UUID) (*VerifyResult, error) {
	cached, err := s.GetBalance(ctx, orgID, itemID, &warehouseID)
	if err != nil {
		return nil, err
	}
	derived, err := s.DeriveBalance(ctx, orgID, itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Cached:      cached,
		Derived:     derived,
		Match:       cached.Equal(derived),
	}, nil
}
