package reporting

import (
	"context"
	"sort"
	"time"

	"sitestock-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service provides the read-only views over the ledger: low-stock detection,
// valuation estimates, and per-project usage. Nothing here mutates state, and
// missing pricing data degrades to null values instead of failing the report.
type Service struct {
	DB *gorm.DB
}

// LowStockEntry is one item at or below its minimum-stock threshold.
type LowStockEntry struct {
	ItemID   uuid.UUID       `json:"item_id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	MinStock decimal.Decimal `json:"min_stock"`
	Balance  decimal.Decimal `json:"balance"`
	Deficit  decimal.Decimal `json:"deficit"`
}

// ValuationEntry is one item's estimated stock value. Value is null when the
// item has no reference price.
type ValuationEntry struct {
	ItemID         uuid.UUID        `json:"item_id"`
	SKU            string           `json:"sku"`
	Name           string           `json:"name"`
	Unit           string           `json:"unit"`
	Balance        decimal.Decimal  `json:"balance"`
	ReferencePrice *decimal.Decimal `json:"reference_price"`
	Value          *decimal.Decimal `json:"value"`
}

// Valuation is the full report with a total over priced items only.
type Valuation struct {
	Entries       []ValuationEntry `json:"entries"`
	TotalValue    decimal.Decimal  `json:"total_value"`
	UnpricedItems int              `json:"unpriced_items"`
}

// UsageEntry aggregates a project's egress consumption of one item.
type UsageEntry struct {
	ItemID        uuid.UUID       `json:"item_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	MovementCount int             `json:"movement_count"`
	LastUsedAt    time.Time       `json:"last_used_at"`
}

// ListLowStock reports items whose balance is at or below their minimum-stock
// threshold, worst deficit first, SKU ascending on ties. Items with a zero
// threshold are skipped. Scoped to one warehouse when warehouseID is set.
func (s *Service) ListLowStock(ctx context.Context, orgID uuid.UUID, warehouseID *uuid.UUID) ([]LowStockEntry, error) {
	var items []domain.Item
	if err := s.DB.WithContext(ctx).
		Where("org_id = ? AND active = ?", orgID, true).
		Find(&items).Error; err != nil {
		return nil, err
	}
	balances, err := s.balancesByItem(ctx, orgID, warehouseID)
	if err != nil {
		return nil, err
	}

	entries := make([]LowStockEntry, 0)
	for _, it := range items {
		if !it.MinStock.IsPositive() {
			continue
		}
		balance := balances[it.ItemID]
		if balance.GreaterThan(it.MinStock) {
			continue
		}
		entries = append(entries, LowStockEntry{
			ItemID:   it.ItemID,
			SKU:      it.SKU,
			Name:     it.Name,
			Unit:     it.Unit,
			MinStock: it.MinStock,
			Balance:  balance,
			Deficit:  it.MinStock.Sub(balance),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Deficit.Equal(entries[j].Deficit) {
			return entries[i].Deficit.GreaterThan(entries[j].Deficit)
		}
		return entries[i].SKU < entries[j].SKU
	})
	return entries, nil
}

// EstimateValue multiplies each item's balance by its reference price.
// Unpriced items are reported with a null value, never an error.
func (s *Service) EstimateValue(ctx context.Context, orgID uuid.UUID, warehouseID *uuid.UUID) (*Valuation, error) {
	var items []domain.Item
	if err := s.DB.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("sku ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	balances, err := s.balancesByItem(ctx, orgID, warehouseID)
	if err != nil {
		return nil, err
	}

	report := &Valuation{Entries: make([]ValuationEntry, 0, len(items)), TotalValue: decimal.Zero}
	for _, it := range items {
		balance := balances[it.ItemID]
		if balance.IsZero() {
			continue
		}
		entry := ValuationEntry{
			ItemID:         it.ItemID,
			SKU:            it.SKU,
			Name:           it.Name,
			Unit:           it.Unit,
			Balance:        balance,
			ReferencePrice: it.ReferencePrice,
		}
		if it.ReferencePrice != nil {
			v := balance.Mul(*it.ReferencePrice)
			entry.Value = &v
			report.TotalValue = report.TotalValue.Add(v)
		} else {
			report.UnpricedItems++
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

// GetUsageByProject aggregates egress movements linked to a project, grouped
// by item, most-consumed first.
func (s *Service) GetUsageByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]UsageEntry, error) {
	var movements []domain.StockMovement
	if err := s.DB.WithContext(ctx).
		Where("org_id = ? AND project_id = ? AND kind = ?", orgID, projectID, domain.MovementEgress).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	byItem := make(map[uuid.UUID]*UsageEntry)
	for _, mv := range movements {
		entry, ok := byItem[mv.ItemID]
		if !ok {
			entry = &UsageEntry{ItemID: mv.ItemID, TotalQuantity: decimal.Zero}
			byItem[mv.ItemID] = entry
		}
		entry.TotalQuantity = entry.TotalQuantity.Add(mv.Quantity)
		entry.MovementCount++
		if mv.CreatedAt.After(entry.LastUsedAt) {
			entry.LastUsedAt = mv.CreatedAt
		}
	}
	if len(byItem) == 0 {
		return []UsageEntry{}, nil
	}

	ids := make([]uuid.UUID, 0, len(byItem))
	for id := range byItem {
		ids = append(ids, id)
	}
	var items []domain.Item
	if err := s.DB.WithContext(ctx).Where("org_id = ? AND item_id IN ?", orgID, ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		if entry, ok := byItem[it.ItemID]; ok {
			entry.SKU = it.SKU
			entry.Name = it.Name
			entry.Unit = it.Unit
		}
	}

	out := make([]UsageEntry, 0, len(byItem))
	for _, entry := range byItem {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalQuantity.Equal(out[j].TotalQuantity) {
			return out[i].TotalQuantity.GreaterThan(out[j].TotalQuantity)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

// balancesByItem sums cached balances per item, optionally for one warehouse.
func (s *Service) balancesByItem(ctx context.Context, orgID uuid.UUID, warehouseID *uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	q := s.DB.WithContext(ctx).Where("org_id = ?", orgID)
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}
	var stocks []domain.Stock
	if err := q.Find(&stocks).Error; err != nil {
		return nil, err
	}
	balances := make(map[uuid.UUID]decimal.Decimal, len(stocks))
	for _, st := range stocks {
		balances[st.ItemID] = balances[st.ItemID].Add(st.Quantity)
	}
	return balances, nil
}
