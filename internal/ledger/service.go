package ledger

import (
	"context"

	"sitestock-backend/internal/domain"
	"sitestock-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service applies stock movements. Every mutation is one transaction that
// appends exactly one movement row and updates the affected balance row(s) by
// the same delta; the movement log and the balance table never disagree.
type Service struct {
	DB *gorm.DB
}

// IngressInput receives stock into a destination warehouse.
type IngressInput struct {
	OrgID       uuid.UUID
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Quantity    decimal.Decimal
	Reason      string
	CreatedBy   uuid.UUID
}

// EgressInput consumes stock from an origin warehouse, optionally for a project.
type EgressInput struct {
	OrgID       uuid.UUID
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Quantity    decimal.Decimal
	ProjectID   *uuid.UUID
	Reason      string
	CreatedBy   uuid.UUID
}

// TransferInput moves stock between two warehouses of the same organization.
type TransferInput struct {
	OrgID         uuid.UUID
	ItemID        uuid.UUID
	OriginID      uuid.UUID
	DestinationID uuid.UUID
	Quantity      decimal.Decimal
	Reason        string
	CreatedBy     uuid.UUID
}

// AdjustInput corrects a balance by a signed delta. Reason is mandatory.
type AdjustInput struct {
	OrgID       uuid.UUID
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Delta       decimal.Decimal
	Reason      string
	CreatedBy   uuid.UUID
}

// Ingress increases the destination balance by quantity.
func (s *Service) Ingress(ctx context.Context, in IngressInput) (*domain.StockMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.InvalidQuantity("movement", "quantity")
	}
	var mv *domain.StockMovement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := movableItem(tx, in.OrgID, in.ItemID); err != nil {
			return err
		}
		wh, err := activeWarehouse(tx, in.OrgID, in.WarehouseID)
		if err != nil {
			return err
		}
		stock, err := lockStock(tx, in.OrgID, in.ItemID, wh.WarehouseID)
		if err != nil {
			return err
		}
		stock.Quantity = stock.Quantity.Add(in.Quantity)
		if err := tx.Save(stock).Error; err != nil {
			return err
		}
		mv = &domain.StockMovement{
			OrgID:                  in.OrgID,
			ItemID:                 in.ItemID,
			Kind:                   domain.MovementIngress,
			Quantity:               in.Quantity,
			DestinationWarehouseID: &wh.WarehouseID,
			Reason:                 in.Reason,
			CreatedBy:              in.CreatedBy,
		}
		return tx.Create(mv).Error
	})
	if err != nil {
		return nil, err
	}
	return mv, nil
}

// Egress decreases the origin balance by quantity. Fails when quantity exceeds
// the available quantity: both the physical balance at the warehouse and the
// item-wide balance minus active reservations must cover it.
func (s *Service) Egress(ctx context.Context, in EgressInput) (*domain.StockMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.InvalidQuantity("movement", "quantity")
	}
	var mv *domain.StockMovement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := movableItem(tx, in.OrgID, in.ItemID); err != nil {
			return err
		}
		wh, err := activeWarehouse(tx, in.OrgID, in.WarehouseID)
		if err != nil {
			return err
		}
		stocks, err := lockItemStocks(tx, in.OrgID, in.ItemID)
		if err != nil {
			return err
		}
		origin := findStock(stocks, wh.WarehouseID)
		if origin == nil || in.Quantity.GreaterThan(origin.Quantity) {
			return apperror.InsufficientAvailable(in.ItemID.String())
		}
		available, err := unreservedTotal(tx, in.OrgID, in.ItemID, stocks)
		if err != nil {
			return err
		}
		if in.Quantity.GreaterThan(available) {
			return apperror.InsufficientAvailable(in.ItemID.String())
		}
		origin.Quantity = origin.Quantity.Sub(in.Quantity)
		if err := tx.Save(origin).Error; err != nil {
			return err
		}
		mv = &domain.StockMovement{
			OrgID:             in.OrgID,
			ItemID:            in.ItemID,
			Kind:              domain.MovementEgress,
			Quantity:          in.Quantity,
			OriginWarehouseID: &wh.WarehouseID,
			ProjectID:         in.ProjectID,
			Reason:            in.Reason,
			CreatedBy:         in.CreatedBy,
		}
		return tx.Create(mv).Error
	})
	if err != nil {
		return nil, err
	}
	return mv, nil
}

// Transfer atomically decreases origin and increases destination by the same
// quantity. Quantity is neither created nor destroyed.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (*domain.StockMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.InvalidQuantity("movement", "quantity")
	}
	if in.OriginID == in.DestinationID {
		return nil, apperror.SameWarehouse(in.OriginID.String())
	}
	var mv *domain.StockMovement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := movableItem(tx, in.OrgID, in.ItemID); err != nil {
			return err
		}
		origin, err := activeWarehouse(tx, in.OrgID, in.OriginID)
		if err != nil {
			return err
		}
		dest, err := activeWarehouse(tx, in.OrgID, in.DestinationID)
		if err != nil {
			return err
		}
		// lockItemStocks orders by warehouse id, so concurrent opposite-direction
		// transfers acquire the two row locks in the same order.
		stocks, err := lockItemStocks(tx, in.OrgID, in.ItemID)
		if err != nil {
			return err
		}
		from := findStock(stocks, origin.WarehouseID)
		if from == nil || in.Quantity.GreaterThan(from.Quantity) {
			return apperror.InsufficientAvailable(in.ItemID.String())
		}
		available, err := unreservedTotal(tx, in.OrgID, in.ItemID, stocks)
		if err != nil {
			return err
		}
		if in.Quantity.GreaterThan(available) {
			return apperror.InsufficientAvailable(in.ItemID.String())
		}
		from.Quantity = from.Quantity.Sub(in.Quantity)
		if err := tx.Save(from).Error; err != nil {
			return err
		}
		to := findStock(stocks, dest.WarehouseID)
		if to == nil {
			to = &domain.Stock{OrgID: in.OrgID, ItemID: in.ItemID, WarehouseID: dest.WarehouseID, Quantity: decimal.Zero}
		}
		to.Quantity = to.Quantity.Add(in.Quantity)
		if err := tx.Save(to).Error; err != nil {
			return err
		}
		mv = &domain.StockMovement{
			OrgID:                  in.OrgID,
			ItemID:                 in.ItemID,
			Kind:                   domain.MovementTransfer,
			Quantity:               in.Quantity,
			OriginWarehouseID:      &origin.WarehouseID,
			DestinationWarehouseID: &dest.WarehouseID,
			Reason:                 in.Reason,
			CreatedBy:              in.CreatedBy,
		}
		return tx.Create(mv).Error
	})
	if err != nil {
		return nil, err
	}
	return mv, nil
}

// Adjust records a signed count correction (shrinkage, stocktake delta). A
// negative adjustment never drives the balance below zero.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (*domain.StockMovement, error) {
	if in.Delta.IsZero() {
		return nil, apperror.InvalidQuantity("movement", "delta")
	}
	if in.Reason == "" {
		return nil, apperror.MissingField("movement", "reason", "Adjustment reason is required")
	}
	var mv *domain.StockMovement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := movableItem(tx, in.OrgID, in.ItemID); err != nil {
			return err
		}
		wh, err := activeWarehouse(tx, in.OrgID, in.WarehouseID)
		if err != nil {
			return err
		}
		stock, err := lockStock(tx, in.OrgID, in.ItemID, wh.WarehouseID)
		if err != nil {
			return err
		}
		next := stock.Quantity.Add(in.Delta)
		if next.IsNegative() {
			return apperror.InsufficientBalance(in.ItemID.String())
		}
		stock.Quantity = next
		if err := tx.Save(stock).Error; err != nil {
			return err
		}
		mv = &domain.StockMovement{
			OrgID:     in.OrgID,
			ItemID:    in.ItemID,
			Kind:      domain.MovementAdjustment,
			Quantity:  in.Delta.Abs(),
			Reason:    in.Reason,
			CreatedBy: in.CreatedBy,
		}
		if in.Delta.IsPositive() {
			mv.DestinationWarehouseID = &wh.WarehouseID
		} else {
			mv.OriginWarehouseID = &wh.WarehouseID
		}
		return tx.Create(mv).Error
	})
	if err != nil {
		return nil, err
	}
	return mv, nil
}

// movableItem loads an org item and rejects movements on deactivated ones.
func movableItem(tx *gorm.DB, orgID, itemID uuid.UUID) (*domain.Item, error) {
	var item domain.Item
	if err := tx.Where("org_id = ? AND item_id = ?", orgID, itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("item", itemID.String())
		}
		return nil, err
	}
	if !item.Active {
		return nil, apperror.InvalidState("item", itemID.String(), "Item is deactivated")
	}
	return &item, nil
}

func activeWarehouse(tx *gorm.DB, orgID, warehouseID uuid.UUID) (*domain.Warehouse, error) {
	var wh domain.Warehouse
	if err := tx.Where("org_id = ? AND warehouse_id = ?", orgID, warehouseID).First(&wh).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("warehouse", warehouseID.String())
		}
		return nil, err
	}
	if !wh.Active {
		return nil, apperror.InvalidState("warehouse", warehouseID.String(), "Warehouse is deactivated")
	}
	return &wh, nil
}

// ForUpdate adds a row lock on dialects that support it. SQLite (in-memory
// tests) locks at the database level and rejects the FOR UPDATE syntax.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockStock loads one balance row FOR UPDATE, creating a zero row on first use.
func lockStock(tx *gorm.DB, orgID, itemID, warehouseID uuid.UUID) (*domain.Stock, error) {
	var stock domain.Stock
	err := ForUpdate(tx).
		Where("org_id = ? AND item_id = ? AND warehouse_id = ?", orgID, itemID, warehouseID).
		First(&stock).Error
	if err == gorm.ErrRecordNotFound {
		stock = domain.Stock{OrgID: orgID, ItemID: itemID, WarehouseID: warehouseID, Quantity: decimal.Zero}
		if err := tx.Create(&stock).Error; err != nil {
			return nil, err
		}
		return &stock, nil
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// lockItemStocks locks every balance row of an item, in warehouse-id order so
// concurrent transfers cannot deadlock on each other.
func lockItemStocks(tx *gorm.DB, orgID, itemID uuid.UUID) ([]domain.Stock, error) {
	var stocks []domain.Stock
	err := ForUpdate(tx).
		Where("org_id = ? AND item_id = ?", orgID, itemID).
		Order("warehouse_id").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

func findStock(stocks []domain.Stock, warehouseID uuid.UUID) *domain.Stock {
	for i := range stocks {
		if stocks[i].WarehouseID == warehouseID {
			return &stocks[i]
		}
	}
	return nil
}

// unreservedTotal returns the item-wide balance minus active reservations.
func unreservedTotal(tx *gorm.DB, orgID, itemID uuid.UUID, stocks []domain.Stock) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, st := range stocks {
		total = total.Add(st.Quantity)
	}
	reserved, err := ActiveReserved(tx, orgID, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Sub(reserved), nil
}

// ActiveReserved sums the quantities of active reservations for an item.
func ActiveReserved(tx *gorm.DB, orgID, itemID uuid.UUID) (decimal.Decimal, error) {
	var rows []domain.Reservation
	if err := tx.Where("org_id = ? AND item_id = ? AND status = ?", orgID, itemID, domain.ReservationActive).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Quantity)
	}
	return sum, nil
}
