package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Movement kinds. Quantity is always stored positive; the direction is carried
// by the kind and by which warehouse side is set.
const (
	MovementIngress    = "ingress"
	MovementEgress     = "egress"
	MovementTransfer   = "transfer"
	MovementAdjustment = "adjustment"
)

// StockMovement is one immutable entry of the movement log, the source of truth
// for all balances. Rows are never updated or deleted; corrections are new,
// compensating movements.
//
//   - ingress: destination only
//   - egress: origin only
//   - transfer: origin and destination, distinct
//   - adjustment: destination when positive, origin when negative
type StockMovement struct {
	MovementID             uuid.UUID       `gorm:"column:movement_id;type:uuid;primaryKey" json:"movement_id"`
	OrgID                  uuid.UUID       `gorm:"column:org_id;type:uuid;not null;index" json:"org_id"`
	ItemID                 uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index:idx_movements_item_created" json:"item_id"`
	Kind                   string          `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	Quantity               decimal.Decimal `gorm:"column:quantity;type:decimal(20,4);not null" json:"quantity"`
	OriginWarehouseID      *uuid.UUID      `gorm:"column:origin_warehouse_id;type:uuid;index" json:"origin_warehouse_id"`
	DestinationWarehouseID *uuid.UUID      `gorm:"column:destination_warehouse_id;type:uuid;index" json:"destination_warehouse_id"`
	ProjectID              *uuid.UUID      `gorm:"column:project_id;type:uuid;index" json:"project_id"`
	Reason                 string          `gorm:"column:reason" json:"reason"`
	CreatedBy              uuid.UUID       `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt              time.Time       `gorm:"index:idx_movements_item_created" json:"createdAt"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.MovementID == uuid.Nil {
		m.MovementID = uuid.New()
	}
	return nil
}

// SignedDelta returns the movement's effect on the balance of warehouseID:
// positive for the destination side, negative for the origin side, zero when
// the movement does not touch that warehouse.
func (m *StockMovement) SignedDelta(warehouseID uuid.UUID) decimal.Decimal {
	delta := decimal.Zero
	if m.DestinationWarehouseID != nil && *m.DestinationWarehouseID == warehouseID {
		delta = delta.Add(m.Quantity)
	}
	if m.OriginWarehouseID != nil && *m.OriginWarehouseID == warehouseID {
		delta = delta.Sub(m.Quantity)
	}
	return delta
}
