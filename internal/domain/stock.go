package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock is the cached balance of one item at one warehouse. It is a materialized
// view over stock_movements, updated in the same transaction as each movement,
// and must always equal the signed sum of movements for the pair. Quantity never
// goes below zero.
type Stock struct {
	StockID     uuid.UUID       `gorm:"column:stock_id;type:uuid;primaryKey" json:"stock_id"`
	OrgID       uuid.UUID       `gorm:"column:org_id;type:uuid;not null;index" json:"org_id"`
	ItemID      uuid.UUID       `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_stocks_item_warehouse" json:"item_id"`
	WarehouseID uuid.UUID       `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_stocks_item_warehouse" json:"warehouse_id"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:decimal(20,4);not null;default:0" json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Stock) TableName() string {
	return "stocks"
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.StockID == uuid.Nil {
		s.StockID = uuid.New()
	}
	return nil
}
