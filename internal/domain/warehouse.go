package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Warehouse kinds: permanent depots and per-project mobile site stores.
const (
	WarehouseFixedDepot  = "fixed-depot"
	WarehouseProjectSite = "project-site"
)

// Warehouse is a physical or logical storage location, scoped by organization.
// A warehouse with nonzero balances cannot be deactivated; stock must be
// transferred out first.
type Warehouse struct {
	WarehouseID uuid.UUID `gorm:"column:warehouse_id;type:uuid;primaryKey" json:"warehouse_id"`
	OrgID       uuid.UUID `gorm:"column:org_id;type:uuid;not null;index" json:"org_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Kind        string    `gorm:"column:kind;type:varchar(20);not null;default:fixed-depot" json:"kind"`
	Address     string    `gorm:"column:address" json:"address"`
	Active      bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

func (w *Warehouse) BeforeCreate(tx *gorm.DB) error {
	if w.WarehouseID == uuid.Nil {
		w.WarehouseID = uuid.New()
	}
	return nil
}
