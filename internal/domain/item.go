package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Unit is the fixed vocabulary of stockable units of measure.
// Mass, length, area, volume, count, plus named package units common on site.
const (
	UnitKilogram   = "kg"
	UnitTonne      = "t"
	UnitMeter      = "m"
	UnitSquareM    = "m2"
	UnitCubicM     = "m3"
	UnitLiter      = "l"
	UnitPiece      = "unit"
	UnitBag        = "bag"
	UnitBox        = "box"
	UnitRoll       = "roll"
	UnitSet        = "set"
	UnitPallet     = "pallet"
)

// Units lists every accepted unit, in display order.
var Units = []string{
	UnitKilogram, UnitTonne, UnitMeter, UnitSquareM, UnitCubicM, UnitLiter,
	UnitPiece, UnitBag, UnitBox, UnitRoll, UnitSet, UnitPallet,
}

var unitSet = func() map[string]bool {
	m := make(map[string]bool, len(Units))
	for _, u := range Units {
		m[u] = true
	}
	return m
}()

// IsValidUnit reports whether u is part of the unit vocabulary.
func IsValidUnit(u string) bool {
	return unitSet[u]
}

// Packaging is a named conversion from a purchase package to the item's base unit
// (e.g. "Pallet of 40" → 40 bag). Stored as a JSON list on the item.
type Packaging struct {
	Label  string          `json:"label"`
	Unit   string          `json:"unit"`
	Factor decimal.Decimal `json:"factor"`
}

// Item is a stockable catalog entry, scoped by organization. The SKU is unique
// within an organization. Items with movement history are never deleted, only
// deactivated; a deactivated item blocks new movements but stays readable.
type Item struct {
	ItemID         uuid.UUID        `gorm:"column:item_id;type:uuid;primaryKey" json:"item_id"`
	OrgID          uuid.UUID        `gorm:"column:org_id;type:uuid;not null;uniqueIndex:idx_items_org_sku" json:"org_id"`
	SKU            string           `gorm:"column:sku;not null;uniqueIndex:idx_items_org_sku" json:"sku"`
	Name           string           `gorm:"column:name;not null" json:"name"`
	CategoryID     *uuid.UUID       `gorm:"column:category_id;type:uuid" json:"category_id"`
	Unit           string           `gorm:"column:unit;type:varchar(10);not null" json:"unit"`
	MinStock       decimal.Decimal  `gorm:"column:min_stock;type:decimal(20,4);not null;default:0" json:"min_stock"`
	ReferencePrice *decimal.Decimal `gorm:"column:reference_price;type:decimal(20,4)" json:"reference_price"`
	Active         bool             `gorm:"column:active;not null;default:true" json:"active"`
	Packagings     datatypes.JSON   `gorm:"column:packagings" json:"packagings"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (Item) TableName() string {
	return "items"
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ItemID == uuid.Nil {
		i.ItemID = uuid.New()
	}
	return nil
}
