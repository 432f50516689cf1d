package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reservation statuses. "released" and "consumed" are terminal; a hold is never
// reactivated, a new reservation is created instead.
const (
	ReservationActive   = "active"
	ReservationReleased = "released"
	ReservationConsumed = "consumed"
)

// Reservation is a soft hold of item quantity for a project. It never moves
// physical stock; it only reduces the item's available quantity
// (total balance minus active reservations). Reservations are scoped to the
// organization and item, not to a warehouse.
type Reservation struct {
	ReservationID uuid.UUID       `gorm:"column:reservation_id;type:uuid;primaryKey" json:"reservation_id"`
	OrgID         uuid.UUID       `gorm:"column:org_id;type:uuid;not null;index" json:"org_id"`
	ItemID        uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index:idx_reservations_item_status" json:"item_id"`
	ProjectID     uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:decimal(20,4);not null" json:"quantity"`
	Status        string          `gorm:"column:status;type:varchar(10);not null;default:active;index:idx_reservations_item_status" json:"status"`
	CreatedBy     uuid.UUID       `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Reservation) TableName() string {
	return "reservations"
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ReservationID == uuid.Nil {
		r.ReservationID = uuid.New()
	}
	return nil
}

// Terminal reports whether the reservation can no longer change state.
func (r *Reservation) Terminal() bool {
	return r.Status == ReservationReleased || r.Status == ReservationConsumed
}
