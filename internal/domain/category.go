package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemCategory groups catalog items (cement, steel, electrical, ...), per organization.
type ItemCategory struct {
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	OrgID      uuid.UUID `gorm:"column:org_id;type:uuid;not null;uniqueIndex:idx_categories_org_name" json:"org_id"`
	Name       string    `gorm:"column:name;not null;uniqueIndex:idx_categories_org_name" json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (ItemCategory) TableName() string {
	return "item_categories"
}

func (c *ItemCategory) BeforeCreate(tx *gorm.DB) error {
	if c.CategoryID == uuid.Nil {
		c.CategoryID = uuid.New()
	}
	return nil
}
