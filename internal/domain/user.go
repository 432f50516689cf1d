package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity collaborator: the ledger stores the acting user id on
// every mutation for audit but does not authorize the action itself.
type User struct {
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname     string         `gorm:"column:fullname;not null" json:"fullname"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	OrgID        *uuid.UUID     `gorm:"column:org_id;type:uuid" json:"org_id"`
	Role         string         `gorm:"column:role;not null;default:viewer" json:"role"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
