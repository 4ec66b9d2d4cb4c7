package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Staff struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName    string    `json:"first_name" gorm:"not null"`
	LastName     string    `json:"last_name" gorm:"not null"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PINHash      string    `json:"-" gorm:"column:pin_hash;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null"` // owner, manager, waiter
	RestaurantID string    `json:"restaurant_id" gorm:"type:varchar(36);index"`
	BranchID     *string   `json:"branch_id" gorm:"type:varchar(36);index"`
	AccessPOS    bool      `json:"access_pos" gorm:"column:access_pos;default:false"`
	ManageTables bool      `json:"manage_tables" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleWaiter  Role = "waiter"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleManager || r == RoleWaiter
}
