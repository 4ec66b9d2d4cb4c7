package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RestaurantID string          `json:"restaurant_id" gorm:"type:varchar(36);not null;index"`
	BranchID     *string         `json:"branch_id" gorm:"type:varchar(36);index"` // nil = restaurant-wide
	Title        string          `json:"title" gorm:"not null"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Category     string          `json:"category" gorm:"not null"`
	Status       MenuItemStatus  `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type MenuItemStatus string

const (
	MenuItemActive   MenuItemStatus = "active"
	MenuItemInactive MenuItemStatus = "inactive"
	MenuItemFeatured MenuItemStatus = "featured"
)
