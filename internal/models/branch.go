package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Branch is a physical location of a restaurant. Branch management lives
// outside this service; the table is kept for scoping and seed data.
type Branch struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RestaurantID string    `json:"restaurant_id" gorm:"type:varchar(36);not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (b *Branch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
