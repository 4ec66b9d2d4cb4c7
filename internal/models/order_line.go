package models

import (
	"github.com/shopspring/decimal"
)

// OrderLine is one menu item entry of an order. Name and Price are copied from
// the catalog when the line is written and never joined back.
type OrderLine struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	Position   int             `json:"position" gorm:"not null"`
	MenuItemID string          `json:"menu_item_id" gorm:"type:varchar(36);not null"`
	Name       string          `json:"name" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Quantity   int             `json:"quantity" gorm:"not null;default:1"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status     LineStatus      `json:"status" gorm:"type:varchar(20);default:'ordered'"`
}

// LineStatus represents the kitchen progress of a single order line
type LineStatus string

const (
	LineOrdered   LineStatus = "ordered"
	LinePreparing LineStatus = "preparing"
	LineReady     LineStatus = "ready"
	LineServed    LineStatus = "served"
	LineCancelled LineStatus = "cancelled"
)

func (s LineStatus) Valid() bool {
	switch s {
	case LineOrdered, LinePreparing, LineReady, LineServed, LineCancelled:
		return true
	}
	return false
}
