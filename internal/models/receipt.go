package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt is the immutable financial record of a completed, paid order.
// Only SentToEmail changes after it is written.
type Receipt struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID       string          `json:"order_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	BranchID      string          `json:"branch_id" gorm:"type:varchar(36);not null;index"`
	TableNumber   int             `json:"table_number" gorm:"not null"`
	Items         []ReceiptLine   `json:"items" gorm:"foreignKey:ReceiptID"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:numeric(12,2);default:0"`
	Tax           decimal.Decimal `json:"tax" gorm:"type:numeric(12,2);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(10);not null"`
	Paid          bool            `json:"paid" gorm:"default:true"`
	Email         string          `json:"email"`
	SentToEmail   bool            `json:"sent_to_email" gorm:"default:false"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type ReceiptLine struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	ReceiptID string          `json:"-" gorm:"type:varchar(36);not null;index"`
	Position  int             `json:"-" gorm:"not null"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
}
