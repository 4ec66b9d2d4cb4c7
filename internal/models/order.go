package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BranchID       string          `json:"branch_id" gorm:"type:varchar(36);not null;index"`
	TableID        string          `json:"table_id" gorm:"type:varchar(36);not null;index"`
	TableNumber    int             `json:"table_number" gorm:"not null"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(20);default:'preparing';index"`
	Items          []OrderLine     `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null;default:0"`
	DiscountType   DiscountType    `json:"discount_type" gorm:"type:varchar(10);default:'none'"`
	DiscountValue  decimal.Decimal `json:"discount_value" gorm:"type:numeric(12,2);default:0"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2);default:0"`
	Tax            decimal.Decimal `json:"tax" gorm:"type:numeric(12,2);default:0"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null;default:0"`
	Paid           bool            `json:"paid" gorm:"default:false"`
	PaymentMethod  PaymentMethod   `json:"payment_method" gorm:"type:varchar(10);default:''"`
	PaymentDate    *time.Time      `json:"payment_date"`
	CustomerName   string          `json:"customer_name" gorm:"default:'Guest'"`
	Modified       bool            `json:"modified" gorm:"default:false"`
	ServerID       string          `json:"server_id" gorm:"type:varchar(36)"`
	Version        int             `json:"version" gorm:"not null;default:1"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

type OrderStatus string

const (
	OrderPreparing OrderStatus = "preparing"
	OrderConfirmed OrderStatus = "confirmed"
	OrderServed    OrderStatus = "served"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// ActiveOrderStatuses are the statuses shown on the POS floor view.
var ActiveOrderStatuses = []OrderStatus{OrderPreparing, OrderConfirmed, OrderServed}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPreparing, OrderConfirmed, OrderServed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

type DiscountType string

const (
	DiscountNone    DiscountType = "none"
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

func (d DiscountType) Valid() bool {
	return d == DiscountNone || d == DiscountPercent || d == DiscountAmount
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
	PaymentQR     PaymentMethod = "qr"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentMobile, PaymentQR:
		return true
	}
	return false
}
