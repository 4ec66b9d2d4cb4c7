package events

import (
	"encoding/json"
	"time"

	"restaurant_pos/internal/models"
)

const (
	OrderOpened        = "OrderOpened"
	OrderRevised       = "OrderRevised"
	OrderStatusChanged = "OrderStatusChanged"
	OrderPaid          = "OrderPaid"
	ReceiptIssued      = "ReceiptIssued"
	OrderDeleted       = "OrderDeleted"
)

const EventVersion = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPayload struct {
	OrderID        string `json:"order_id"`
	BranchID       string `json:"branch_id"`
	TableID        string `json:"table_id"`
	TableNumber    int    `json:"table_number"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Subtotal       string `json:"subtotal"`
	Discount       string `json:"discount"`
	Tax            string `json:"tax"`
	Total          string `json:"total"`
	Paid           bool   `json:"paid"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	Version        int    `json:"version"`
}

type ReceiptPayload struct {
	ReceiptID     string `json:"receipt_id"`
	OrderID       string `json:"order_id"`
	BranchID      string `json:"branch_id"`
	TableNumber   int    `json:"table_number"`
	Total         string `json:"total"`
	PaymentMethod string `json:"payment_method"`
	Email         string `json:"email,omitempty"`
}

func NewOrderPayload(order *models.Order, previous models.OrderStatus) OrderPayload {
	p := OrderPayload{
		OrderID:       order.ID,
		BranchID:      order.BranchID,
		TableID:       order.TableID,
		TableNumber:   order.TableNumber,
		Status:        string(order.Status),
		Subtotal:      order.Subtotal.StringFixed(2),
		Discount:      order.DiscountAmount.StringFixed(2),
		Tax:           order.Tax.StringFixed(2),
		Total:         order.Total.StringFixed(2),
		Paid:          order.Paid,
		PaymentMethod: string(order.PaymentMethod),
		Version:       order.Version,
	}
	if previous != order.Status {
		p.PreviousStatus = string(previous)
	}
	return p
}

func NewReceiptPayload(receipt *models.Receipt) ReceiptPayload {
	return ReceiptPayload{
		ReceiptID:     receipt.ID,
		OrderID:       receipt.OrderID,
		BranchID:      receipt.BranchID,
		TableNumber:   receipt.TableNumber,
		Total:         receipt.Total.StringFixed(2),
		PaymentMethod: string(receipt.PaymentMethod),
		Email:         receipt.Email,
	}
}

// UnwrapPayload decodes the payload of an envelope into T.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	err := json.Unmarshal(payload, &t)
	return t, err
}
