package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant_pos/internal/models"

	"github.com/sirupsen/logrus"
)

type Publisher interface {
	PublishPersistent(ctx context.Context, exchange, routingKey string, body []byte) error
}

// ReceiptMessage is what the mailer consumes from the receipts queue.
type ReceiptMessage struct {
	ReceiptID     string               `json:"receipt_id"`
	OrderID       string               `json:"order_id"`
	BranchID      string               `json:"branch_id"`
	TableNumber   int                  `json:"table_number"`
	Email         string               `json:"email"`
	Items         []models.ReceiptLine `json:"items"`
	Subtotal      string               `json:"subtotal"`
	Discount      string               `json:"discount"`
	Tax           string               `json:"tax"`
	Total         string               `json:"total"`
	PaymentMethod string               `json:"payment_method"`
	IssuedAt      time.Time            `json:"issued_at"`
}

type ReceiptPublisher struct {
	pub Publisher
	log logrus.FieldLogger
}

func NewReceiptPublisher(pub Publisher, log logrus.FieldLogger) *ReceiptPublisher {
	return &ReceiptPublisher{pub: pub, log: log}
}

func NewReceiptMessage(r *models.Receipt) ReceiptMessage {
	return ReceiptMessage{
		ReceiptID:     r.ID,
		OrderID:       r.OrderID,
		BranchID:      r.BranchID,
		TableNumber:   r.TableNumber,
		Email:         r.Email,
		Items:         r.Items,
		Subtotal:      r.Subtotal.StringFixed(2),
		Discount:      r.Discount.StringFixed(2),
		Tax:           r.Tax.StringFixed(2),
		Total:         r.Total.StringFixed(2),
		PaymentMethod: string(r.PaymentMethod),
		IssuedAt:      r.CreatedAt,
	}
}

func (p *ReceiptPublisher) DispatchReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.Email == "" {
		return fmt.Errorf("receipt %s has no email address", receipt.ID)
	}

	body, err := json.Marshal(NewReceiptMessage(receipt))
	if err != nil {
		return fmt.Errorf("failed to marshal receipt message: %w", err)
	}

	if err := p.pub.PublishPersistent(ctx, ReceiptsExchange, ReceiptEmailKey, body); err != nil {
		return fmt.Errorf("failed to publish receipt: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"receipt_id":   receipt.ID,
		"routing_key":  ReceiptEmailKey,
		"message_size": len(body),
	}).Debug("receipt published")
	return nil
}
