package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type published struct {
	exchange, key string
	body          []byte
}

type fakePublisher struct {
	err  error
	sent []published
}

func (f *fakePublisher) PublishPersistent(_ context.Context, exchange, key string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, body: body})
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleReceipt() *models.Receipt {
	return &models.Receipt{
		ID:            "rcpt-1",
		OrderID:       "order-1",
		BranchID:      "branch-1",
		TableNumber:   7,
		Email:         "guest@example.com",
		Subtotal:      decimal.RequireFromString("16.99"),
		Discount:      decimal.RequireFromString("1.7"),
		Tax:           decimal.RequireFromString("1.53"),
		Total:         decimal.RequireFromString("16.82"),
		PaymentMethod: models.PaymentCash,
		Items:         []models.ReceiptLine{{Name: "Lasagna", Quantity: 1, Price: decimal.RequireFromString("16.99"), Amount: decimal.RequireFromString("16.99")}},
	}
}

func TestDispatchReceipt(t *testing.T) {
	pub := &fakePublisher{}
	rp := NewReceiptPublisher(pub, quietLogger())

	if err := rp.DispatchReceipt(context.Background(), sampleReceipt()); err != nil {
		t.Fatalf("DispatchReceipt: %v", err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("published %d messages", len(pub.sent))
	}
	got := pub.sent[0]
	if got.exchange != ReceiptsExchange || got.key != ReceiptEmailKey {
		t.Errorf("routed to %s/%s", got.exchange, got.key)
	}

	var msg ReceiptMessage
	if err := json.Unmarshal(got.body, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Email != "guest@example.com" || msg.Discount != "1.70" || msg.Total != "16.82" || len(msg.Items) != 1 {
		t.Errorf("message = %+v", msg)
	}
}

func TestDispatchReceipt_Errors(t *testing.T) {
	t.Run("no email", func(t *testing.T) {
		pub := &fakePublisher{}
		r := sampleReceipt()
		r.Email = ""
		if err := NewReceiptPublisher(pub, quietLogger()).DispatchReceipt(context.Background(), r); err == nil {
			t.Fatal("expected error")
		}
		if len(pub.sent) != 0 {
			t.Error("message published without address")
		}
	})

	t.Run("broker failure", func(t *testing.T) {
		down := errors.New("channel closed")
		pub := &fakePublisher{err: down}
		err := NewReceiptPublisher(pub, quietLogger()).DispatchReceipt(context.Background(), sampleReceipt())
		if !errors.Is(err, down) {
			t.Fatalf("err = %v, want wrapped broker error", err)
		}
	})
}
