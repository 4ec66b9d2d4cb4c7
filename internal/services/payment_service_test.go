package services

import (
	"context"
	"errors"
	"testing"

	"restaurant_pos/internal/events"
	"restaurant_pos/internal/models"
)

func TestProcessPayment_IssuesMatchingReceipt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.openSample(t, h.Tables[0])

	result, err := h.payments.ProcessPayment(ctx, h.Waiter(), PaymentRequest{OrderID: order.ID, Method: models.PaymentQR})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}

	paid := result.Order
	if paid.Status != models.OrderCompleted || !paid.Paid || paid.PaymentMethod != models.PaymentQR || paid.PaymentDate == nil {
		t.Fatalf("order = %s paid=%v method=%s", paid.Status, paid.Paid, paid.PaymentMethod)
	}

	r := result.Receipt
	if r.OrderID != order.ID || r.BranchID != order.BranchID || r.TableNumber != order.TableNumber {
		t.Errorf("receipt header = %+v", r)
	}
	assertMoney(t, "subtotal", r.Subtotal, "34.97")
	assertMoney(t, "discount", r.Discount, "3.50")
	assertMoney(t, "tax", r.Tax, "3.15")
	assertMoney(t, "total", r.Total, "34.62")
	if r.PaymentMethod != models.PaymentQR || !r.Paid {
		t.Errorf("receipt payment = %s paid=%v", r.PaymentMethod, r.Paid)
	}
	if len(r.Items) != len(order.Items) {
		t.Fatalf("receipt lines = %d, want %d", len(r.Items), len(order.Items))
	}
	for i, line := range order.Items {
		got := r.Items[i]
		if got.Name != line.Name || got.Quantity != line.Quantity || !got.Price.Equal(line.Price) || !got.Amount.Equal(line.Amount) {
			t.Errorf("receipt line %d = %+v, want %+v", i, got, line)
		}
	}

	table := h.Table(t, h.Tables[0].ID)
	if table.Status != models.TableAvailable || table.CurrentOrderID != nil {
		t.Errorf("table = %s/%v, want released", table.Status, table.CurrentOrderID)
	}

	stored, err := h.Store.Receipts.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("load receipt: %v", err)
	}
	if len(stored.Items) != 2 || stored.Items[0].Name != "Bruschetta" {
		t.Errorf("stored receipt lines = %+v", stored.Items)
	}
	if len(h.receipts.sent) != 0 {
		t.Errorf("receipt dispatched without an email address")
	}

	types := h.events.types()
	if types[len(types)-1] != events.ReceiptIssued {
		t.Errorf("last event = %s, want ReceiptIssued", types[len(types)-1])
	}
}

func TestProcessPayment_SecondPaymentReturnsSameReceipt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.openSample(t, h.Tables[0])

	first, err := h.payments.ProcessPayment(ctx, h.Waiter(), PaymentRequest{OrderID: order.ID, Method: models.PaymentCash})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	eventsAfterFirst := len(h.events.types())

	second, err := h.payments.ProcessPayment(ctx, h.Waiter(), PaymentRequest{OrderID: order.ID, Method: models.PaymentCard})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if second.Receipt.ID != first.Receipt.ID {
		t.Errorf("second receipt %s, want %s", second.Receipt.ID, first.Receipt.ID)
	}
	if second.Order.PaymentMethod != models.PaymentCash {
		t.Errorf("payment method changed to %s", second.Order.PaymentMethod)
	}

	var count int64
	h.DB.Model(&models.Receipt{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 1 {
		t.Errorf("receipts = %d, want 1", count)
	}
	if got := len(h.events.types()); got != eventsAfterFirst {
		t.Errorf("second payment emitted %d events", got-eventsAfterFirst)
	}
}

func TestProcessPayment_CompletedUnpaidOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.openSample(t, h.Tables[0])
	if _, err := h.orders.UpdateOrder(ctx, h.Waiter(), order.ID, UpdateOrderRequest{Status: ptr(models.OrderCompleted)}); err != nil {
		t.Fatal(err)
	}

	result, err := h.payments.ProcessPayment(ctx, h.Waiter(), PaymentRequest{OrderID: order.ID})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if !result.Order.Paid || result.Order.PaymentMethod != models.PaymentCash {
		t.Errorf("order paid=%v method=%s", result.Order.Paid, result.Order.PaymentMethod)
	}
}

func TestProcessPayment_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cancelled := h.openSample(t, h.Tables[0])
	if _, err := h.orders.UpdateOrder(ctx, h.Waiter(), cancelled.ID, UpdateOrderRequest{Status: ptr(models.OrderCancelled)}); err != nil {
		t.Fatal(err)
	}
	open := h.openSample(t, h.Tables[1])

	tests := []struct {
		name   string
		caller models.CallerContext
		req    PaymentRequest
		want   error
	}{
		{"cancelled order", h.Waiter(), PaymentRequest{OrderID: cancelled.ID}, ErrConflict},
		{"missing order", h.Waiter(), PaymentRequest{OrderID: "ghost"}, ErrNotFound},
		{"no order id", h.Waiter(), PaymentRequest{}, ErrValidation},
		{"unknown method", h.Waiter(), PaymentRequest{OrderID: open.ID, Method: "iou"}, ErrValidation},
		{"bad email", h.Waiter(), PaymentRequest{OrderID: open.ID, Email: "nobody"}, ErrValidation},
		{"other branch staff", models.CallerContext{Role: models.RoleWaiter, Branches: []string{h.OtherBranch.ID},
			Permissions: []models.Permission{models.PermissionAccessPOS}}, PaymentRequest{OrderID: open.ID}, ErrAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.payments.ProcessPayment(ctx, tt.caller, tt.req)
			assertErrorIs(t, err, tt.want)
		})
	}

	var count int64
	h.DB.Model(&models.Receipt{}).Count(&count)
	if count != 0 {
		t.Errorf("receipts = %d after rejected payments", count)
	}
}

func TestProcessPayment_EmailHandOff(t *testing.T) {
	t.Run("dispatched", func(t *testing.T) {
		h := newHarness(t)
		order := h.openSample(t, h.Tables[0])

		result, err := h.payments.ProcessPayment(context.Background(), h.Waiter(), PaymentRequest{OrderID: order.ID, Email: "guest@example.com"})
		if err != nil {
			t.Fatalf("ProcessPayment: %v", err)
		}
		if len(h.receipts.sent) != 1 || h.receipts.sent[0].Email != "guest@example.com" {
			t.Fatalf("dispatched = %+v", h.receipts.sent)
		}
		if !result.Receipt.SentToEmail {
			t.Error("result receipt not marked sent")
		}
		stored, _ := h.Store.Receipts.GetByOrderID(context.Background(), order.ID)
		if !stored.SentToEmail {
			t.Error("stored receipt not marked sent")
		}
	})

	t.Run("dispatch failure keeps payment", func(t *testing.T) {
		h := newHarness(t)
		h.receipts.err = errors.New("broker down")
		order := h.openSample(t, h.Tables[0])

		result, err := h.payments.ProcessPayment(context.Background(), h.Waiter(), PaymentRequest{OrderID: order.ID, Email: "guest@example.com"})
		if err != nil {
			t.Fatalf("ProcessPayment: %v", err)
		}
		if result.Receipt.SentToEmail {
			t.Error("receipt marked sent despite dispatch failure")
		}
		stored, _ := h.Store.Receipts.GetByOrderID(context.Background(), order.ID)
		if stored.SentToEmail || stored.Email != "guest@example.com" {
			t.Errorf("stored receipt sent=%v email=%q", stored.SentToEmail, stored.Email)
		}
	})
}

func TestProcessPayment_MissingTableIsTolerated(t *testing.T) {
	h := newHarness(t)
	order := h.openSample(t, h.Tables[0])
	if err := h.DB.Delete(&models.Table{}, "id = ?", h.Tables[0].ID).Error; err != nil {
		t.Fatal(err)
	}

	result, err := h.payments.ProcessPayment(context.Background(), h.Waiter(), PaymentRequest{OrderID: order.ID})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if result.Receipt == nil || result.Order.Status != models.OrderCompleted {
		t.Errorf("result = %+v", result)
	}
}

func TestGetReceiptForOrder_NotFound(t *testing.T) {
	h := newHarness(t)
	order := h.openSample(t, h.Tables[0])

	_, err := h.payments.GetReceiptForOrder(context.Background(), h.Waiter(), order.ID)
	assertErrorIs(t, err, ErrNotFound)
}
