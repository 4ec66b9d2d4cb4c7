package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant_pos/internal/events"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/sirupsen/logrus"
)

// Deps carries what the order core services share. Cache, Events and
// Receipts are optional.
type Deps struct {
	Store    *repository.Store
	Cache    ActiveOrderCache
	Events   EventPublisher
	Receipts ReceiptDispatcher
	Log      logrus.FieldLogger
	CacheTTL time.Duration
	Now      func() time.Time
}

type ledger struct {
	store    *repository.Store
	cache    ActiveOrderCache
	events   EventPublisher
	receipts ReceiptDispatcher
	log      logrus.FieldLogger
	cacheTTL time.Duration
	now      func() time.Time
}

func newLedger(d Deps) *ledger {
	l := &ledger{
		store:    d.Store,
		cache:    d.Cache,
		events:   d.Events,
		receipts: d.Receipts,
		log:      d.Log,
		cacheTTL: d.CacheTTL,
		now:      d.Now,
	}
	if l.events == nil {
		l.events = events.NopPublisher{}
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.cacheTTL <= 0 {
		l.cacheTTL = 30 * time.Second
	}
	return l
}

type pendingEvent struct {
	eventType string
	orderID   string
	payload   interface{}
}

type outbox []pendingEvent

func (o *outbox) order(eventType string, order *models.Order, previous models.OrderStatus) {
	*o = append(*o, pendingEvent{eventType, order.ID, events.NewOrderPayload(order, previous)})
}

func (o *outbox) receipt(receipt *models.Receipt) {
	*o = append(*o, pendingEvent{events.ReceiptIssued, receipt.OrderID, events.NewReceiptPayload(receipt)})
}

// afterCommit runs once a unit of work has committed. Failures here are
// logged only; the committed state is authoritative.
func (l *ledger) afterCommit(ctx context.Context, branchID string, pending outbox) {
	if l.cache != nil {
		if err := l.cache.InvalidateActiveOrders(ctx, branchID); err != nil {
			l.log.WithError(err).WithField("branch_id", branchID).Warn("failed to invalidate active orders cache")
		}
	}
	for _, ev := range pending {
		if err := l.events.Publish(ctx, ev.eventType, ev.orderID, ev.payload); err != nil {
			l.log.WithError(err).WithFields(logrus.Fields{
				"event_type": ev.eventType,
				"order_id":   ev.orderID,
			}).Error("failed to publish order event")
		}
	}
}

// releaseTable frees the order's table if it is still bound to the order.
func (l *ledger) releaseTable(ctx context.Context, tx *repository.Store, order *models.Order) error {
	released, err := tx.Tables.Release(ctx, order.TableID, order.ID)
	if err != nil {
		return fmt.Errorf("release table: %w", err)
	}
	if released {
		return nil
	}

	fields := logrus.Fields{"table_id": order.TableID, "order_id": order.ID}
	if _, err := tx.Tables.GetByID(ctx, order.TableID); errors.Is(err, repository.ErrNotFound) {
		l.log.WithFields(fields).Warn("table of order no longer exists")
	} else if err != nil {
		return err
	} else {
		l.log.WithFields(fields).Debug("table bound to another order, left untouched")
	}
	return nil
}

// issueReceipt returns the receipt of the order, writing it first when
// none exists. The bool reports whether a receipt was written.
func (l *ledger) issueReceipt(ctx context.Context, tx *repository.Store, order *models.Order, email string) (*models.Receipt, bool, error) {
	existing, err := tx.Receipts.GetByOrderID(ctx, order.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	receipt := newReceipt(order, email, l.now())
	if err := tx.Receipts.Append(ctx, receipt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, conflictf("receipt for order %s already exists", order.ID)
		}
		return nil, false, err
	}
	return receipt, true, nil
}

// newReceipt snapshots the order. Lines are copied so later revisions of
// the order can never reach the receipt.
func newReceipt(order *models.Order, email string, at time.Time) *models.Receipt {
	items := make([]models.ReceiptLine, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, models.ReceiptLine{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
			Amount:   line.Amount,
		})
	}
	return &models.Receipt{
		OrderID:       order.ID,
		BranchID:      order.BranchID,
		TableNumber:   order.TableNumber,
		Items:         items,
		Subtotal:      order.Subtotal,
		Discount:      order.DiscountAmount,
		Tax:           order.Tax,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Paid:          true,
		Email:         email,
		CreatedAt:     at,
	}
}

func markPaid(order *models.Order, method models.PaymentMethod, at time.Time) {
	if order.Paid {
		return
	}
	order.Paid = true
	order.PaymentMethod = method
	order.PaymentDate = &at
}

func saveHeader(ctx context.Context, tx *repository.Store, order *models.Order, expectedVersion int) error {
	err := tx.Orders.UpdateHeader(ctx, order, expectedVersion)
	if errors.Is(err, repository.ErrStaleVersion) {
		return conflictf("order %s was modified concurrently", order.ID)
	}
	return err
}

func orderNotFound(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "order", ID: id}
	}
	return err
}
