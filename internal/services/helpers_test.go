package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"restaurant_pos/internal/dbtest"
	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type recordedEvent struct {
	eventType string
	orderID   string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) Publish(_ context.Context, eventType, orderID string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{eventType, orderID})
	return nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.eventType
	}
	return out
}

type fakeDispatcher struct {
	err  error
	sent []*models.Receipt
}

func (f *fakeDispatcher) DispatchReceipt(_ context.Context, r *models.Receipt) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, r)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	orders      map[string][]models.Order
	generations map[string]int64
	invalidated []string

	// beforeSet runs once, outside the lock, before the next fill lands.
	beforeSet func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{orders: map[string][]models.Order{}, generations: map[string]int64{}}
}

func (f *fakeCache) GetActiveOrders(_ context.Context, branchID string) ([]models.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orders, ok := f.orders[branchID]
	return orders, ok, nil
}

func (f *fakeCache) ActiveOrdersGeneration(_ context.Context, branchID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generations[branchID], nil
}

func (f *fakeCache) SetActiveOrders(_ context.Context, branchID string, orders []models.Order, generation int64, _ time.Duration) (bool, error) {
	if hook := f.beforeSet; hook != nil {
		f.beforeSet = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generations[branchID] != generation {
		return false, nil
	}
	f.orders[branchID] = orders
	return true, nil
}

func (f *fakeCache) InvalidateActiveOrders(_ context.Context, branchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, branchID)
	f.generations[branchID]++
	f.invalidated = append(f.invalidated, branchID)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type harness struct {
	*dbtest.Fixture
	events   *fakeEvents
	receipts *fakeDispatcher
	cache    *fakeCache
	orders   OrderService
	payments PaymentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := dbtest.Seed(t)
	h := &harness{
		Fixture:  f,
		events:   &fakeEvents{},
		receipts: &fakeDispatcher{},
		cache:    newFakeCache(),
	}
	deps := Deps{
		Store:    f.Store,
		Cache:    h.cache,
		Events:   h.events,
		Receipts: h.receipts,
		Log:      quietLogger(),
	}
	h.orders = NewOrderService(deps)
	h.payments = NewPaymentService(deps)
	return h
}

func (h *harness) item(title string, qty int) OrderItemInput {
	return OrderItemInput{MenuItemID: h.Menu[title].ID, Quantity: qty}
}

// openSample opens the worked example: 2 x 8.99 + 1 x 16.99 with 10% off.
func (h *harness) openSample(t *testing.T, table *models.Table) *models.Order {
	t.Helper()
	order, err := h.orders.CreateOrder(context.Background(), h.Waiter(), CreateOrderRequest{
		BranchID:      h.Branch.ID,
		TableID:       table.ID,
		Items:         []OrderItemInput{h.item("Bruschetta", 2), h.item("Lasagna", 1)},
		DiscountType:  models.DiscountPercent,
		DiscountValue: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return order
}

func assertMoney(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", field, got.StringFixed(2), want)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

func ptr[T any](v T) *T { return &v }
