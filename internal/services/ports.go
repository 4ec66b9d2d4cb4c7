package services

import (
	"context"
	"time"

	"restaurant_pos/internal/models"
)

// EventPublisher emits order lifecycle events after a unit of work commits.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, orderID string, payload interface{}) error
}

// ReceiptDispatcher hands a receipt to the mailer. Delivery itself happens
// elsewhere.
type ReceiptDispatcher interface {
	DispatchReceipt(ctx context.Context, receipt *models.Receipt) error
}

// ActiveOrderCache holds the active orders of each branch. Every
// invalidation bumps a per-branch generation; SetActiveOrders stores the
// list only while the generation still matches the one read before the
// list was loaded, and reports whether it did.
type ActiveOrderCache interface {
	GetActiveOrders(ctx context.Context, branchID string) ([]models.Order, bool, error)
	ActiveOrdersGeneration(ctx context.Context, branchID string) (int64, error)
	SetActiveOrders(ctx context.Context, branchID string, orders []models.Order, generation int64, ttl time.Duration) (bool, error)
	InvalidateActiveOrders(ctx context.Context, branchID string) error
}

type SessionStore interface {
	SaveSession(ctx context.Context, token string, caller models.CallerContext, ttl time.Duration) error
	LoadSession(ctx context.Context, token string) (*models.CallerContext, bool, error)
	DeleteSession(ctx context.Context, token string) error
}
