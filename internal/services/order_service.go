package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"restaurant_pos/internal/events"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type OrderItemInput struct {
	MenuItemID string
	Quantity   int
	Status     models.LineStatus
}

type CreateOrderRequest struct {
	BranchID      string
	TableID       string
	Items         []OrderItemInput
	CustomerName  string
	DiscountType  models.DiscountType
	DiscountValue decimal.Decimal
}

// UpdateOrderRequest is a partial revision. Nil fields are left unchanged.
// A non-nil but empty Items is only accepted together with a discount
// change, which then applies to the stored subtotal.
//
// The discount is validated against the new subtotal. An amount discount
// left unchanged that exceeds the revised subtotal fails with a
// ValidationError, so a revision that shrinks the order below its amount
// discount must lower the discount in the same request.
type UpdateOrderRequest struct {
	Items         []OrderItemInput
	DiscountType  *models.DiscountType
	DiscountValue *decimal.Decimal
	Status        *models.OrderStatus
	CustomerName  *string
	Paid          bool
	PaymentMethod models.PaymentMethod
}

func (r UpdateOrderRequest) discountChanged() bool {
	return r.DiscountType != nil || r.DiscountValue != nil
}

type ListOrdersQuery struct {
	BranchID string
	TableID  string
	Status   models.OrderStatus
	Page     int
	Limit    int
}

type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Pages  int            `json:"pages"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, caller models.CallerContext, req CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, caller models.CallerContext, id string) (*models.Order, error)
	ListOrders(ctx context.Context, caller models.CallerContext, q ListOrdersQuery) (*OrderPage, error)
	GetActiveOrders(ctx context.Context, caller models.CallerContext, branchID string) ([]models.Order, error)
	UpdateOrder(ctx context.Context, caller models.CallerContext, id string, req UpdateOrderRequest) (*models.Order, error)
	UpdateLineStatus(ctx context.Context, caller models.CallerContext, orderID string, lineID uint, status models.LineStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, caller models.CallerContext, id string) error
}

type orderService struct {
	*ledger
}

func NewOrderService(deps Deps) OrderService {
	return &orderService{ledger: newLedger(deps)}
}

func (s *orderService) CreateOrder(ctx context.Context, caller models.CallerContext, req CreateOrderRequest) (*models.Order, error) {
	if req.BranchID == "" {
		return nil, &ValidationError{Field: "branch_id", Message: "is required"}
	}
	if req.TableID == "" {
		return nil, &ValidationError{Field: "table_id", Message: "is required"}
	}
	if err := requirePOS(caller, req.BranchID); err != nil {
		return nil, err
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	discountType, discountValue := normalizeDiscount(req.DiscountType, req.DiscountValue)

	var order *models.Order
	var pending outbox
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		table, err := tx.Tables.GetForUpdate(ctx, req.TableID)
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "table", ID: req.TableID}
		}
		if err != nil {
			return err
		}
		if table.BranchID != req.BranchID {
			return &ValidationError{Field: "table_id", Message: "table does not belong to this branch"}
		}
		if table.Status != models.TableAvailable {
			return conflictf("table %d is %s", table.Number, table.Status)
		}

		lines, subtotal, err := priceLines(ctx, tx.Menu, req.Items)
		if err != nil {
			return err
		}
		if err := validateDiscount(discountType, discountValue, subtotal); err != nil {
			return err
		}

		now := s.now()
		order = &models.Order{
			ID:            uuid.NewString(),
			BranchID:      req.BranchID,
			TableID:       table.ID,
			TableNumber:   table.Number,
			Status:        models.OrderPreparing,
			Items:         lines,
			DiscountType:  discountType,
			DiscountValue: discountValue,
			CustomerName:  req.CustomerName,
			ServerID:      caller.StaffID,
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if order.CustomerName == "" {
			order.CustomerName = "Guest"
		}
		applyTotals(order, ComputeTotals(subtotal, discountType, discountValue))

		if err := tx.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		bound, err := tx.Tables.Bind(ctx, table.ID, order.ID, now)
		if err != nil {
			return fmt.Errorf("bind table: %w", err)
		}
		if !bound {
			return conflictf("table %d was taken by another order", table.Number)
		}

		pending.order(events.OrderOpened, order, order.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"branch_id": order.BranchID,
		"table":     order.TableNumber,
		"total":     order.Total.StringFixed(2),
	}).Info("order opened")
	s.afterCommit(ctx, order.BranchID, pending)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, caller models.CallerContext, id string) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, orderNotFound(id, err)
	}
	if err := requireBranch(caller, order.BranchID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, caller models.CallerContext, q ListOrdersQuery) (*OrderPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "unknown order status"}
	}
	if q.BranchID != "" {
		if err := requireBranch(caller, q.BranchID); err != nil {
			return nil, err
		}
	}

	page := &OrderPage{Orders: []models.Order{}, Page: q.Page}
	scope := caller.BranchScope()
	if scope != nil && len(scope) == 0 {
		return page, nil
	}

	orders, total, err := s.store.Orders.List(ctx, repository.OrderFilter{
		BranchIDs: scope,
		BranchID:  q.BranchID,
		TableID:   q.TableID,
		Status:    q.Status,
		Offset:    (q.Page - 1) * q.Limit,
		Limit:     q.Limit,
	})
	if err != nil {
		return nil, err
	}
	if orders != nil {
		page.Orders = orders
	}
	page.Total = total
	page.Pages = int(math.Ceil(float64(total) / float64(q.Limit)))
	return page, nil
}

// GetActiveOrders returns the non-terminal orders of a branch, oldest
// first, served from the cache when possible.
func (s *orderService) GetActiveOrders(ctx context.Context, caller models.CallerContext, branchID string) ([]models.Order, error) {
	if branchID == "" {
		return nil, &ValidationError{Field: "branch_id", Message: "is required"}
	}
	if err := requirePOS(caller, branchID); err != nil {
		return nil, err
	}

	if s.cache == nil {
		return s.loadActiveOrders(ctx, branchID)
	}

	orders, ok, err := s.cache.GetActiveOrders(ctx, branchID)
	if err != nil {
		s.log.WithError(err).WithField("branch_id", branchID).Warn("active orders cache read failed")
	} else if ok {
		return orders, nil
	}

	// The generation is read before the database so that an order
	// settled in between keeps the stale list out of the cache.
	generation, err := s.cache.ActiveOrdersGeneration(ctx, branchID)
	if err != nil {
		s.log.WithError(err).WithField("branch_id", branchID).Warn("active orders cache generation read failed")
		return s.loadActiveOrders(ctx, branchID)
	}

	orders, err = s.loadActiveOrders(ctx, branchID)
	if err != nil {
		return nil, err
	}

	stored, err := s.cache.SetActiveOrders(ctx, branchID, orders, generation, s.cacheTTL)
	if err != nil {
		s.log.WithError(err).WithField("branch_id", branchID).Warn("active orders cache write failed")
	} else if !stored {
		s.log.WithField("branch_id", branchID).Debug("active orders changed during load, cache left empty")
	}
	return orders, nil
}

func (s *orderService) loadActiveOrders(ctx context.Context, branchID string) ([]models.Order, error) {
	orders, err := s.store.Orders.ListActiveByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, caller models.CallerContext, id string, req UpdateOrderRequest) (*models.Order, error) {
	if err := validateRevision(&req); err != nil {
		return nil, err
	}
	revising := len(req.Items) > 0 || req.discountChanged()

	var order *models.Order
	var pending outbox
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		order, err = tx.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return orderNotFound(id, err)
		}
		if err := requirePOS(caller, order.BranchID); err != nil {
			return err
		}

		previous := order.Status
		wasPaid := order.Paid
		version := order.Version

		if previous.IsTerminal() {
			if revising {
				return conflictf("order is %s and can no longer be modified", previous)
			}
			if req.Status != nil && *req.Status != previous {
				return conflictf("order is %s and can no longer change status", previous)
			}
			if req.Paid && previous == models.OrderCancelled {
				return conflictf("cancelled order cannot be paid")
			}
		}

		linesChanged := false
		switch {
		case len(req.Items) > 0:
			lines, subtotal, err := priceLines(ctx, tx.Menu, req.Items)
			if err != nil {
				return err
			}
			discountType, discountValue := effectiveDiscount(order, req)
			if err := validateDiscount(discountType, discountValue, subtotal); err != nil {
				return err
			}
			order.Items = lines
			order.DiscountType = discountType
			order.DiscountValue = discountValue
			applyTotals(order, ComputeTotals(subtotal, discountType, discountValue))
			order.Modified = true
			linesChanged = true
		case req.discountChanged():
			// Discount-only revisions keep the stored subtotal, even if
			// catalog prices have moved since the lines were written.
			discountType, discountValue := effectiveDiscount(order, req)
			if err := validateDiscount(discountType, discountValue, order.Subtotal); err != nil {
				return err
			}
			order.DiscountType = discountType
			order.DiscountValue = discountValue
			applyTotals(order, ComputeTotals(order.Subtotal, discountType, discountValue))
			order.Modified = true
		}

		if req.CustomerName != nil && *req.CustomerName != "" {
			order.CustomerName = *req.CustomerName
		}
		if req.Status != nil {
			order.Status = *req.Status
		}
		if req.Paid {
			markPaid(order, req.PaymentMethod, s.now())
			if order.Status != models.OrderCancelled {
				order.Status = models.OrderCompleted
			}
		}

		if err := saveHeader(ctx, tx, order, version); err != nil {
			return err
		}
		if linesChanged {
			if err := tx.OrderLines.ReplaceForOrder(ctx, order.ID, order.Items); err != nil {
				return fmt.Errorf("replace order lines: %w", err)
			}
		}
		if order.Status.IsTerminal() {
			if err := s.releaseTable(ctx, tx, order); err != nil {
				return err
			}
		}

		if revising {
			pending.order(events.OrderRevised, order, previous)
		}
		if order.Status != previous {
			pending.order(events.OrderStatusChanged, order, previous)
		}
		if order.Paid && !wasPaid {
			pending.order(events.OrderPaid, order, previous)
		}
		if order.Status == models.OrderCompleted && order.Paid {
			receipt, created, err := s.issueReceipt(ctx, tx, order, "")
			if err != nil {
				return err
			}
			if created {
				pending.receipt(receipt)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
		"version":  order.Version,
	}).Info("order updated")
	s.afterCommit(ctx, order.BranchID, pending)
	return order, nil
}

func (s *orderService) UpdateLineStatus(ctx context.Context, caller models.CallerContext, orderID string, lineID uint, status models.LineStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "unknown line status"}
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		order, err = tx.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return orderNotFound(orderID, err)
		}
		if err := requirePOS(caller, order.BranchID); err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return conflictf("order is %s and can no longer be modified", order.Status)
		}

		if _, err := tx.OrderLines.GetByID(ctx, order.ID, lineID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NotFoundError{Resource: "order line", ID: fmt.Sprint(lineID)}
			}
			return err
		}
		if err := tx.OrderLines.UpdateStatus(ctx, lineID, status); err != nil {
			return err
		}
		for i := range order.Items {
			if order.Items[i].ID == lineID {
				order.Items[i].Status = status
			}
		}
		return saveHeader(ctx, tx, order, order.Version)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, order.BranchID, nil)
	return order, nil
}

// DeleteOrder removes an order that never produced a receipt. Only owners
// and managers may delete.
func (s *orderService) DeleteOrder(ctx context.Context, caller models.CallerContext, id string) error {
	var order *models.Order
	var pending outbox
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		order, err = tx.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return orderNotFound(id, err)
		}
		if err := requireBranch(caller, order.BranchID); err != nil {
			return err
		}
		if err := requireRole(caller, models.RoleOwner, models.RoleManager); err != nil {
			return err
		}

		issued, err := tx.Receipts.ExistsForOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if issued {
			return conflictf("order %s has an issued receipt and cannot be deleted", order.ID)
		}

		if err := tx.Orders.Delete(ctx, order.ID); err != nil {
			return orderNotFound(id, err)
		}
		if err := s.releaseTable(ctx, tx, order); err != nil {
			return err
		}
		pending.order(events.OrderDeleted, order, order.Status)
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("order_id", id).Info("order deleted")
	s.afterCommit(ctx, order.BranchID, pending)
	return nil
}

func validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return &ValidationError{Field: "items", Message: "order must have at least one item"}
	}
	for i, item := range items {
		if item.MenuItemID == "" {
			return &ValidationError{Field: fmt.Sprintf("items[%d].menu_item_id", i), Message: "is required"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"}
		}
		if item.Status != "" && !item.Status.Valid() {
			return &ValidationError{Field: fmt.Sprintf("items[%d].status", i), Message: "unknown line status"}
		}
	}
	return nil
}

func validateRevision(req *UpdateOrderRequest) error {
	if req.Items != nil && len(req.Items) == 0 && !req.discountChanged() {
		return &ValidationError{Field: "items", Message: "order must have at least one item"}
	}
	if len(req.Items) > 0 {
		if err := validateItems(req.Items); err != nil {
			return err
		}
	}
	if req.DiscountType != nil && !req.DiscountType.Valid() {
		return &ValidationError{Field: "discount_type", Message: "must be one of none, percent, amount"}
	}
	if req.Status != nil && !req.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown order status"}
	}
	if req.Paid {
		if req.PaymentMethod == "" {
			req.PaymentMethod = models.PaymentCash
		}
		if !req.PaymentMethod.Valid() {
			return &ValidationError{Field: "payment_method", Message: "unknown payment method"}
		}
	}
	return nil
}

// priceLines snapshots catalog names and prices into new order lines.
func priceLines(ctx context.Context, menu repository.MenuRepository, items []OrderItemInput) ([]models.OrderLine, decimal.Decimal, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.MenuItemID
	}
	prices, err := menu.FindMany(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("look up menu items: %w", err)
	}

	lines := make([]models.OrderLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		price, ok := prices[item.MenuItemID]
		if !ok {
			return nil, decimal.Zero, &NotFoundError{Resource: "menu item", ID: item.MenuItemID}
		}
		status := item.Status
		if status == "" {
			status = models.LineOrdered
		}
		amount := LineAmount(price.Price, item.Quantity)
		lines = append(lines, models.OrderLine{
			MenuItemID: price.ID,
			Name:       price.Name,
			Price:      price.Price,
			Quantity:   item.Quantity,
			Amount:     amount,
			Status:     status,
		})
		subtotal = subtotal.Add(amount)
	}
	return lines, subtotal, nil
}

func normalizeDiscount(t models.DiscountType, v decimal.Decimal) (models.DiscountType, decimal.Decimal) {
	if t == "" {
		t = models.DiscountNone
	}
	if t == models.DiscountNone {
		return t, decimal.Zero
	}
	return t, v.Round(2)
}

func effectiveDiscount(order *models.Order, req UpdateOrderRequest) (models.DiscountType, decimal.Decimal) {
	t, v := order.DiscountType, order.DiscountValue
	if req.DiscountType != nil {
		t = *req.DiscountType
	}
	if req.DiscountValue != nil {
		v = *req.DiscountValue
	}
	return normalizeDiscount(t, v)
}
