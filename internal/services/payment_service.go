package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"restaurant_pos/internal/events"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/sirupsen/logrus"
)

const receiptDispatchTimeout = 10 * time.Second

type PaymentRequest struct {
	OrderID string
	Method  models.PaymentMethod
	Email   string
}

type PaymentResult struct {
	Receipt *models.Receipt `json:"receipt"`
	Order   *models.Order   `json:"order"`
}

type PaymentService interface {
	ProcessPayment(ctx context.Context, caller models.CallerContext, req PaymentRequest) (*PaymentResult, error)
	GetReceiptForOrder(ctx context.Context, caller models.CallerContext, orderID string) (*models.Receipt, error)
}

type paymentService struct {
	*ledger
}

func NewPaymentService(deps Deps) PaymentService {
	return &paymentService{ledger: newLedger(deps)}
}

// ProcessPayment settles an order: it marks it paid and completed, frees
// its table and writes the receipt, all in one unit of work. Paying an
// order that already has a receipt returns that receipt unchanged.
func (s *paymentService) ProcessPayment(ctx context.Context, caller models.CallerContext, req PaymentRequest) (*PaymentResult, error) {
	if req.OrderID == "" {
		return nil, &ValidationError{Field: "order_id", Message: "is required"}
	}
	if req.Method == "" {
		req.Method = models.PaymentCash
	}
	if !req.Method.Valid() {
		return nil, &ValidationError{Field: "payment_method", Message: "unknown payment method"}
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return nil, &ValidationError{Field: "email", Message: "is not a valid address"}
	}

	var result PaymentResult
	var created bool
	var pending outbox
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders.GetForUpdate(ctx, req.OrderID)
		if err != nil {
			return orderNotFound(req.OrderID, err)
		}
		if err := requirePOS(caller, order.BranchID); err != nil {
			return err
		}
		if order.Status == models.OrderCancelled {
			return conflictf("cancelled order cannot be paid")
		}
		result.Order = order

		if !(order.Paid && order.Status == models.OrderCompleted) {
			previous := order.Status
			wasPaid := order.Paid
			markPaid(order, req.Method, s.now())
			order.Status = models.OrderCompleted
			if err := saveHeader(ctx, tx, order, order.Version); err != nil {
				return err
			}
			if err := s.releaseTable(ctx, tx, order); err != nil {
				return err
			}
			if previous != order.Status {
				pending.order(events.OrderStatusChanged, order, previous)
			}
			if !wasPaid {
				pending.order(events.OrderPaid, order, previous)
			}
		}

		result.Receipt, created, err = s.issueReceipt(ctx, tx, order, req.Email)
		if err != nil {
			return err
		}
		if created {
			pending.receipt(result.Receipt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"order_id":   result.Order.ID,
		"receipt_id": result.Receipt.ID,
		"total":      result.Receipt.Total.StringFixed(2),
	})
	if created {
		log.Info("payment processed")
	} else {
		log.Info("order already settled, returning existing receipt")
	}
	s.afterCommit(ctx, result.Order.BranchID, pending)

	if created && result.Receipt.Email != "" {
		s.dispatchReceipt(ctx, result.Receipt)
	}
	return &result, nil
}

// dispatchReceipt hands the receipt to the mailer. The payment has already
// committed, so failures only leave SentToEmail false.
func (s *paymentService) dispatchReceipt(ctx context.Context, receipt *models.Receipt) {
	log := s.log.WithFields(logrus.Fields{"receipt_id": receipt.ID, "email": receipt.Email})
	if s.receipts == nil {
		log.Warn("receipt dispatch disabled, email not sent")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptDispatchTimeout)
	defer cancel()

	if err := s.receipts.DispatchReceipt(ctx, receipt); err != nil {
		log.WithError(err).Error("failed to dispatch receipt")
		return
	}
	if err := s.store.Receipts.MarkSentToEmail(ctx, receipt.ID); err != nil {
		log.WithError(err).Error("failed to mark receipt as sent")
		return
	}
	receipt.SentToEmail = true
}

func (s *paymentService) GetReceiptForOrder(ctx context.Context, caller models.CallerContext, orderID string) (*models.Receipt, error) {
	receipt, err := s.store.Receipts.GetByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "receipt for order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}
	if err := requireBranch(caller, receipt.BranchID); err != nil {
		return nil, err
	}
	return receipt, nil
}
