package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

// ReceiptRepository is append-only apart from MarkSentToEmail.
type ReceiptRepository interface {
	Append(ctx context.Context, receipt *models.Receipt) error
	GetByID(ctx context.Context, id string) (*models.Receipt, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Receipt, error)
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
	MarkSentToEmail(ctx context.Context, id string) error
}

type receiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func receiptLinesByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *receiptRepository) Append(ctx context.Context, receipt *models.Receipt) error {
	for i := range receipt.Items {
		receipt.Items[i].Position = i
	}
	return translate(r.db.WithContext(ctx).Create(receipt).Error)
}

func (r *receiptRepository) GetByID(ctx context.Context, id string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).Preload("Items", receiptLinesByPosition).First(&receipt, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &receipt, nil
}

func (r *receiptRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).Preload("Items", receiptLinesByPosition).First(&receipt, "order_id = ?", orderID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &receipt, nil
}

func (r *receiptRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Receipt{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *receiptRepository) MarkSentToEmail(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Receipt{}).Where("id = ?", id).Update("sent_to_email", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
