package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type OrderLineRepository interface {
	GetByID(ctx context.Context, orderID string, lineID uint) (*models.OrderLine, error)
	ReplaceForOrder(ctx context.Context, orderID string, lines []models.OrderLine) error
	UpdateStatus(ctx context.Context, lineID uint, status models.LineStatus) error
}

type orderLineRepository struct {
	db *gorm.DB
}

func NewOrderLineRepository(db *gorm.DB) OrderLineRepository {
	return &orderLineRepository{db: db}
}

func (r *orderLineRepository) GetByID(ctx context.Context, orderID string, lineID uint) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).Where("id = ? AND order_id = ?", lineID, orderID).First(&line).Error
	if err != nil {
		return nil, translate(err)
	}
	return &line, nil
}

// ReplaceForOrder drops the current lines of the order and writes lines in
// their slice order. IDs and positions are assigned here.
func (r *orderLineRepository) ReplaceForOrder(ctx context.Context, orderID string, lines []models.OrderLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", orderID).Delete(&models.OrderLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].OrderID = orderID
		lines[i].Position = i
	}
	return db.Create(&lines).Error
}

func (r *orderLineRepository) UpdateStatus(ctx context.Context, lineID uint, status models.LineStatus) error {
	res := r.db.WithContext(ctx).Model(&models.OrderLine{}).Where("id = ?", lineID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
