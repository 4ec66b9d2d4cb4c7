package repository

import (
	"context"
	"time"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	BranchIDs []string // caller scope; nil means unrestricted
	BranchID  string
	TableID   string
	Status    models.OrderStatus
	Offset    int
	Limit     int
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetForUpdate(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	ListActiveByBranch(ctx context.Context, branchID string) ([]models.Order, error)
	UpdateHeader(ctx context.Context, order *models.Order, expectedVersion int) error
	Delete(ctx context.Context, id string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func linesByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the order header and its lines.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items", linesByPosition).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetForUpdate loads the order and holds a row lock on it until the
// surrounding transaction ends.
func (r *orderRepository) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := db.Where("order_id = ?", id).Order("position ASC").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.BranchIDs != nil {
		query = query.Where("branch_id IN ?", filter.BranchIDs)
	}
	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.TableID != "" {
		query = query.Where("table_id = ?", filter.TableID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("Items", linesByPosition).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) ListActiveByBranch(ctx context.Context, branchID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", linesByPosition).
		Where("branch_id = ? AND status IN ?", branchID, models.ActiveOrderStatuses).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// UpdateHeader writes every derived and lifecycle field of the order,
// guarded by its version. Lines are not touched.
func (r *orderRepository) UpdateHeader(ctx context.Context, order *models.Order, expectedVersion int) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":          order.Status,
			"subtotal":        order.Subtotal,
			"discount_type":   order.DiscountType,
			"discount_value":  order.DiscountValue,
			"discount_amount": order.DiscountAmount,
			"tax":             order.Tax,
			"total":           order.Total,
			"paid":            order.Paid,
			"payment_method":  order.PaymentMethod,
			"payment_date":    order.PaymentDate,
			"customer_name":   order.CustomerName,
			"modified":        order.Modified,
			"version":         expectedVersion + 1,
			"updated_at":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	order.Version = expectedVersion + 1
	order.UpdatedAt = now
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderLine{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
