package repository

import (
	"context"
	"time"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableFilter struct {
	BranchIDs []string // caller scope; nil means unrestricted
	BranchID  string
	Section   string
	Status    models.TableStatus
}

// TableRepository is the table registry: occupancy state plus the weak
// reference to the order currently seated at each table.
type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	GetByID(ctx context.Context, id string) (*models.Table, error)
	GetForUpdate(ctx context.Context, id string) (*models.Table, error)
	GetByNumber(ctx context.Context, branchID string, number int) (*models.Table, error)
	List(ctx context.Context, filter TableFilter) ([]models.Table, error)
	IsAvailable(ctx context.Context, id string) (bool, error)
	Bind(ctx context.Context, tableID, orderID string, at time.Time) (bool, error)
	Release(ctx context.Context, tableID, expectedOrderID string) (bool, error)
	Update(ctx context.Context, table *models.Table) error
	Delete(ctx context.Context, id string) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	return translate(r.db.WithContext(ctx).Create(table).Error)
}

func (r *tableRepository) GetByID(ctx context.Context, id string) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (r *tableRepository) GetForUpdate(ctx context.Context, id string) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (r *tableRepository) GetByNumber(ctx context.Context, branchID string, number int) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).Where("branch_id = ? AND number = ?", branchID, number).First(&table).Error
	if err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (r *tableRepository) List(ctx context.Context, filter TableFilter) ([]models.Table, error) {
	query := r.db.WithContext(ctx)
	if filter.BranchIDs != nil {
		query = query.Where("branch_id IN ?", filter.BranchIDs)
	}
	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Section != "" {
		query = query.Where("section = ?", filter.Section)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var tables []models.Table
	err := query.Order("number ASC").Find(&tables).Error
	return tables, err
}

func (r *tableRepository) IsAvailable(ctx context.Context, id string) (bool, error) {
	table, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return table.Status == models.TableAvailable, nil
}

// Bind seats orderID at the table if, and only if, the table is still
// available. A false result means another order got there first.
func (r *tableRepository) Bind(ctx context.Context, tableID, orderID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TableAvailable).
		Updates(map[string]interface{}{
			"status":           models.TableOccupied,
			"occupied_since":   at,
			"current_order_id": orderID,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release frees the table only while it is still bound to expectedOrderID.
// A table rebound to a newer order is left alone and false is returned.
func (r *tableRepository) Release(ctx context.Context, tableID, expectedOrderID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND current_order_id = ?", tableID, expectedOrderID).
		Updates(map[string]interface{}{
			"status":           models.TableAvailable,
			"occupied_since":   nil,
			"current_order_id": nil,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *tableRepository) Update(ctx context.Context, table *models.Table) error {
	return translate(r.db.WithContext(ctx).Save(table).Error)
}

func (r *tableRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Table{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
