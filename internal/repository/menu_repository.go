package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuPrice is the catalog view the order core prices lines with.
type MenuPrice struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

type MenuRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	FindMany(ctx context.Context, ids []string) (map[string]MenuPrice, error)
	ListForBranch(ctx context.Context, restaurantID, branchID string) ([]models.MenuItem, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

// FindMany resolves ids against the catalog. Unknown ids are simply absent
// from the result; callers decide whether that is an error.
func (r *menuRepository) FindMany(ctx context.Context, ids []string) (map[string]MenuPrice, error) {
	prices := make(map[string]MenuPrice, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", unique).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		prices[item.ID] = MenuPrice{ID: item.ID, Name: item.Title, Price: item.Price}
	}
	return prices, nil
}

// ListForBranch returns the sellable items of a branch: its own items plus
// the restaurant-wide ones.
func (r *menuRepository) ListForBranch(ctx context.Context, restaurantID, branchID string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND (branch_id = ? OR branch_id IS NULL)", restaurantID, branchID).
		Where("status IN ?", []models.MenuItemStatus{models.MenuItemActive, models.MenuItemFeatured}).
		Order("title ASC").
		Find(&items).Error
	return items, err
}
