package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	GetByID(ctx context.Context, id string) (*models.Branch, error)
	ListIDsByRestaurant(ctx context.Context, restaurantID string) ([]string, error)
}

type branchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, branch *models.Branch) error {
	return translate(r.db.WithContext(ctx).Create(branch).Error)
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &branch, nil
}

func (r *branchRepository) ListIDsByRestaurant(ctx context.Context, restaurantID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Branch{}).Where("restaurant_id = ?", restaurantID).Pluck("id", &ids).Error
	return ids, err
}
