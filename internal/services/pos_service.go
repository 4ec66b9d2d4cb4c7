package services

import (
	"context"
	"errors"
	"sort"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
)

// PosData is everything the POS terminal loads for one branch.
type PosData struct {
	Branch       *models.Branch    `json:"branch"`
	Tables       []models.Table    `json:"tables"`
	MenuItems    []models.MenuItem `json:"menu_items"`
	Categories   []string          `json:"categories"`
	ActiveOrders []models.Order    `json:"active_orders"`
}

type PosService interface {
	GetPosData(ctx context.Context, caller models.CallerContext, branchID string) (*PosData, error)
}

type posService struct {
	store  *repository.Store
	orders OrderService
}

func NewPosService(store *repository.Store, orders OrderService) PosService {
	return &posService{store: store, orders: orders}
}

func (s *posService) GetPosData(ctx context.Context, caller models.CallerContext, branchID string) (*PosData, error) {
	if branchID == "" {
		return nil, &ValidationError{Field: "branch_id", Message: "is required"}
	}
	if err := requirePOS(caller, branchID); err != nil {
		return nil, err
	}

	branch, err := s.store.Branches.GetByID(ctx, branchID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "branch", ID: branchID}
	}
	if err != nil {
		return nil, err
	}

	tables, err := s.store.Tables.List(ctx, repository.TableFilter{BranchID: branchID})
	if err != nil {
		return nil, err
	}
	menu, err := s.store.Menu.ListForBranch(ctx, branch.RestaurantID, branch.ID)
	if err != nil {
		return nil, err
	}
	active, err := s.orders.GetActiveOrders(ctx, caller, branchID)
	if err != nil {
		return nil, err
	}

	data := &PosData{
		Branch:       branch,
		Tables:       tables,
		MenuItems:    menu,
		Categories:   menuCategories(menu),
		ActiveOrders: active,
	}
	if data.Tables == nil {
		data.Tables = []models.Table{}
	}
	if data.MenuItems == nil {
		data.MenuItems = []models.MenuItem{}
	}
	return data, nil
}

// menuCategories lists the distinct categories of the sellable menu in
// alphabetical order.
func menuCategories(items []models.MenuItem) []string {
	seen := make(map[string]bool, len(items))
	categories := []string{}
	for _, item := range items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		categories = append(categories, item.Category)
	}
	sort.Strings(categories)
	return categories
}
