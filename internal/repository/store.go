package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. A Store
// created inside Transaction is bound to that transaction.
type Store struct {
	db *gorm.DB

	Orders     OrderRepository
	OrderLines OrderLineRepository
	Tables     TableRepository
	Menu       MenuRepository
	Receipts   ReceiptRepository
	Staff      StaffRepository
	Branches   BranchRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Orders:     NewOrderRepository(db),
		OrderLines: NewOrderLineRepository(db),
		Tables:     NewTableRepository(db),
		Menu:       NewMenuRepository(db),
		Receipts:   NewReceiptRepository(db),
		Staff:      NewStaffRepository(db),
		Branches:   NewBranchRepository(db),
	}
}

// Transaction runs fn as one unit of work. Any error returned by fn rolls
// back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
