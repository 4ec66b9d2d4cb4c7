package services

import (
	"context"
	"errors"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/sirupsen/logrus"
)

type CreateTableRequest struct {
	BranchID string
	Number   int
	Capacity int
	Section  string
	Status   models.TableStatus
}

type UpdateTableRequest struct {
	Number   *int
	Capacity *int
	Section  *string
	Status   *models.TableStatus
}

func (r UpdateTableRequest) touchesLayout() bool {
	return r.Number != nil || r.Capacity != nil || r.Section != nil
}

type TableQuery struct {
	BranchID string
	Section  string
	Status   models.TableStatus
}

type TableService interface {
	CreateTable(ctx context.Context, caller models.CallerContext, req CreateTableRequest) (*models.Table, error)
	GetTable(ctx context.Context, caller models.CallerContext, id string) (*models.Table, error)
	ListTables(ctx context.Context, caller models.CallerContext, q TableQuery) ([]models.Table, error)
	UpdateTable(ctx context.Context, caller models.CallerContext, id string, req UpdateTableRequest) (*models.Table, error)
	DeleteTable(ctx context.Context, caller models.CallerContext, id string) error
}

type tableService struct {
	store *repository.Store
	log   logrus.FieldLogger
}

func NewTableService(store *repository.Store, log logrus.FieldLogger) TableService {
	return &tableService{store: store, log: log}
}

func (s *tableService) CreateTable(ctx context.Context, caller models.CallerContext, req CreateTableRequest) (*models.Table, error) {
	if req.BranchID == "" {
		return nil, &ValidationError{Field: "branch_id", Message: "is required"}
	}
	if err := requireTableManager(caller, req.BranchID); err != nil {
		return nil, err
	}
	if req.Section == "" {
		req.Section = models.SectionIndoor
	}
	if req.Status == "" {
		req.Status = models.TableAvailable
	}
	if err := validateTableFields(req.Number, req.Capacity, req.Section, req.Status); err != nil {
		return nil, err
	}

	table := &models.Table{
		BranchID: req.BranchID,
		Number:   req.Number,
		Capacity: req.Capacity,
		Section:  req.Section,
		Status:   req.Status,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Branches.GetByID(ctx, req.BranchID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NotFoundError{Resource: "branch", ID: req.BranchID}
			}
			return err
		}
		if err := ensureNumberFree(ctx, tx, req.BranchID, req.Number, ""); err != nil {
			return err
		}
		err := tx.Tables.Create(ctx, table)
		if errors.Is(err, repository.ErrDuplicate) {
			return conflictf("table number %d already exists in this branch", req.Number)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"table_id": table.ID, "branch_id": table.BranchID, "number": table.Number}).Info("table created")
	return table, nil
}

func (s *tableService) GetTable(ctx context.Context, caller models.CallerContext, id string) (*models.Table, error) {
	table, err := s.store.Tables.GetByID(ctx, id)
	if err != nil {
		return nil, tableNotFound(id, err)
	}
	if err := requireBranch(caller, table.BranchID); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) ListTables(ctx context.Context, caller models.CallerContext, q TableQuery) ([]models.Table, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "unknown table status"}
	}
	if q.BranchID != "" {
		if err := requireBranch(caller, q.BranchID); err != nil {
			return nil, err
		}
	}
	scope := caller.BranchScope()
	if scope != nil && len(scope) == 0 {
		return []models.Table{}, nil
	}

	tables, err := s.store.Tables.List(ctx, repository.TableFilter{
		BranchIDs: scope,
		BranchID:  q.BranchID,
		Section:   q.Section,
		Status:    q.Status,
	})
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []models.Table{}
	}
	return tables, nil
}

// UpdateTable edits a table. Waiters with POS access may only change the
// status; layout changes need a table manager. A table seated with an
// active order can only be freed by completing or cancelling the order.
func (s *tableService) UpdateTable(ctx context.Context, caller models.CallerContext, id string, req UpdateTableRequest) (*models.Table, error) {
	var table *models.Table
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		table, err = tx.Tables.GetForUpdate(ctx, id)
		if err != nil {
			return tableNotFound(id, err)
		}

		if err := requireTableManager(caller, table.BranchID); err != nil {
			if req.touchesLayout() || requirePOS(caller, table.BranchID) != nil {
				return err
			}
		}

		if req.Number != nil && *req.Number != table.Number {
			if err := ensureNumberFree(ctx, tx, table.BranchID, *req.Number, table.ID); err != nil {
				return err
			}
			table.Number = *req.Number
		}
		if req.Capacity != nil {
			table.Capacity = *req.Capacity
		}
		if req.Section != nil {
			table.Section = *req.Section
		}
		if req.Status != nil && *req.Status != table.Status {
			if table.CurrentOrderID != nil {
				return conflictf("table %d is seated with order %s; complete or cancel the order first", table.Number, *table.CurrentOrderID)
			}
			table.Status = *req.Status
			if table.Status == models.TableOccupied {
				now := time.Now()
				table.OccupiedSince = &now
			} else {
				table.OccupiedSince = nil
			}
		}
		if err := validateTableFields(table.Number, table.Capacity, table.Section, table.Status); err != nil {
			return err
		}

		err = tx.Tables.Update(ctx, table)
		if errors.Is(err, repository.ErrDuplicate) {
			return conflictf("table number %d already exists in this branch", table.Number)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) DeleteTable(ctx context.Context, caller models.CallerContext, id string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		table, err := tx.Tables.GetForUpdate(ctx, id)
		if err != nil {
			return tableNotFound(id, err)
		}
		if err := requireTableManager(caller, table.BranchID); err != nil {
			return err
		}
		if table.CurrentOrderID != nil {
			return conflictf("table %d is seated with order %s", table.Number, *table.CurrentOrderID)
		}
		if err := tx.Tables.Delete(ctx, id); err != nil {
			return tableNotFound(id, err)
		}
		s.log.WithField("table_id", id).Info("table deleted")
		return nil
	})
}

func ensureNumberFree(ctx context.Context, tx *repository.Store, branchID string, number int, selfID string) error {
	existing, err := tx.Tables.GetByNumber(ctx, branchID, number)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return conflictf("table number %d already exists in this branch", number)
	}
	return nil
}

func validateTableFields(number, capacity int, section string, status models.TableStatus) error {
	if number < 1 {
		return &ValidationError{Field: "number", Message: "must be at least 1"}
	}
	if capacity < 1 {
		return &ValidationError{Field: "capacity", Message: "must be at least 1"}
	}
	if section != models.SectionIndoor && section != models.SectionOutdoor {
		return &ValidationError{Field: "section", Message: "must be Indoor or Outdoor"}
	}
	if !status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown table status"}
	}
	return nil
}

func tableNotFound(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "table", ID: id}
	}
	return err
}
