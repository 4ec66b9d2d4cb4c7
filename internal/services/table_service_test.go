package services

import (
	"context"
	"testing"

	"restaurant_pos/internal/dbtest"
	"restaurant_pos/internal/models"
)

func newTableService(t *testing.T) (*dbtest.Fixture, TableService) {
	t.Helper()
	f := dbtest.Seed(t)
	return f, NewTableService(f.Store, quietLogger())
}

func TestCreateTable(t *testing.T) {
	f, svc := newTableService(t)
	ctx := context.Background()

	table, err := svc.CreateTable(ctx, f.Manager(), CreateTableRequest{BranchID: f.Branch.ID, Number: 10, Capacity: 6})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if table.Section != models.SectionIndoor || table.Status != models.TableAvailable {
		t.Errorf("defaults = %s/%s", table.Section, table.Status)
	}

	tests := []struct {
		name   string
		caller models.CallerContext
		req    CreateTableRequest
		want   error
	}{
		{"duplicate number", f.Manager(), CreateTableRequest{BranchID: f.Branch.ID, Number: 10, Capacity: 2}, ErrConflict},
		{"waiter", f.Waiter(), CreateTableRequest{BranchID: f.Branch.ID, Number: 11, Capacity: 2}, ErrAuthorization},
		{"zero capacity", f.Manager(), CreateTableRequest{BranchID: f.Branch.ID, Number: 11}, ErrValidation},
		{"bad section", f.Manager(), CreateTableRequest{BranchID: f.Branch.ID, Number: 11, Capacity: 2, Section: "Roof"}, ErrValidation},
		{"unknown branch", models.CallerContext{Role: models.RoleOwner, AllBranches: true}, CreateTableRequest{BranchID: "nowhere", Number: 1, Capacity: 2}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTable(ctx, tt.caller, tt.req)
			assertErrorIs(t, err, tt.want)
		})
	}

	// Numbers are unique per branch only.
	if _, err := svc.CreateTable(ctx, f.Owner(), CreateTableRequest{BranchID: f.OtherBranch.ID, Number: 10, Capacity: 2}); err != nil {
		t.Errorf("same number in another branch: %v", err)
	}
}

func TestUpdateTable(t *testing.T) {
	f, svc := newTableService(t)
	ctx := context.Background()

	_, err := svc.UpdateTable(ctx, f.Manager(), f.Tables[0].ID, UpdateTableRequest{Number: ptr(2)})
	assertErrorIs(t, err, ErrConflict)

	renumbered, err := svc.UpdateTable(ctx, f.Manager(), f.Tables[0].ID, UpdateTableRequest{Number: ptr(12), Section: ptr(models.SectionOutdoor)})
	if err != nil {
		t.Fatalf("renumber: %v", err)
	}
	if renumbered.Number != 12 || renumbered.Section != models.SectionOutdoor {
		t.Errorf("table = %d/%s", renumbered.Number, renumbered.Section)
	}

	reserved, err := svc.UpdateTable(ctx, f.Waiter(), f.Tables[1].ID, UpdateTableRequest{Status: ptr(models.TableReserved)})
	if err != nil {
		t.Fatalf("waiter status change: %v", err)
	}
	if reserved.Status != models.TableReserved {
		t.Errorf("status = %s, want reserved", reserved.Status)
	}

	_, err = svc.UpdateTable(ctx, f.Waiter(), f.Tables[1].ID, UpdateTableRequest{Capacity: ptr(8)})
	assertErrorIs(t, err, ErrAuthorization)

	_, err = svc.UpdateTable(ctx, f.Manager(), "ghost", UpdateTableRequest{Capacity: ptr(8)})
	assertErrorIs(t, err, ErrNotFound)
}

func TestTable_SeatedTableIsGuarded(t *testing.T) {
	h := newHarness(t)
	svc := NewTableService(h.Store, quietLogger())
	ctx := context.Background()
	h.openSample(t, h.Tables[0])

	_, err := svc.UpdateTable(ctx, h.Manager(), h.Tables[0].ID, UpdateTableRequest{Status: ptr(models.TableAvailable)})
	assertErrorIs(t, err, ErrConflict)

	err = svc.DeleteTable(ctx, h.Manager(), h.Tables[0].ID)
	assertErrorIs(t, err, ErrConflict)

	if err := svc.DeleteTable(ctx, h.Manager(), h.Tables[3].ID); err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	_, err = svc.GetTable(ctx, h.Manager(), h.Tables[3].ID)
	assertErrorIs(t, err, ErrNotFound)
}

func TestListTables(t *testing.T) {
	f, svc := newTableService(t)
	ctx := context.Background()

	tables, err := svc.ListTables(ctx, f.Waiter(), TableQuery{})
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 4 {
		t.Errorf("waiter sees %d tables, want 4", len(tables))
	}

	outdoor, err := svc.ListTables(ctx, f.Owner(), TableQuery{Section: models.SectionOutdoor})
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(outdoor) != 1 || outdoor[0].ID != f.OtherTable.ID {
		t.Errorf("outdoor tables = %+v", outdoor)
	}

	_, err = svc.ListTables(ctx, f.Waiter(), TableQuery{BranchID: f.OtherBranch.ID})
	assertErrorIs(t, err, ErrAuthorization)

	_, err = svc.GetTable(ctx, f.Waiter(), f.OtherTable.ID)
	assertErrorIs(t, err, ErrAuthorization)
}
