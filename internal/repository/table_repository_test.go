package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant_pos/internal/dbtest"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
)

func TestTableRepository_BindAndRelease(t *testing.T) {
	f := dbtest.Seed(t)
	ctx := context.Background()
	tables := f.Store.Tables
	id := f.Tables[0].ID

	ok, err := tables.Bind(ctx, id, "order-a", time.Now())
	if err != nil || !ok {
		t.Fatalf("first Bind = %v, %v", ok, err)
	}
	available, err := tables.IsAvailable(ctx, id)
	if err != nil || available {
		t.Fatalf("IsAvailable after bind = %v, %v", available, err)
	}

	ok, err = tables.Bind(ctx, id, "order-b", time.Now())
	if err != nil || ok {
		t.Fatalf("second Bind = %v, %v; want false", ok, err)
	}

	ok, err = tables.Release(ctx, id, "order-b")
	if err != nil || ok {
		t.Fatalf("Release by stranger = %v, %v; want false", ok, err)
	}
	if table := f.Table(t, id); table.CurrentOrderID == nil || *table.CurrentOrderID != "order-a" {
		t.Fatalf("binding = %v, want order-a", table.CurrentOrderID)
	}

	ok, err = tables.Release(ctx, id, "order-a")
	if err != nil || !ok {
		t.Fatalf("Release = %v, %v", ok, err)
	}
	table := f.Table(t, id)
	if table.Status != models.TableAvailable || table.CurrentOrderID != nil || table.OccupiedSince != nil {
		t.Errorf("released table = %+v", table)
	}
}

func TestTableRepository_Errors(t *testing.T) {
	f := dbtest.Seed(t)
	ctx := context.Background()

	_, err := f.Store.Tables.IsAvailable(ctx, "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("IsAvailable(missing) = %v, want ErrNotFound", err)
	}

	dup := &models.Table{BranchID: f.Branch.ID, Number: 1, Capacity: 2, Section: models.SectionIndoor, Status: models.TableAvailable}
	if err := f.Store.Tables.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("Create duplicate number = %v, want ErrDuplicate", err)
	}

	if err := f.Store.Tables.Delete(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
	}
}
