// Package dbtest opens throwaway sqlite databases with the production
// schema. Only tests import it.
package dbtest

import (
	"context"
	"testing"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const RestaurantID = "rest-1"

// Open returns a migrated in-memory database private to the test. A single
// connection serializes transactions the way row locks would in Postgres.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Fixture is a seeded restaurant with two branches.
type Fixture struct {
	DB          *gorm.DB
	Store       *repository.Store
	Branch      *models.Branch
	OtherBranch *models.Branch
	Tables      []*models.Table // numbers 1..4 in Branch
	OtherTable  *models.Table   // number 1 in OtherBranch
	Menu        map[string]*models.MenuItem
}

var menu = []struct {
	title string
	price string
}{
	{"Bruschetta", "8.99"},
	{"Lasagna", "16.99"},
	{"Espresso", "2.75"},
	{"Tiramisu", "6.80"},
}

func Seed(t testing.TB) *Fixture {
	t.Helper()

	db := Open(t)
	f := &Fixture{
		DB:          db,
		Store:       repository.NewStore(db),
		Branch:      &models.Branch{RestaurantID: RestaurantID, Name: "Main"},
		OtherBranch: &models.Branch{RestaurantID: RestaurantID, Name: "Harbour"},
		Menu:        map[string]*models.MenuItem{},
	}
	mustCreate(t, db, f.Branch)
	mustCreate(t, db, f.OtherBranch)

	for n := 1; n <= 4; n++ {
		table := &models.Table{BranchID: f.Branch.ID, Number: n, Capacity: 4, Section: models.SectionIndoor, Status: models.TableAvailable}
		mustCreate(t, db, table)
		f.Tables = append(f.Tables, table)
	}
	f.OtherTable = &models.Table{BranchID: f.OtherBranch.ID, Number: 1, Capacity: 2, Section: models.SectionOutdoor, Status: models.TableAvailable}
	mustCreate(t, db, f.OtherTable)

	for _, m := range menu {
		item := &models.MenuItem{
			RestaurantID: RestaurantID,
			Title:        m.title,
			Category:     "Food",
			Price:        decimal.RequireFromString(m.price),
			Status:       models.MenuItemActive,
		}
		mustCreate(t, db, item)
		f.Menu[m.title] = item
	}
	return f
}

// Waiter is a caller with POS access to the main branch.
func (f *Fixture) Waiter() models.CallerContext {
	return models.CallerContext{
		StaffID:     "waiter-1",
		Role:        models.RoleWaiter,
		Branches:    []string{f.Branch.ID},
		Permissions: []models.Permission{models.PermissionAccessPOS},
	}
}

func (f *Fixture) Manager() models.CallerContext {
	return models.CallerContext{
		StaffID:     "manager-1",
		Role:        models.RoleManager,
		Branches:    []string{f.Branch.ID},
		Permissions: []models.Permission{models.PermissionAccessPOS, models.PermissionManageTables},
	}
}

func (f *Fixture) Owner() models.CallerContext {
	return models.CallerContext{
		StaffID:  "owner-1",
		Role:     models.RoleOwner,
		Branches: []string{f.Branch.ID, f.OtherBranch.ID},
	}
}

func (f *Fixture) Table(t testing.TB, id string) *models.Table {
	t.Helper()
	table, err := f.Store.Tables.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load table %s: %v", id, err)
	}
	return table
}

func mustCreate(t testing.TB, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
