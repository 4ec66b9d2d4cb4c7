package migrations

import (
	"context"
	"errors"
	"fmt"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const demoOwnerEmail = "owner@demo.local"

type Options struct {
	// Reset drops every table before migrating. Development only.
	Reset    bool
	SeedDemo bool
}

// RunMigrations runs all database migrations and optionally creates demo data
func RunMigrations(ctx context.Context, db *gorm.DB, log logrus.FieldLogger, opts Options) error {
	log.Info("Running database migrations...")

	if opts.Reset {
		log.Warn("Dropping existing tables...")
		err := db.Migrator().DropTable(
			&models.ReceiptLine{},
			&models.Receipt{},
			&models.OrderLine{},
			&models.Order{},
			&models.Table{},
			&models.MenuItem{},
			&models.Staff{},
			&models.Branch{},
		)
		if err != nil {
			log.WithError(err).Warn("Error dropping tables")
		}
	}

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if opts.SeedDemo {
		store := repository.NewStore(db)
		if err := createDemoData(ctx, store, services.NewStaffService(store, 0), log); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	log.Info("Database migrations completed successfully!")
	return nil
}

type demoItem struct {
	title    string
	category string
	price    string
}

var demoMenu = []demoItem{
	{"Margherita Pizza", "Pizza", "12.99"},
	{"Pepperoni Pizza", "Pizza", "14.49"},
	{"Caesar Salad", "Salads", "8.50"},
	{"Garlic Bread", "Sides", "4.99"},
	{"Lemonade", "Drinks", "3.25"},
	{"Espresso", "Drinks", "2.75"},
	{"Tiramisu", "Desserts", "6.80"},
}

// createDemoData creates one branch with tables, a menu and three staff
// members. It is a no-op when the demo owner already exists.
func createDemoData(ctx context.Context, store *repository.Store, staff services.StaffService, log logrus.FieldLogger) error {
	if _, err := store.Staff.GetByEmail(ctx, demoOwnerEmail); err == nil {
		log.Info("Demo data already exists")
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	log.Info("Creating demo data...")
	restaurantID := "demo-restaurant"
	branch := &models.Branch{RestaurantID: restaurantID, Name: "Downtown", Address: "1 Main Street"}
	if err := store.Branches.Create(ctx, branch); err != nil {
		return err
	}

	for n := 1; n <= 8; n++ {
		section := models.SectionIndoor
		if n > 6 {
			section = models.SectionOutdoor
		}
		table := &models.Table{BranchID: branch.ID, Number: n, Capacity: 2 + 2*(n%3), Section: section, Status: models.TableAvailable}
		if err := store.Tables.Create(ctx, table); err != nil {
			return err
		}
	}

	for _, item := range demoMenu {
		err := store.Menu.Create(ctx, &models.MenuItem{
			RestaurantID: restaurantID,
			Title:        item.title,
			Category:     item.category,
			Price:        decimal.RequireFromString(item.price),
			Status:       models.MenuItemActive,
		})
		if err != nil {
			return err
		}
	}

	members := []struct {
		staff *models.Staff
		pin   string
	}{
		{&models.Staff{FirstName: "Olivia", LastName: "Owner", Email: demoOwnerEmail, Role: models.RoleOwner, RestaurantID: restaurantID, IsActive: true}, "1234"},
		{&models.Staff{FirstName: "Marco", LastName: "Manager", Email: "manager@demo.local", Role: models.RoleManager, RestaurantID: restaurantID, BranchID: &branch.ID, AccessPOS: true, ManageTables: true, IsActive: true}, "2345"},
		{&models.Staff{FirstName: "Wendy", LastName: "Waiter", Email: "waiter@demo.local", Role: models.RoleWaiter, RestaurantID: restaurantID, BranchID: &branch.ID, AccessPOS: true, IsActive: true}, "3456"},
	}
	for _, m := range members {
		if err := staff.CreateStaff(ctx, m.staff, m.pin); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"staff_id": m.staff.ID, "role": m.staff.Role, "pin": m.pin}).Info("Demo staff created")
	}

	log.WithField("branch_id", branch.ID).Info("Demo data created successfully!")
	return nil
}
