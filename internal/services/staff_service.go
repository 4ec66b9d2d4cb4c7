package services

import (
	"context"
	"errors"
	"fmt"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = &AuthorizationError{Message: "invalid staff id or PIN"}

type StaffService interface {
	CreateStaff(ctx context.Context, staff *models.Staff, pin string) error
	GetStaffByID(ctx context.Context, id string) (*models.Staff, error)
	Authenticate(ctx context.Context, staffID, pin string) (*models.Staff, error)
	CallerFor(ctx context.Context, staff *models.Staff) (models.CallerContext, error)
	ValidateStaffRole(ctx context.Context, staffID string, roles ...models.Role) error
}

type staffService struct {
	store      *repository.Store
	bcryptCost int
}

func NewStaffService(store *repository.Store, bcryptCost int) StaffService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &staffService{store: store, bcryptCost: bcryptCost}
}

func (s *staffService) CreateStaff(ctx context.Context, staff *models.Staff, pin string) error {
	if err := validatePIN(pin); err != nil {
		return err
	}
	if !staff.Role.Valid() {
		return &ValidationError{Field: "role", Message: "must be owner, manager or waiter"}
	}
	if staff.Role != models.RoleOwner && staff.BranchID == nil {
		return &ValidationError{Field: "branch_id", Message: "is required for branch staff"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash PIN: %w", err)
	}
	staff.PINHash = string(hashed)

	err = s.store.Staff.Create(ctx, staff)
	if errors.Is(err, repository.ErrDuplicate) {
		return conflictf("staff with email %s already exists", staff.Email)
	}
	return err
}

func (s *staffService) GetStaffByID(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.store.Staff.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "staff", ID: id}
	}
	return staff, err
}

// Authenticate checks a PIN. Unknown staff, inactive staff and wrong PINs
// all produce the same error.
func (s *staffService) Authenticate(ctx context.Context, staffID, pin string) (*models.Staff, error) {
	staff, err := s.store.Staff.GetByID(ctx, staffID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !staff.IsActive {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PINHash), []byte(pin)); err != nil {
		return nil, errInvalidCredentials
	}
	return staff, nil
}

// CallerFor resolves the branch scope and permissions of a staff member.
// Owners act on every branch of their restaurant.
func (s *staffService) CallerFor(ctx context.Context, staff *models.Staff) (models.CallerContext, error) {
	caller := models.CallerContext{
		StaffID:  staff.ID,
		Role:     staff.Role,
		Branches: []string{},
	}

	switch staff.Role {
	case models.RoleOwner:
		ids, err := s.store.Branches.ListIDsByRestaurant(ctx, staff.RestaurantID)
		if err != nil {
			return caller, fmt.Errorf("list branches: %w", err)
		}
		caller.Branches = append(caller.Branches, ids...)
		caller.Permissions = []models.Permission{models.PermissionAccessPOS, models.PermissionManageTables}
	default:
		if staff.BranchID != nil {
			caller.Branches = append(caller.Branches, *staff.BranchID)
		}
		if staff.AccessPOS {
			caller.Permissions = append(caller.Permissions, models.PermissionAccessPOS)
		}
		if staff.ManageTables {
			caller.Permissions = append(caller.Permissions, models.PermissionManageTables)
		}
	}
	return caller, nil
}

func (s *staffService) ValidateStaffRole(ctx context.Context, staffID string, roles ...models.Role) error {
	staff, err := s.GetStaffByID(ctx, staffID)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if staff.Role == role {
			return nil
		}
	}
	return &AuthorizationError{Message: "insufficient permissions"}
}

func validatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 8 {
		return &ValidationError{Field: "pin", Message: "must be 4 to 8 digits"}
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "pin", Message: "must be 4 to 8 digits"}
		}
	}
	return nil
}
