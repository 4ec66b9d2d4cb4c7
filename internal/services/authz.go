package services

import (
	"restaurant_pos/internal/models"
)

func requireBranch(caller models.CallerContext, branchID string) error {
	if !caller.CanAccessBranch(branchID) {
		return &AuthorizationError{Message: "not authorized for this branch"}
	}
	return nil
}

// requirePOS gates order and payment mutations.
func requirePOS(caller models.CallerContext, branchID string) error {
	if err := requireBranch(caller, branchID); err != nil {
		return err
	}
	if !caller.Has(models.PermissionAccessPOS) {
		return &AuthorizationError{Message: "not authorized to access POS"}
	}
	return nil
}

func requireRole(caller models.CallerContext, roles ...models.Role) error {
	for _, role := range roles {
		if caller.Role == role {
			return nil
		}
	}
	return &AuthorizationError{Message: "insufficient role"}
}

func requireTableManager(caller models.CallerContext, branchID string) error {
	if err := requireBranch(caller, branchID); err != nil {
		return err
	}
	if caller.Role == models.RoleOwner {
		return nil
	}
	if caller.Role == models.RoleManager && caller.Has(models.PermissionManageTables) {
		return nil
	}
	return &AuthorizationError{Message: "not authorized to manage tables"}
}
