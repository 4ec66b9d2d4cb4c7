package models

type Permission string

const (
	PermissionAccessPOS    Permission = "access_pos"
	PermissionManageTables Permission = "manage_tables"
)

// CallerContext describes who is calling a core operation and which
// branches they may act on. It is resolved once per request and passed
// explicitly.
type CallerContext struct {
	StaffID     string       `json:"staff_id"`
	Role        Role         `json:"role"`
	Branches    []string     `json:"branches"`
	AllBranches bool         `json:"all_branches,omitempty"`
	Permissions []Permission `json:"permissions"`
}

func (c CallerContext) CanAccessBranch(branchID string) bool {
	if c.AllBranches {
		return true
	}
	for _, id := range c.Branches {
		if id == branchID {
			return true
		}
	}
	return false
}

// Has reports whether the caller holds p. Owners hold every permission.
func (c CallerContext) Has(p Permission) bool {
	if c.Role == RoleOwner {
		return true
	}
	for _, granted := range c.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// BranchScope returns the branches list queries must be restricted to,
// or nil when the caller is not restricted.
func (c CallerContext) BranchScope() []string {
	if c.AllBranches {
		return nil
	}
	if c.Branches == nil {
		return []string{}
	}
	return c.Branches
}
