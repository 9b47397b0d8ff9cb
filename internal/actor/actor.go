package actor

import "time"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleStaff      Role = "staff"
)

type Actor struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`

	// SkipApproval lets a non-super-admin bypass the approval gate. Set by a
	// super admin on trusted operators.
	SkipApproval bool `json:"skipApproval"`

	CreatedAt time.Time `json:"createdAt"`
}
