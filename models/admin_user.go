package models

import (
	"time"
)

// Admin roles, in decreasing order of privilege.
const (
	AdminRoleSuperAdmin = "SUPER_ADMIN"
	AdminRoleAdmin      = "ADMIN"
	AdminRoleEditor     = "EDITOR"
)

// AdminRoles lists every role accepted in a session token.
var AdminRoles = []string{AdminRoleSuperAdmin, AdminRoleAdmin, AdminRoleEditor}

// IsValidAdminRole reports whether value is a known admin role.
func IsValidAdminRole(value string) bool {
	return containsValue(AdminRoles, value)
}

// AdminUser represents a dashboard account
type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `gorm:"not null;default:'ADMIN'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the AdminUser model
func (AdminUser) TableName() string {
	return "admin_users"
}
