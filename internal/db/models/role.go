package models

import "time"

// Role represents a named permission profile.
// A role carries the nested per-UI-area permission tree that is merged into
// a user's session claims for every enabled organization affiliation
// referencing the role.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "admin", "Analyst").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// Protected indicates a system role that cannot be deleted.
	Protected bool `gorm:"default:false"`
	// UIPermissions is the nested per-UI-area access tree for this role.
	UIPermissions PermissionTree `gorm:"type:text"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
