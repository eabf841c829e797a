package models

import "time"

// Organization represents a customer organization.
// The case-management subsystem owns the full record; the authentication
// core only reads organization names for existence and matching checks
// (customer-classified logins, affiliation targets).
type Organization struct {
	// ID is the unique identifier for the organization.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique organization name.
	Name string `gorm:"unique;size:255;not null"`
	// Email is the primary contact email address.
	Email string `gorm:"size:255"`
	// FullName is the organization's display name.
	FullName string `gorm:"size:255"`
	// CreatedAt is the timestamp when the organization was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the organization was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Organization model.
func (Organization) TableName() string {
	return "organizations"
}
