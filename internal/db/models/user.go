package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AuthSource represents the authentication source for a user account.
// It indicates how the user authenticates (local database or directory).
type AuthSource string

const (
	// AuthSourceLocal indicates the user authenticates with a local database password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceDirectory indicates the user authenticates against the directory service.
	AuthSourceDirectory AuthSource = "directory"
)

// User represents a user account in the system.
// Users authenticate either with a locally stored password hash or against
// the configured directory service. Organization access is carried as an
// ordered list of affiliations, each binding the user to one organization
// with a role and an enable flag.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Username is the unique login handle.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255"`
	// Password is the Argon2id hashed password. Empty for directory-only users.
	Password string `gorm:"size:255"`
	// AuthSource indicates how this user authenticates (local or directory).
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'"`
	// DirectoryAccess gates whether organization-scoped access applies at all.
	// A user with this flag off is rejected at login regardless of credential
	// validity, except for the configured super-administrator handle.
	DirectoryAccess bool `gorm:"not null;default:false"`
	// Affiliations is the ordered list of the user's organization bindings.
	Affiliations Affiliations `gorm:"type:text"`
	// DefaultRole is the explicitly assigned primary role name, if any.
	DefaultRole string `gorm:"size:100"`
	// AllOrganizations marks users provisioned with access to every
	// organization under DefaultRole (kept in sync by provisioning).
	AllOrganizations bool `gorm:"not null;default:false"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating local user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns false when no hash is stored (directory-only users fail closed).
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

// ActiveAffiliations returns the affiliations that contribute to permission
// resolution (enabled with a non-empty role), in stored order.
func (u *User) ActiveAffiliations() []Affiliation {
	var active []Affiliation

	for _, aff := range u.Affiliations {
		if aff.Active() {
			active = append(active, aff)
		}
	}

	return active
}
