package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/db/store"
)

// CustomerRoleName is the literal role carried by pure customer identities.
// The customer UI derives access from this role name alone, not from the
// per-organization permission map.
const CustomerRoleName = "customer"

// SessionClaims is the resolved authorization payload embedded in an issued
// session token. It is created once per successful login and never mutated
// or re-derived except by re-login or the session re-hydration endpoint.
type SessionClaims struct {
	// Username is the authenticated principal's handle.
	Username string `json:"username"`
	// Email is the principal's email address, if known.
	Email string `json:"email,omitempty"`
	// Role is the primary role name.
	Role string `json:"role"`
	// Organization is the organization originally requested at login, or the
	// matched organization for customer identities. Null when unscoped.
	Organization *string `json:"organization"`
	// OrgPermissions maps each enabled organization to the permission tree
	// of the role the principal holds there.
	OrgPermissions map[string]models.PermissionTree `json:"orgPermissions,omitempty"`
	// UIPermissions is the primary role's own permission tree, used for
	// screens that are not organization-scoped.
	UIPermissions models.PermissionTree `json:"uiPermissions,omitempty"`
}

// RoleFinder looks up roles by name.
type RoleFinder interface {
	RoleByName(ctx context.Context, name string) (*models.Role, error)
}

// ClaimsResolver aggregates a user's enabled organization affiliations into
// a session claim set.
type ClaimsResolver struct {
	roles      RoleFinder
	superAdmin string
}

// NewClaimsResolver creates a claims resolver. superAdmin is the
// distinguished handle that bypasses all affiliation checks.
func NewClaimsResolver(roles RoleFinder, superAdmin string) *ClaimsResolver {
	return &ClaimsResolver{roles: roles, superAdmin: superAdmin}
}

// Resolve builds the session claims for an authenticated user.
//
// Rules, in order: the directory-access gate rejects non-super-administrator
// users with ErrFeatureDisabled; a user with no enabled affiliation carrying
// a role is rejected with ErrNoValidOrganization; each remaining affiliation
// contributes its role's permission tree under the organization name, with
// unresolvable roles skipped rather than aborting; the primary role is the
// stored default role if present, else the first valid affiliation's role.
func (c *ClaimsResolver) Resolve(
	ctx context.Context,
	user *models.User,
	orgHint string,
) (*SessionClaims, error) {
	isSuperAdmin := user.Username == c.superAdmin

	if !user.DirectoryAccess && !isSuperAdmin {
		return nil, ErrFeatureDisabled
	}

	active := user.ActiveAffiliations()
	if len(active) == 0 && !isSuperAdmin {
		return nil, ErrNoValidOrganization
	}

	orgPermissions := make(map[string]models.PermissionTree)

	for _, aff := range active {
		if aff.Organization == "" {
			continue
		}

		role, err := c.roles.RoleByName(ctx, aff.Role)
		if errors.Is(err, store.ErrNotFound) {
			// Soft failure: an affiliation referencing a deleted role
			// contributes no permissions but does not fail the login.
			log.Warn().
				Str("user", user.Username).
				Str("organization", aff.Organization).
				Str("role", aff.Role).
				Msg("affiliation references unknown role, skipping")

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to resolve role %q: %w", aff.Role, err)
		}

		orgPermissions[aff.Organization] = role.UIPermissions
	}

	primaryRole := user.DefaultRole
	if primaryRole == "" && len(active) > 0 {
		primaryRole = active[0].Role
	}

	claims := &SessionClaims{
		Username:       user.Username,
		Email:          user.Email,
		Role:           primaryRole,
		Organization:   optionalOrg(orgHint),
		OrgPermissions: orgPermissions,
	}

	if primaryRole != "" {
		role, err := c.roles.RoleByName(ctx, primaryRole)

		switch {
		case errors.Is(err, store.ErrNotFound):
			claims.UIPermissions = models.PermissionTree{}
		case err != nil:
			return nil, fmt.Errorf("failed to resolve primary role %q: %w", primaryRole, err)
		default:
			claims.UIPermissions = role.UIPermissions
		}
	}

	return claims, nil
}

// CustomerClaims builds the minimal claim set for a pure customer identity:
// an organization name that authenticated against the directory without any
// stored user record. Role is the literal customer role and the permission
// map stays empty.
func (c *ClaimsResolver) CustomerClaims(org *models.Organization) *SessionClaims {
	name := org.Name

	email := org.Email
	if email == "" {
		email = fmt.Sprintf("%s@customer.local", name)
	}

	return &SessionClaims{
		Username:     name,
		Email:        email,
		Role:         CustomerRoleName,
		Organization: &name,
	}
}

func optionalOrg(org string) *string {
	if org == "" {
		return nil
	}

	return &org
}
