package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/db/store"
)

// LocalUserFinder looks up local user accounts by handle.
type LocalUserFinder interface {
	LocalUserByHandle(ctx context.Context, handle string) (*models.User, error)
}

// LocalProvider verifies principals against locally persisted Argon2id
// password hashes. It performs no network I/O; the only blocking operation
// is the hash comparison.
type LocalProvider struct {
	users LocalUserFinder
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(users LocalUserFinder) *LocalProvider {
	return &LocalProvider{users: users}
}

// Authenticate verifies the handle and secret against the local credential
// store and returns the matched user.
//
// Accounts without a stored hash fail closed with ErrInvalidCredential, as
// do mismatched secrets. An unknown handle yields ErrPrincipalNotFound; the
// resolver collapses both before anything reaches the caller.
func (p *LocalProvider) Authenticate(ctx context.Context, handle, secret string) (*models.User, error) {
	user, err := p.users.LocalUserByHandle(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPrincipalNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(secret) {
		return nil, ErrInvalidCredential
	}

	return user, nil
}
