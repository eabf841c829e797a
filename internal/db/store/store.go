// Package store provides the read-only finders the authentication core
// consumes from the durable store. Writes to users, roles and organizations
// happen only through the administrative management surfaces.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wysehawk/casedesk/internal/db/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Store exposes lookup operations against the durable store.
type Store struct {
	db *gorm.DB
}

// New creates a new store backed by the given gorm connection.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Store{db: db}, nil
}

// UserByHandle retrieves a user by login handle.
func (s *Store) UserByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("username = ?", handle).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// LocalUserByHandle retrieves a user by handle restricted to local accounts.
// Directory-sourced users carry no usable password hash and are excluded.
func (s *Store) LocalUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).
		Where("username = ? AND auth_source = ?", handle, models.AuthSourceLocal).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// OrganizationByName retrieves an organization by its exact name.
func (s *Store) OrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization

	err := s.db.WithContext(ctx).Where("name = ?", name).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &org, nil
}

// RoleByName retrieves a role by its exact name.
func (s *Store) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role

	err := s.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &role, nil
}
