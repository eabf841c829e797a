package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/db/store"
)

type fakeLocalUsers struct {
	users map[string]*models.User
	err   error
}

func (f fakeLocalUsers) LocalUserByHandle(_ context.Context, handle string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}

	user, ok := f.users[handle]
	if !ok {
		return nil, store.ErrNotFound
	}

	return user, nil
}

func TestLocalProviderAuthenticate(t *testing.T) {
	bob := &models.User{
		Username: "bob",
		Password: models.HashPassword("s3cr3t"),
	}

	p := NewLocalProvider(fakeLocalUsers{users: map[string]*models.User{"bob": bob}})

	user, err := p.Authenticate(context.Background(), "bob", "s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = p.Authenticate(context.Background(), "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = p.Authenticate(context.Background(), "nobody", "s3cr3t")
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestLocalProviderNoStoredHash(t *testing.T) {
	ghost := &models.User{Username: "ghost"}

	p := NewLocalProvider(fakeLocalUsers{users: map[string]*models.User{"ghost": ghost}})

	_, err := p.Authenticate(context.Background(), "ghost", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLocalProviderStoreFailure(t *testing.T) {
	boom := errors.New("db gone")

	p := NewLocalProvider(fakeLocalUsers{err: boom})

	_, err := p.Authenticate(context.Background(), "bob", "s3cr3t")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPrincipalNotFound)
}
