package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/db/store"
	"github.com/wysehawk/casedesk/internal/dirconfig"
)

// fakeDirectory records directory authentication attempts and replays a
// scripted outcome.
type fakeDirectory struct {
	ous    []string
	err    error
	calls  int
	lastCx dirconfig.FilterContext
}

func (f *fakeDirectory) Authenticate(
	_ context.Context,
	_, _ string,
	fctx dirconfig.FilterContext,
) ([]string, error) {
	f.calls++
	f.lastCx = fctx

	if f.err != nil {
		return nil, f.err
	}

	return f.ous, nil
}

type fakePrincipals struct {
	users map[string]*models.User
	orgs  map[string]*models.Organization
}

func (f fakePrincipals) UserByHandle(_ context.Context, handle string) (*models.User, error) {
	user, ok := f.users[handle]
	if !ok {
		return nil, store.ErrNotFound
	}

	return user, nil
}

func (f fakePrincipals) OrganizationByName(_ context.Context, name string) (*models.Organization, error) {
	org, ok := f.orgs[name]
	if !ok {
		return nil, store.ErrNotFound
	}

	return org, nil
}

type resolverFixture struct {
	resolver   *Resolver
	directory  *fakeDirectory
	principals fakePrincipals
	tokens     *TokenIssuer
}

func newResolverFixture(directory *fakeDirectory, principals fakePrincipals) resolverFixture {
	tokens := NewTokenIssuer("test-secret", time.Hour)

	local := NewLocalProvider(fakeLocalUsers{users: localOnly(principals.users)})
	claims := NewClaimsResolver(testRoles(), "admin")

	resolver := NewResolver(
		ResolverConfig{SuperAdmin: "admin", DefaultMode: ModeHybrid},
		directory,
		local,
		principals,
		claims,
		tokens,
	)

	return resolverFixture{
		resolver:   resolver,
		directory:  directory,
		principals: principals,
		tokens:     tokens,
	}
}

func localOnly(users map[string]*models.User) map[string]*models.User {
	out := make(map[string]*models.User, len(users))

	for handle, user := range users {
		if user.AuthSource == models.AuthSourceLocal {
			out[handle] = user
		}
	}

	return out
}

func directoryUser(handle string) *models.User {
	return &models.User{
		Username:        handle,
		Email:           handle + "@example.com",
		AuthSource:      models.AuthSourceDirectory,
		DirectoryAccess: true,
		Affiliations: models.Affiliations{
			{Organization: "Acme", Role: "viewer", Enabled: true},
		},
	}
}

func localUser(handle, password string) *models.User {
	user := directoryUser(handle)
	user.AuthSource = models.AuthSourceLocal
	user.Password = models.HashPassword(password)

	return user
}

func TestLoginMissingCredentials(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{}, fakePrincipals{})

	_, err := f.resolver.Login(context.Background(), Request{Handle: "alice"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = f.resolver.Login(context.Background(), Request{Secret: "pw"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	assert.Zero(t, f.directory.calls)
}

func TestLoginUnknownMode(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{}, fakePrincipals{})

	_, err := f.resolver.Login(context.Background(), Request{
		Handle: "alice", Secret: "pw", Mode: Mode("kerberos"),
	})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestLoginLocalMode(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{}, fakePrincipals{
		users: map[string]*models.User{"bob": localUser("bob", "s3cr3t")},
	})

	result, err := f.resolver.Login(context.Background(), Request{
		Handle: "bob", Secret: "s3cr3t", Mode: ModeLocal,
	})
	require.NoError(t, err)
	assert.Zero(t, f.directory.calls, "local mode must not touch the directory")

	assert.Equal(t, "bob", result.Claims.Username)
	assert.Equal(t, "viewer", result.Claims.Role)

	// the token embeds the same claims it was issued with
	verified, err := f.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Claims, verified)
}

func TestLoginLocalModeCollapsesFailures(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{}, fakePrincipals{
		users: map[string]*models.User{"bob": localUser("bob", "s3cr3t")},
	})

	// wrong password and unknown handle are indistinguishable to the caller
	_, err := f.resolver.Login(context.Background(), Request{
		Handle: "bob", Secret: "wrong", Mode: ModeLocal,
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.resolver.Login(context.Background(), Request{
		Handle: "nobody", Secret: "pw", Mode: ModeLocal,
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDomainMode(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{ous: []string{"SalesOU"}}, fakePrincipals{
		users: map[string]*models.User{"alice": directoryUser("alice")},
	})

	result, err := f.resolver.Login(context.Background(), Request{
		Handle: "alice", Secret: "pw", Mode: ModeDomain, OrganizationHint: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.directory.calls)
	assert.Equal(t, dirconfig.ContextOperator, f.directory.lastCx)

	require.NotNil(t, result.Claims.Organization)
	assert.Equal(t, "Acme", *result.Claims.Organization)
}

func TestLoginDomainModeRejections(t *testing.T) {
	tests := []struct {
		name    string
		dirErr  error
		wantErr error
	}{
		{name: "unknown principal", dirErr: ErrPrincipalNotFound, wantErr: ErrInvalidCredentials},
		{name: "bad secret", dirErr: ErrInvalidCredential, wantErr: ErrInvalidCredentials},
		{name: "ou not allowed", dirErr: ErrOUNotAllowed, wantErr: ErrInvalidCredentials},
		{name: "directory down stays distinct", dirErr: ErrServiceUnavailable, wantErr: ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResolverFixture(&fakeDirectory{err: tt.dirErr}, fakePrincipals{})

			_, err := f.resolver.Login(context.Background(), Request{
				Handle: "alice", Secret: "pw", Mode: ModeDomain,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoginDomainModeUnprovisionedPrincipal(t *testing.T) {
	// directory authentication succeeded but no user record exists and the
	// handle matches no organization
	f := newResolverFixture(&fakeDirectory{ous: []string{"SalesOU"}}, fakePrincipals{})

	_, err := f.resolver.Login(context.Background(), Request{
		Handle: "alice", Secret: "pw", Mode: ModeDomain,
	})
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestLoginHybridFallsBackToLocal(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{err: ErrPrincipalNotFound}, fakePrincipals{
		users: map[string]*models.User{"bob": localUser("bob", "s3cr3t")},
	})

	result, err := f.resolver.Login(context.Background(), Request{
		Handle: "bob", Secret: "s3cr3t", Mode: ModeHybrid,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.directory.calls)
	assert.Equal(t, "bob", result.Claims.Username)
}

func TestLoginHybridBothLegsFail(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{err: ErrInvalidCredential}, fakePrincipals{
		users: map[string]*models.User{"bob": localUser("bob", "s3cr3t")},
	})

	_, err := f.resolver.Login(context.Background(), Request{
		Handle: "bob", Secret: "wrong", Mode: ModeHybrid,
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginHybridPrefersDirectory(t *testing.T) {
	f := newResolverFixture(&fakeDirectory{ous: []string{"SalesOU"}}, fakePrincipals{
		users: map[string]*models.User{"alice": directoryUser("alice")},
	})

	result, err := f.resolver.Login(context.Background(), Request{
		Handle: "alice", Secret: "pw", Mode: ModeHybrid,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Claims.Username)
}

func TestLoginDefaultModeApplies(t *testing.T) {
	// fixture default is hybrid: the directory leg runs first
	f := newResolverFixture(&fakeDirectory{err: ErrPrincipalNotFound}, fakePrincipals{
		users: map[string]*models.User{"bob": localUser("bob", "s3cr3t")},
	})

	_, err := f.resolver.Login(context.Background(), Request{Handle: "bob", Secret: "s3cr3t"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.directory.calls)
}

func TestLoginCustomerSuccess(t *testing.T) {
	acme := &models.Organization{Name: "Acme", Email: "support@acme.example"}

	f := newResolverFixture(&fakeDirectory{ous: []string{"CustomerOU"}}, fakePrincipals{
		orgs: map[string]*models.Organization{"Acme": acme},
	})

	result, err := f.resolver.Login(context.Background(), Request{
		Handle: "Acme", Secret: "pw", Mode: ModeHybrid,
	})
	require.NoError(t, err)

	// customer-classified handles authenticate against the customer allow-list
	assert.Equal(t, dirconfig.ContextCustomer, f.directory.lastCx)

	assert.Equal(t, CustomerRoleName, result.Claims.Role)
	assert.Equal(t, "Acme", result.Claims.Username)
	assert.Equal(t, "support@acme.example", result.Claims.Email)
}

func TestLoginCustomerNeverFallsBackToLocal(t *testing.T) {
	acme := &models.Organization{Name: "Acme"}

	f := newResolverFixture(&fakeDirectory{err: ErrInvalidCredential}, fakePrincipals{
		orgs: map[string]*models.Organization{"Acme": acme},
		// a same-named local account must not be reachable on the customer path
		users: map[string]*models.User{"Acme": localUser("Acme", "pw")},
	})

	_, err := f.resolver.Login(context.Background(), Request{
		Handle: "Acme", Secret: "pw", Mode: ModeHybrid,
	})
	assert.ErrorIs(t, err, ErrCustomerNotProvisioned)
}

func TestLoginCustomerServiceUnavailable(t *testing.T) {
	acme := &models.Organization{Name: "Acme"}

	f := newResolverFixture(&fakeDirectory{err: ErrServiceUnavailable}, fakePrincipals{
		orgs: map[string]*models.Organization{"Acme": acme},
	})

	_, err := f.resolver.Login(context.Background(), Request{
		Handle: "Acme", Secret: "pw", Mode: ModeHybrid,
	})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.NotErrorIs(t, err, ErrCustomerNotProvisioned)
}

func TestLoginCustomerWithUserRecordGetsFullClaims(t *testing.T) {
	// a handle that is both an organization and a provisioned user resolves
	// the user's permissions, not the minimal customer claim set
	acme := &models.Organization{Name: "Acme"}
	user := directoryUser("Acme")

	f := newResolverFixture(&fakeDirectory{ous: []string{"CustomerOU"}}, fakePrincipals{
		orgs:  map[string]*models.Organization{"Acme": acme},
		users: map[string]*models.User{"Acme": user},
	})

	result, err := f.resolver.Login(context.Background(), Request{
		Handle: "Acme", Secret: "pw", Mode: ModeDomain,
	})
	require.NoError(t, err)
	assert.Equal(t, "viewer", result.Claims.Role)
	assert.NotEqual(t, CustomerRoleName, result.Claims.Role)
}

func TestLoginClaimGateErrorsSurface(t *testing.T) {
	gated := directoryUser("alice")
	gated.DirectoryAccess = false

	f := newResolverFixture(&fakeDirectory{ous: []string{"SalesOU"}}, fakePrincipals{
		users: map[string]*models.User{"alice": gated},
	})

	_, err := f.resolver.Login(context.Background(), Request{
		Handle: "alice", Secret: "pw", Mode: ModeDomain,
	})
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}
