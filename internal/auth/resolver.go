package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/db/store"
	"github.com/wysehawk/casedesk/internal/dirconfig"
)

// Mode selects which authenticators a login attempt runs.
type Mode string

const (
	// ModeLocal runs only the local credential store.
	ModeLocal Mode = "local"
	// ModeDomain runs only the directory pipeline.
	ModeDomain Mode = "domain"
	// ModeHybrid runs the directory pipeline and falls back to the local
	// credential store on directory failure. Default when unspecified.
	ModeHybrid Mode = "hybrid"
)

// Request is a login attempt entering the strategy resolver.
type Request struct {
	// Handle is the login name.
	Handle string
	// Secret is the supplied credential.
	Secret string
	// Mode selects the authentication strategy; empty selects the
	// configured default.
	Mode Mode
	// OrganizationHint is the organization the caller asked to log into,
	// carried through into the issued claims.
	OrganizationHint string
}

// Result is a successful login: the signed token plus the claims it carries.
type Result struct {
	Token  string
	Claims *SessionClaims
}

// DirectoryAuthenticator is the directory leg of the strategy resolver.
type DirectoryAuthenticator interface {
	Authenticate(ctx context.Context, handle, secret string, fctx dirconfig.FilterContext) ([]string, error)
}

// LocalAuthenticator is the local credential store leg of the resolver.
type LocalAuthenticator interface {
	Authenticate(ctx context.Context, handle, secret string) (*models.User, error)
}

// PrincipalStore is the read-only durable-store surface the resolver needs.
type PrincipalStore interface {
	UserByHandle(ctx context.Context, handle string) (*models.User, error)
	OrganizationByName(ctx context.Context, name string) (*models.Organization, error)
}

// ResolverConfig carries the injected configuration for the strategy
// resolver. Nothing is read from files mid-request.
type ResolverConfig struct {
	// SuperAdmin is the distinguished handle that bypasses affiliation checks.
	SuperAdmin string
	// DefaultMode applies when a login request does not name a mode.
	DefaultMode Mode
}

// Resolver is the authentication strategy state machine. It sequences the
// directory and local authenticators according to the requested mode,
// classifies customer handles, resolves per-organization permissions and
// issues the session token.
//
// Terminal outcomes are a Result or one of the package's rejection errors.
// Account-enumeration-relevant causes (unknown principal, bad secret,
// disallowed OU) are collapsed into ErrInvalidCredentials before they reach
// the caller; the precise cause is logged server-side.
type Resolver struct {
	cfg       ResolverConfig
	directory DirectoryAuthenticator
	local     LocalAuthenticator
	store     PrincipalStore
	claims    *ClaimsResolver
	tokens    *TokenIssuer
}

// NewResolver creates the strategy resolver.
func NewResolver(
	cfg ResolverConfig,
	directory DirectoryAuthenticator,
	local LocalAuthenticator,
	principals PrincipalStore,
	claims *ClaimsResolver,
	tokens *TokenIssuer,
) *Resolver {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = ModeHybrid
	}

	return &Resolver{
		cfg:       cfg,
		directory: directory,
		local:     local,
		store:     principals,
		claims:    claims,
		tokens:    tokens,
	}
}

// Login runs the full authenticate-then-resolve pipeline for one attempt.
// Each call is independent; concurrent logins share no mutable state.
func (r *Resolver) Login(ctx context.Context, req Request) (*Result, error) {
	if req.Handle == "" || req.Secret == "" {
		return nil, ErrMissingCredentials
	}

	mode := req.Mode
	if mode == "" {
		mode = r.cfg.DefaultMode
	}

	org, err := r.classifyCustomer(ctx, req.Handle)
	if err != nil {
		return nil, err
	}

	localUser, err := r.authenticate(ctx, mode, req, org != nil)
	if err != nil {
		return nil, err
	}

	claims, err := r.resolveClaims(ctx, req, localUser, org)
	if err != nil {
		return nil, err
	}

	token, err := r.tokens.Issue(claims)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user", claims.Username).
		Str("role", claims.Role).
		Str("mode", string(mode)).
		Msg("login succeeded")

	return &Result{Token: token, Claims: claims}, nil
}

// classifyCustomer checks whether the handle matches a known organization
// name. Customer-classified handles use the customer OU allow-list and never
// fall back to local authentication.
func (r *Resolver) classifyCustomer(ctx context.Context, handle string) (*models.Organization, error) {
	org, err := r.store.OrganizationByName(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to classify handle: %w", err)
	}

	return org, nil
}

// authenticate runs the authenticator sequence for the requested mode and
// returns the local user when local authentication produced one.
func (r *Resolver) authenticate(
	ctx context.Context,
	mode Mode,
	req Request,
	isCustomer bool,
) (*models.User, error) {
	fctx := dirconfig.ContextOperator
	if isCustomer {
		fctx = dirconfig.ContextCustomer
	}

	switch mode {
	case ModeLocal:
		return r.authenticateLocal(ctx, req)

	case ModeDomain:
		_, err := r.directory.Authenticate(ctx, req.Handle, req.Secret, fctx)
		if err != nil {
			return nil, r.rejectDirectory(req.Handle, err, isCustomer)
		}

		return nil, nil

	case ModeHybrid:
		_, err := r.directory.Authenticate(ctx, req.Handle, req.Secret, fctx)
		if err == nil {
			return nil, nil
		}

		if isCustomer {
			return nil, r.rejectDirectory(req.Handle, err, true)
		}

		log.Debug().Err(err).Str("user", req.Handle).Msg("directory authentication failed, trying local")

		return r.authenticateLocal(ctx, req)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// authenticateLocal runs the local credential store and collapses its
// failure causes into the generic caller-visible error.
func (r *Resolver) authenticateLocal(ctx context.Context, req Request) (*models.User, error) {
	user, err := r.local.Authenticate(ctx, req.Handle, req.Secret)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, ErrPrincipalNotFound) || errors.Is(err, ErrInvalidCredential) {
		log.Warn().Err(err).Str("user", req.Handle).Msg("local authentication rejected")

		return nil, ErrInvalidCredentials
	}

	return nil, err
}

// rejectDirectory maps a directory failure onto the caller-visible outcome.
// Infrastructure failures stay distinct so operators can monitor them;
// everything enumeration-relevant collapses. Customer-classified handles get
// the distinct not-provisioned outcome instead of the generic message.
func (r *Resolver) rejectDirectory(handle string, err error, isCustomer bool) error {
	if errors.Is(err, ErrServiceUnavailable) {
		log.Error().Err(err).Str("user", handle).Msg("directory service failure")

		return err
	}

	log.Warn().Err(err).Str("user", handle).Msg("directory authentication rejected")

	if isCustomer {
		return ErrCustomerNotProvisioned
	}

	return ErrInvalidCredentials
}

// resolveClaims turns a successful authentication into session claims: a
// provisioned user's aggregated permissions, or the minimal customer claim
// set when only the organization is known.
func (r *Resolver) resolveClaims(
	ctx context.Context,
	req Request,
	localUser *models.User,
	org *models.Organization,
) (*SessionClaims, error) {
	user := localUser

	if user == nil {
		found, err := r.store.UserByHandle(ctx, req.Handle)

		switch {
		case errors.Is(err, store.ErrNotFound):
			if org != nil {
				return r.claims.CustomerClaims(org), nil
			}

			log.Warn().Str("user", req.Handle).Msg("authenticated principal has no user record")

			return nil, ErrPrincipalNotFound
		case err != nil:
			return nil, fmt.Errorf("failed to load user: %w", err)
		}

		user = found
	}

	return r.claims.Resolve(ctx, user, req.OrganizationHint)
}
