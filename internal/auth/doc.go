// Package auth implements the directory-backed multi-strategy authentication
// and per-organization authorization resolver.
//
// # Authentication Providers
//
// DirectoryProvider authenticates principals against an external LDAP-style
// directory: a service bind, a subtree search for exactly one entry, an
// organizational-unit allow-list check, and a second independent bind as the
// matched entry to verify the caller-supplied secret. Connections are opened
// and torn down strictly within a single attempt and are closed on every
// exit path.
//
// LocalProvider verifies principals against locally persisted Argon2id
// password hashes and is used as the sole strategy or as the hybrid-mode
// fallback.
//
// # Strategy Resolver
//
// Resolver sequences the two providers according to a requested mode:
//
//   - local: credential store only
//   - domain: directory only
//   - hybrid: directory first, local fallback (default)
//
// A handle matching a known organization name is classified as a customer
// login: it uses the customer OU allow-list and never falls back to the
// local store. Unknown-principal, bad-secret and disallowed-OU failures are
// collapsed into one generic caller-visible error to prevent account
// enumeration; the precise cause is logged.
//
// # Authorization
//
// ClaimsResolver aggregates the principal's enabled organization
// affiliations: each affiliation's role contributes its permission tree to
// the per-organization permission map, the primary role supplies the tree
// for screens that are not organization-scoped, and the configured
// super-administrator handle bypasses all affiliation checks.
//
// # Session Tokens
//
// TokenIssuer signs the resolved claims into an HS256 JWT and verifies
// presented tokens; every verification failure is the single ErrInvalidToken.
//
// Example usage:
//
//	directory := auth.NewDirectoryProvider(settings, nil)
//	local := auth.NewLocalProvider(st)
//	claims := auth.NewClaimsResolver(st, cfg.Auth.SuperAdmin)
//	tokens := auth.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL.Duration)
//
//	resolver := auth.NewResolver(auth.ResolverConfig{
//	    SuperAdmin:  cfg.Auth.SuperAdmin,
//	    DefaultMode: auth.ModeHybrid,
//	}, directory, local, st, claims, tokens)
//
//	result, err := resolver.Login(ctx, auth.Request{Handle: handle, Secret: secret})
package auth
