package auth

import "errors"

var (
	// ErrMissingCredentials is returned when a login request lacks a handle or secret.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrServiceUnavailable is returned when the directory service cannot be
	// reached or the service bind or search fails for infrastructure reasons.
	// It is deliberately distinct from a bad end-user credential so operators
	// can tell "directory down" from "wrong password" in monitoring.
	ErrServiceUnavailable = errors.New("directory service unavailable")

	// ErrPrincipalNotFound is returned when no principal matches the handle.
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrMultipleEntries is returned when a directory search expected one
	// entry but found several. This typically indicates a misconfigured
	// search filter or duplicate directory entries.
	ErrMultipleEntries = errors.New("multiple directory entries found")

	// ErrInvalidCredential is returned when the supplied secret does not
	// verify against the directory or the stored hash.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrOUNotAllowed is returned when an authenticated principal's
	// organizational units match none of the allow-listed values.
	ErrOUNotAllowed = errors.New("organizational unit not allowed")

	// ErrInvalidCredentials is the single caller-visible authentication
	// failure. The resolver collapses ErrPrincipalNotFound,
	// ErrInvalidCredential and ErrOUNotAllowed into this error so responses
	// cannot be used to enumerate accounts; the precise cause is logged.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrFeatureDisabled is returned when organization-scoped access is
	// switched off for the principal.
	ErrFeatureDisabled = errors.New("access denied: directory role is disabled")

	// ErrNoValidOrganization is returned when the principal has no enabled
	// affiliation with a role.
	ErrNoValidOrganization = errors.New("access denied: no enabled organization")

	// ErrCustomerNotProvisioned is returned when a customer-classified handle
	// fails directory authentication. Customer logins never fall back to the
	// local credential store.
	ErrCustomerNotProvisioned = errors.New("customer not provisioned")

	// ErrInvalidToken is returned for any session token verification failure,
	// regardless of the root cause (bad signature, malformed token, expiry).
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnknownMode is returned when a login request names an unknown
	// authentication mode.
	ErrUnknownMode = errors.New("unknown authentication mode")
)
