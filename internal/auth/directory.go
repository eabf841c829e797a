package auth

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/wysehawk/casedesk/internal/dirconfig"
)

// defaultDirectoryTimeout bounds every single directory operation so a
// directory outage cannot starve login goroutines.
const defaultDirectoryTimeout = 5 * time.Second

// DirectoryConn is the subset of *ldap.Conn the directory provider uses.
// It exists so tests can substitute a fake connection and assert that every
// exit path closes exactly the connections it opened.
type DirectoryConn interface {
	Bind(username, password string) error
	Search(request *ldap.SearchRequest) (*ldap.SearchResult, error)
	SetTimeout(timeout time.Duration)
	Close() error
}

// DialFunc opens a connection to the directory endpoint described by the
// settings document.
type DialFunc func(settings dirconfig.Directory) (DirectoryConn, error)

// DialDirectory is the production DialFunc backed by go-ldap.
func DialDirectory(settings dirconfig.Directory) (DirectoryConn, error) {
	var tlsConfig *tls.Config
	if settings.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: settings.SkipVerify, //nolint:gosec // operator-controlled test setting
			ServerName:         settings.URL,
		}
	}

	conn, err := ldap.DialURL(settings.Address(), ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to directory server: %w", err)
	}

	return conn, nil
}

// DirectorySettings supplies the current directory connection settings and
// OU allow-lists. Implemented by dirconfig.Manager; tests provide fixtures.
type DirectorySettings interface {
	Directory() dirconfig.Directory
	AllowedOUs(fctx dirconfig.FilterContext) []string
}

// DirectoryProvider authenticates principals against the directory service.
//
// Every call performs the full sequential pipeline on short-lived
// connections: service bind, subtree search for exactly one entry, OU
// extraction from the matched distinguished name, OU allow-list check, and a
// second independent bind as the matched entry to verify the caller-supplied
// secret. Nothing is pooled or reused across calls and nothing is persisted.
type DirectoryProvider struct {
	settings DirectorySettings
	filter   *OUFilter
	dial     DialFunc
	timeout  time.Duration
}

// NewDirectoryProvider creates a directory provider over the given settings
// source. A nil dial function selects the production go-ldap dialer.
func NewDirectoryProvider(settings DirectorySettings, dial DialFunc) *DirectoryProvider {
	if dial == nil {
		dial = DialDirectory
	}

	return &DirectoryProvider{
		settings: settings,
		filter:   NewOUFilter(settings),
		dial:     dial,
		timeout:  defaultDirectoryTimeout,
	}
}

// Authenticate verifies the handle and secret against the directory and
// returns the organizational-unit values extracted from the matched entry's
// distinguished name, in DN order.
//
// Failures map onto the package taxonomy: ErrServiceUnavailable for dial,
// service-bind and search infrastructure errors; ErrPrincipalNotFound and
// ErrMultipleEntries for search result anomalies; ErrOUNotAllowed when the
// allow-list rejects the entry; ErrInvalidCredential when the user bind
// fails. Both connections are closed on every exit path.
func (p *DirectoryProvider) Authenticate(
	ctx context.Context,
	handle, secret string,
	fctx dirconfig.FilterContext,
) ([]string, error) {
	settings := p.settings.Directory()
	if !settings.Configured() {
		return nil, fmt.Errorf("%w: directory is not configured", ErrServiceUnavailable)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	userDN, ous, err := p.searchPrincipal(settings, handle, fctx)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if err := p.verifySecret(settings, userDN, secret); err != nil {
		return nil, err
	}

	return ous, nil
}

// searchPrincipal runs the service-bind + subtree-search leg on its own
// connection and returns the matched DN and its OU components.
func (p *DirectoryProvider) searchPrincipal(
	settings dirconfig.Directory,
	handle string,
	fctx dirconfig.FilterContext,
) (string, []string, error) {
	conn, err := p.dial(settings)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close directory search connection")
		}
	}()

	conn.SetTimeout(p.timeout)

	if err = conn.Bind(settings.BindDN, settings.BindCredentials); err != nil {
		return "", nil, fmt.Errorf("%w: service bind failed: %v", ErrServiceUnavailable, err)
	}

	filter := strings.ReplaceAll(settings.SearchFilter, "{{username}}", ldap.EscapeFilter(handle))
	request := ldap.NewSearchRequest(
		settings.SearchBase,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		int(p.timeout/time.Second),
		false,
		filter,
		[]string{"dn"},
		nil,
	)

	result, err := conn.Search(request)
	if err != nil {
		return "", nil, fmt.Errorf("%w: search failed: %v", ErrServiceUnavailable, err)
	}

	switch len(result.Entries) {
	case 0:
		return "", nil, ErrPrincipalNotFound
	case 1:
		// accepted below
	default:
		return "", nil, ErrMultipleEntries
	}

	userDN := result.Entries[0].DN

	ous, err := extractOUs(userDN)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if !p.filter.Allowed(ous, fctx) {
		return "", nil, fmt.Errorf("%w: %v", ErrOUNotAllowed, ous)
	}

	return userDN, ous, nil
}

// verifySecret opens a second, independent connection and binds as the
// matched entry to confirm the caller-supplied secret.
func (p *DirectoryProvider) verifySecret(settings dirconfig.Directory, userDN, secret string) error {
	conn, err := p.dial(settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close directory verification connection")
		}
	}()

	conn.SetTimeout(p.timeout)

	if err = conn.Bind(userDN, secret); err != nil {
		return fmt.Errorf("%w: user bind failed: %v", ErrInvalidCredential, err)
	}

	return nil
}

// TestServiceBind dials the directory with the given settings and performs a
// service bind. Used by the administrative connection test endpoint.
func (p *DirectoryProvider) TestServiceBind(settings dirconfig.Directory) error {
	conn, err := p.dial(settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close directory test connection")
		}
	}()

	conn.SetTimeout(p.timeout)

	if err = conn.Bind(settings.BindDN, settings.BindCredentials); err != nil {
		return fmt.Errorf("%w: service bind failed: %v", ErrServiceUnavailable, err)
	}

	return nil
}

// extractOUs parses a distinguished name and collects every
// organizational-unit component value in DN order. The attribute type match
// is case-insensitive ("OU" and "ou" both count).
func extractOUs(dn string) ([]string, error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse distinguished name %q: %w", dn, err)
	}

	var ous []string

	for _, rdn := range parsed.RDNs {
		for _, attr := range rdn.Attributes {
			if strings.EqualFold(attr.Type, "ou") {
				ous = append(ous, attr.Value)
			}
		}
	}

	return ous, nil
}
