package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the JWT claim set wrapping the resolved session claims.
type tokenClaims struct {
	SessionClaims
	jwt.RegisteredClaims
}

// TokenIssuer signs session claims into opaque, externally verifiable
// tokens using a symmetric secret. Tokens are the caller's property once
// issued; nothing is persisted server-side.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer. ttl of zero issues tokens without
// an expiry claim.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs the claim set into a compact token string.
func (t *TokenIssuer) Issue(claims *SessionClaims) (string, error) {
	tc := tokenClaims{
		SessionClaims: *claims,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	if t.ttl > 0 {
		tc.ExpiresAt = jwt.NewNumericDate(time.Now().Add(t.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

// Verify parses and validates a token and returns the embedded session
// claims. Every failure (bad signature, malformed token, expiry) is the
// single ErrInvalidToken regardless of root cause.
func (t *TokenIssuer) Verify(token string) (*SessionClaims, error) {
	var tc tokenClaims

	parsed, err := jwt.ParseWithClaims(
		token,
		&tc,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &tc.SessionClaims, nil
}
