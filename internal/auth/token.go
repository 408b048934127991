package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "opsportal"

// minSigningKeyBytes is 256 bits, the floor for an HS256 key.
const minSigningKeyBytes = 32

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer creates and validates signed, time-limited session tokens.
// The key is fixed at construction and safe for concurrent use.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer builds an issuer from a raw signing key and token lifetime.
// The key must be at least 256 bits and the lifetime positive; both are
// configuration-time invariants, so violations are construction errors.
func NewTokenIssuer(key []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(key) < minSigningKeyBytes {
		return nil, fmt.Errorf("signing key is %d bytes, need at least %d", len(key), minSigningKeyBytes)
	}
	if ttl <= 0 {
		return nil, errors.New("token lifetime must be greater than zero")
	}
	return &TokenIssuer{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue signs a session token for the subject email carrying the role claim.
func (t *TokenIssuer) Issue(subjectEmail string, role Role) (string, time.Time, error) {
	subjectEmail = strings.TrimSpace(subjectEmail)
	if subjectEmail == "" {
		return "", time.Time{}, errors.New("subject email is required")
	}
	if !role.Valid() {
		return "", time.Time{}, ErrInvalidRole
	}

	now := t.now().UTC()
	expiresAt := now.Add(t.ttl)
	claims := SessionClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subjectEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies the token signature, structure and expiry, and returns
// the embedded claims. Every failure collapses to ErrInvalidToken: the caller
// learns nothing about whether the subject exists or why validation failed.
func (t *TokenIssuer) Validate(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return t.key, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now().UTC() }))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := t.validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *TokenIssuer) validateClaims(claims *SessionClaims) error {
	if claims.Issuer != issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	if _, err := ParseRole(claims.Role); err != nil {
		return err
	}
	now := t.now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
