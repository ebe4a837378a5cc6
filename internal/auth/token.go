// Package auth mints and validates the signed identity capability handed to
// party clients. The core consumes it only as validate(token) -> subject+role;
// role-based write restrictions are enforced by the session service, not here.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

// Role describes what a token's subject may do inside a party.
type Role string

const (
	// RoleHost is the party creator; hosts may publish every event kind.
	RoleHost Role = "host"
	// RoleGuest is a joined member; guests may not create parties or drive
	// playback.
	RoleGuest Role = "guest"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool { return r == RoleHost || r == RoleGuest }

const (
	tokenTTL    = 24 * time.Hour
	tokenLeeway = 2 * time.Minute
)

// Config defines how tokens are signed and verified.
type Config struct {
	Secret []byte
	Now    func() time.Time
}

// Claims captures a validated token's identity.
type Claims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

// tokenClaims is the internal claims type used for JWT parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Mint issues a signed token for the subject with the given role.
func Mint(cfg Config, subject string, role Role) (string, error) {
	if len(cfg.Secret) == 0 {
		return "", fmt.Errorf("token signer is not configured")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("token subject is required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	now := cfg.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Role: string(role),
	})
	signed, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies a token and returns its subject and role. Every failure
// mode collapses to a single invalid-token error so callers cannot probe.
func Validate(cfg Config, token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "token is required")
	}
	if len(cfg.Secret) == 0 {
		return Claims{}, fmt.Errorf("token verifier is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithTimeFunc(cfg.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeTokenInvalid, "token is invalid", err)
	}

	role := Role(parsed.Role)
	if parsed.Subject == "" || !role.Valid() {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "token claims are incomplete")
	}
	return Claims{
		Subject:   parsed.Subject,
		Role:      role,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
