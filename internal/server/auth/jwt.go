// Package auth issues and validates session tokens, hashes passwords and
// evaluates the role and ownership access policies.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session token payload. Subject carries the user id and ID
// carries a fresh jti per token.
type Claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenManager. All string fields and a positive
// TTL are required.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenManager signs and verifies HS256 session tokens. It is stateless
// and safe for concurrent use.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenManager validates cfg and returns a manager. Misconfiguration is
// reported as common.ErrorConfiguration so callers can abort startup.
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	switch {
	case len(cfg.Secret) == 0:
		return nil, fmt.Errorf("%w: signing secret is empty", common.ErrorConfiguration)
	case strings.TrimSpace(cfg.Issuer) == "":
		return nil, fmt.Errorf("%w: issuer is empty", common.ErrorConfiguration)
	case strings.TrimSpace(cfg.Audience) == "":
		return nil, fmt.Errorf("%w: audience is empty", common.ErrorConfiguration)
	case cfg.TTL <= 0:
		return nil, fmt.Errorf("%w: token lifetime must be positive", common.ErrorConfiguration)
	}

	return &TokenManager{
		secret:   cfg.Secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue builds and signs a token for a verified user.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()

	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate verifies signature, algorithm, expiry, issuer and audience and
// returns the caller's Principal. A token is valid while now < exp. Every
// failure wraps common.ErrUnauthenticated.
func (m *TokenManager) Validate(tokenString string) (*Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, common.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, errors.New("token has no subject"))
	}

	return &Principal{
		UserID:  claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
		TokenID: claims.ID,
	}, nil
}
