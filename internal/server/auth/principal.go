package auth

import (
	"context"

	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

// Principal is the authenticated caller extracted from a valid token.
type Principal struct {
	UserID  string      `json:"id"`
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	Role    models.Role `json:"role"`
	TokenID string      `json:"-"`
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
