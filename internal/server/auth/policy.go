package auth

import (
	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

// RequireRole is the role gate: the caller must hold exactly role.
func RequireRole(p *Principal, role models.Role) error {
	if p == nil {
		return common.ErrUnauthenticated
	}
	if p.Role != role {
		return common.ErrForbidden
	}
	return nil
}

// RequireOwner is the ownership gate. It must only be evaluated once the
// resource is known to exist.
func RequireOwner(p *Principal, ownerID string) error {
	if p == nil {
		return common.ErrUnauthenticated
	}
	if ownerID == "" || p.UserID != ownerID {
		return common.ErrForbidden
	}
	return nil
}
