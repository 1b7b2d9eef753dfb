package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt with a configurable cost.
type PasswordHasher struct {
	cost int
	// dummy is compared against when the user does not exist so that a
	// miss costs as much as a wrong password.
	dummy []byte
}

// NewPasswordHasher returns a hasher; cost <= 0 selects bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &PasswordHasher{cost: cost, dummy: dummy}
}

// Hash derives the stored hash. Passwords over bcrypt's 72 byte limit are
// rejected rather than silently truncated.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is longer than 72 bytes", common.ErrorValidation)
		}
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash, in constant time.
func (h *PasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Burn spends one comparison's worth of work without a real hash.
func (h *PasswordHasher) Burn(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
