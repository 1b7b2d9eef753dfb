// Package services contains server-side business logic: registration and
// login, course management with ownership checks, assessments, results and
// course media.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LoginLimiter throttles failed logins per key. Implementations must be
// safe for concurrent use.
type LoginLimiter interface {
	Allowed(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// RegisterInput is the raw registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// LoginResult is a freshly issued session token plus the caller's profile.
type LoginResult struct {
	Token string
	User  models.PublicUser
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenManager
	limiter     LoginLimiter
	logger      logging.Logger
}

// NewUserService wires the registration and login flows. limiter may be nil,
// which disables failed-login throttling.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	tokens *auth.TokenManager, limiter LoginLimiter, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		limiter:     limiter,
		logger:      logger.With("module", "users"),
	}
}

// Register validates the input, hashes the password and stores a new
// identity. The unique index on email is the authoritative duplicate guard;
// the lookup beforehand only avoids hashing for an obvious duplicate.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	name := trim(in.Name)
	email := models.NormalizeEmail(in.Email)

	if err := validateLength("name", name, 1, maxNameLen); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, invalid("password is required")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	_, err = repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "role", string(user.Role))
	pub := user.Public()
	return &pub, nil
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password are indistinguishable to the caller, in outcome and in
// bcrypt work performed.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)

	if s.limiter != nil {
		ok, err := s.limiter.Allowed(ctx, email)
		if err != nil {
			s.logger.Warn(ctx, "login limiter unavailable", "error", err)
		} else if !ok {
			return nil, common.ErrRateLimited
		}
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		s.hasher.Burn(password)
		s.recordFailure(ctx, email)
		return nil, common.ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.recordFailure(ctx, email)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn(ctx, "login limiter reset failed", "error", err)
		}
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, User: user.Public()}, nil
}

func (s *UserService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.logger.Warn(ctx, "login limiter update failed", "error", err)
	}
}

// Profile reloads the caller's stored profile. A token whose subject no
// longer exists is treated as unauthenticated.
func (s *UserService) Profile(ctx context.Context, p *auth.Principal) (*models.PublicUser, error) {
	if p == nil {
		return nil, common.ErrUnauthenticated
	}
	if err := checkID(p.UserID); err != nil {
		return nil, common.ErrUnauthenticated
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}
