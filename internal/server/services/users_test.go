package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/memory"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, rm repomanager.RepositoryManager, limiter LoginLimiter) *UserService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewUserService(db, rm, newHasher(), newTokenManager(t), limiter, logging.Nop())
}

func validInput() RegisterInput {
	return RegisterInput{Name: "Alice", Email: "Alice@Example.com ", Password: "s3cret", Role: "instructor"}
}

func TestRegister_Success(t *testing.T) {
	s := newUserService(t, memory.NewRepositoryManager(), nil)

	u, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleInstructor, u.Role)
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	rm := memory.NewRepositoryManager()
	s := newUserService(t, rm, nil)

	_, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)

	stored, err := rm.Users(nil).GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
}

func TestRegister_Validation(t *testing.T) {
	s := newUserService(t, memory.NewRepositoryManager(), nil)

	cases := map[string]func(*RegisterInput){
		"empty name":     func(in *RegisterInput) { in.Name = "   " },
		"long name":      func(in *RegisterInput) { in.Name = strings.Repeat("a", maxNameLen+1) },
		"empty email":    func(in *RegisterInput) { in.Email = "" },
		"bad email":      func(in *RegisterInput) { in.Email = "not-an-email" },
		"display email":  func(in *RegisterInput) { in.Email = "Alice <a@x.com>" },
		"empty password": func(in *RegisterInput) { in.Password = "" },
		"long password":  func(in *RegisterInput) { in.Password = strings.Repeat("p", 73) },
		"unknown role":   func(in *RegisterInput) { in.Role = "Admin" },
		"empty role":     func(in *RegisterInput) { in.Role = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := s.Register(context.Background(), in)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	s := newUserService(t, memory.NewRepositoryManager(), nil)

	_, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Email = "ALICE@example.COM"
	_, err = s.Register(context.Background(), in)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestRegister_InsertRaceIsDuplicate(t *testing.T) {
	fake := &fakeUsersRepo{getErr: common.ErrorNotFound, createErr: common.ErrDuplicateEmail}
	s := newUserService(t, &faultyManager{RepositoryManager: memory.NewRepositoryManager(), users: fake}, nil)

	_, err := s.Register(context.Background(), validInput())
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Equal(t, 1, fake.created)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	s := newUserService(t, memory.NewRepositoryManager(), nil)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(context.Background(), validInput())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, common.ErrDuplicateEmail):
				dups++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)
}

func TestRegister_RepoErrors(t *testing.T) {
	lookup := &fakeUsersRepo{getErr: errBoom}
	s := newUserService(t, &faultyManager{RepositoryManager: memory.NewRepositoryManager(), users: lookup}, nil)
	_, err := s.Register(context.Background(), validInput())
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, lookup.created)

	create := &fakeUsersRepo{getErr: common.ErrorNotFound, createErr: errBoom}
	s = newUserService(t, &faultyManager{RepositoryManager: memory.NewRepositoryManager(), users: create}, nil)
	_, err = s.Register(context.Background(), validInput())
	assert.ErrorContains(t, err, "error creating user: boom")
}

func TestLogin_RoundTrip(t *testing.T) {
	s := newUserService(t, memory.NewRepositoryManager(), nil)
	u, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)

	res, err := s.Login(context.Background(), "ALICE@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, *u, res.User)

	p, err := s.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, models.RoleInstructor, p.Role)
}

func TestLogin_InvalidCredentialsUndifferentiated(t *testing.T) {
	s := newUserService(t, memory.NewRepositoryManager(), nil)
	_, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)

	_, errWrong := s.Login(context.Background(), "alice@example.com", "wrong")
	_, errGhost := s.Login(context.Background(), "ghost@example.com", "s3cret")

	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errGhost, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errGhost.Error())
}

func TestLogin_OtherPasswordsFail(t *testing.T) {
	s := newUserService(t, memory.NewRepositoryManager(), nil)
	_, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)

	for i, pw := range []string{"", "S3cret", "s3cret ", "s3cre", "s3cret!"} {
		_, err := s.Login(context.Background(), "alice@example.com", pw)
		assert.ErrorIs(t, err, common.ErrInvalidCredentials, fmt.Sprintf("case %d", i))
	}
}

func TestLogin_LookupErrorIsInternal(t *testing.T) {
	fake := &fakeUsersRepo{getErr: errBoom}
	s := newUserService(t, &faultyManager{RepositoryManager: memory.NewRepositoryManager(), users: fake}, nil)

	_, err := s.Login(context.Background(), "alice@example.com", "x")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_Limiter(t *testing.T) {
	rm := memory.NewRepositoryManager()

	t.Run("blocked", func(t *testing.T) {
		lim := &fakeLimiter{allowed: false}
		s := newUserService(t, rm, lim)
		_, err := s.Login(context.Background(), "alice@example.com", "s3cret")
		assert.ErrorIs(t, err, common.ErrRateLimited)
	})

	t.Run("failure counted, success resets", func(t *testing.T) {
		lim := &fakeLimiter{allowed: true}
		s := newUserService(t, rm, lim)
		_, err := s.Register(context.Background(), validInput())
		require.NoError(t, err)

		_, err = s.Login(context.Background(), "alice@example.com", "wrong")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		_, err = s.Login(context.Background(), "nobody@example.com", "wrong")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		assert.Equal(t, 2, lim.fails)

		_, err = s.Login(context.Background(), "alice@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, 1, lim.resets)
	})

	t.Run("limiter errors fail open", func(t *testing.T) {
		lim := &fakeLimiter{allowErr: errBoom, failErr: errBoom}
		s := newUserService(t, rm, lim)
		_, err := s.Login(context.Background(), "alice@example.com", "wrong")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		_, err = s.Login(context.Background(), "alice@example.com", "s3cret")
		assert.NoError(t, err)
	})
}

func TestProfile(t *testing.T) {
	rm := memory.NewRepositoryManager()
	s := newUserService(t, rm, nil)
	u, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)

	got, err := s.Profile(context.Background(), &auth.Principal{UserID: u.ID, Name: "stale name"})
	require.NoError(t, err)
	assert.Equal(t, u, got)

	for _, p := range []*auth.Principal{nil, {UserID: missing}, {UserID: "not-a-uuid"}} {
		_, err := s.Profile(context.Background(), p)
		assert.ErrorIs(t, err, common.ErrUnauthenticated)
	}
}

func TestProfile_LookupError(t *testing.T) {
	fake := &fakeUsersRepo{getErr: errBoom}
	s := newUserService(t, &faultyManager{RepositoryManager: memory.NewRepositoryManager(), users: fake}, nil)

	_, err := s.Profile(context.Background(), &auth.Principal{UserID: aliceID})
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, common.ErrUnauthenticated)
}
