package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/courses"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/memory"
	usersrepo "github.com/dmitrijs2005/eduplatform/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(auth.TokenConfig{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "eduplatform",
		Audience: "eduplatform-client",
		TTL:      2 * time.Hour,
	})
	require.NoError(t, err)
	return tm
}

func newHasher() *auth.PasswordHasher { return auth.NewPasswordHasher(bcrypt.MinCost) }

// seedUser stores a user directly and returns its principal.
func seedUser(t *testing.T, m *memory.RepositoryManager, id, name string, role models.Role) *auth.Principal {
	t.Helper()
	u := &models.User{ID: id, Name: name, Email: name + "@x.com", Role: role}
	_, err := m.Users(nil).Create(context.Background(), u)
	require.NoError(t, err)
	return &auth.Principal{UserID: id, Email: u.Email, Name: name, Role: role}
}

const (
	aliceID = "11111111-1111-1111-1111-111111111111"
	bobID   = "22222222-2222-2222-2222-222222222222"
	carolID = "33333333-3333-3333-3333-333333333333"
	missing = "99999999-9999-9999-9999-999999999999"
)

// faultyManager wraps the in-memory manager and replaces individual
// repositories with failing ones.
type faultyManager struct {
	*memory.RepositoryManager
	users   usersrepo.Repository
	courses courses.Repository
}

func (m *faultyManager) Users(db dbx.DBTX) usersrepo.Repository {
	if m.users != nil {
		return m.users
	}
	return m.RepositoryManager.Users(db)
}

func (m *faultyManager) Courses(db dbx.DBTX) courses.Repository {
	if m.courses != nil {
		return m.courses
	}
	return m.RepositoryManager.Courses(db)
}

type fakeUsersRepo struct {
	getOut    *models.User
	getErr    error
	createErr error
	created   int
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.created++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	return f.getOut, f.getErr
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	return f.getOut, f.getErr
}

type fakeCoursesRepo struct {
	courses.Repository
	course    *models.Course
	getErr    error
	updateErr error
	setErr    error
}

func (f *fakeCoursesRepo) GetByID(context.Context, string) (*models.Course, error) {
	return f.course, f.getErr
}

func (f *fakeCoursesRepo) GetForUpdate(context.Context, string) (*models.Course, error) {
	return f.course, f.getErr
}

func (f *fakeCoursesRepo) Update(context.Context, *models.Course) error { return f.updateErr }
func (f *fakeCoursesRepo) Delete(context.Context, string) error         { return f.updateErr }

func (f *fakeCoursesRepo) SetMediaURL(context.Context, string, string) error { return f.setErr }

type fakeLimiter struct {
	allowed  bool
	allowErr error
	failErr  error
	fails    int
	resets   int
}

func (f *fakeLimiter) Allowed(context.Context, string) (bool, error) { return f.allowed, f.allowErr }

func (f *fakeLimiter) Fail(context.Context, string) error {
	f.fails++
	return f.failErr
}

func (f *fakeLimiter) Reset(context.Context, string) error {
	f.resets++
	return nil
}
