package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/ratelimit"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/memory"
	"github.com/dmitrijs2005/eduplatform/internal/server/services"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(context.Context) error { return f.err }

type fakePresigner struct{}

func (fakePresigner) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://127.0.0.1:9000/media/" + key + "?X-Amz-Signature=put", nil
}

func (fakePresigner) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://127.0.0.1:9000/media/" + key + "?X-Amz-Signature=get", nil
}

type envOptions struct {
	presigner services.ObjectPresigner
	limiter   services.LoginLimiter
	pinger    Pinger
	noMedia   bool
}

type testEnv struct {
	handler http.Handler
	tokens  *auth.TokenManager
	rm      *memory.RepositoryManager
}

func tokenConfig(secret string) auth.TokenConfig {
	return auth.TokenConfig{
		Secret:   []byte(secret),
		Issuer:   "eduplatform",
		Audience: "eduplatform-client",
		TTL:      2 * time.Hour,
	}
}

// newTestEnv wires the real services over the in-memory repositories. The
// sqlmock database only serves the transaction boundaries.
func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 100; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	tokens, err := auth.NewTokenManager(tokenConfig(testSecret))
	require.NoError(t, err)

	if opts.presigner == nil && !opts.noMedia {
		opts.presigner = fakePresigner{}
	}
	if opts.pinger == nil {
		opts.pinger = &fakePinger{}
	}

	rm := memory.NewRepositoryManager()
	l := logging.Nop()
	h := &Handlers{
		Users:       services.NewUserService(db, rm, auth.NewPasswordHasher(bcrypt.MinCost), tokens, opts.limiter, l),
		Courses:     services.NewCourseService(db, rm, l),
		Assessments: services.NewAssessmentService(db, rm, l),
		Results:     services.NewResultService(db, rm, l),
		Media:       services.NewMediaService(db, rm, opts.presigner, 15*time.Minute, l),
		DB:          opts.pinger,
		Logger:      l,
	}

	return &testEnv{
		handler: NewRouter(h, RouterConfig{Tokens: tokens, AllowedOrigins: []string{"http://localhost:3000"}}),
		tokens:  tokens,
		rm:      rm,
	}
}

func newRedisLimiter(t *testing.T, max int) *ratelimit.LoginLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return ratelimit.NewLoginLimiter(rdb, ratelimit.Config{MaxAttempts: max, Window: time.Minute})
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), v), r.Body.String())
}

func (r response) errorCode(t *testing.T) string {
	t.Helper()
	var body ErrorBody
	r.decode(t, &body)
	return body.Error
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return response{rec}
}

type account struct {
	user  models.PublicUser
	token string
}

// signup registers and logs in a user.
func (e *testEnv) signup(t *testing.T, name string, role models.Role) account {
	t.Helper()
	email := name + "@example.com"
	res := e.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{Name: name, Email: email, Password: "pw-" + name, Role: string(role)})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = e.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: "pw-" + name})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var lr LoginResponse
	res.decode(t, &lr)
	return account{user: lr.User, token: lr.Token}
}

func (e *testEnv) createCourse(t *testing.T, a account, title string) CourseResponse {
	t.Helper()
	res := e.do(t, http.MethodPost, "/courses", a.token, CourseRequest{Title: title, Description: "about " + title})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var c CourseResponse
	res.decode(t, &c)
	return c
}

var errDown = errors.New("connection refused")

func (e *testEnv) handlerRequest(method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
