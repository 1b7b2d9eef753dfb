package httpapi

import (
	"context"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/google/uuid"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type requestIDKey struct{}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(common.RequestIDHeaderName)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(common.RequestIDHeaderName, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Logging logs one line per request. Headers and bodies are never logged.
func Logging(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info(r.Context(), "http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.status,
				"duration", time.Since(start),
				"request_id", RequestIDFromContext(r.Context()),
			)
		})
	}
}

// Recover turns a panic into a 500 response.
func Recover(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.Error(r.Context(), "panic",
						"error", p,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: errInternal})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows the configured browser origins. Preflight requests from an
// allowed origin are answered directly.
func CORS(allowed []string) Middleware {
	allowAny := slices.Contains(allowed, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !(allowAny || slices.Contains(allowed, origin)) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Expose-Headers", common.RequestIDHeaderName)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+common.RequestIDHeaderName)
				h.Set("Access-Control-Max-Age", strconv.Itoa(600))
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenValidator turns a bearer token into a principal.
type TokenValidator interface {
	Validate(token string) (*auth.Principal, error)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", common.ErrUnauthenticated
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, strings.TrimSpace(common.BearerPrefix)) {
		return "", common.ErrInvalidAuthHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrInvalidAuthHeader
	}
	return token, nil
}

func unauthorized(w http.ResponseWriter, challenge string, err error) {
	w.Header().Set("WWW-Authenticate", challenge)
	WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthenticated", Err: err})
}

// Authenticate validates the bearer token and stores the principal in the
// request context. Requests without a valid token never reach next.
func Authenticate(tokens TokenValidator, logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
			if err != nil {
				if err == common.ErrUnauthenticated {
					unauthorized(w, "Bearer", err)
				} else {
					unauthorized(w, `Bearer error="invalid_request"`, err)
				}
				return
			}

			p, err := tokens.Validate(raw)
			if err != nil {
				logger.Debug(r.Context(), "token rejected", "error", err)
				unauthorized(w, `Bearer error="invalid_token"`, common.ErrUnauthenticated)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := auth.PrincipalFromContext(r.Context())
			if err := auth.RequireRole(p, role); err != nil {
				status, code := StatusFor(err)
				WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: err})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
