package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

// RouterConfig carries what NewRouter needs beyond the handlers.
type RouterConfig struct {
	Tokens         TokenValidator
	AllowedOrigins []string
}

// NewRouter builds the API mux. Public routes take no token; protected
// routes pass through Authenticate and, where the endpoint is role-gated,
// RequireRole. Ownership is checked by the services once the resource is
// loaded.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authn := Authenticate(cfg.Tokens, h.Logger)
	protected := func(fn http.HandlerFunc, mws ...Middleware) http.Handler {
		return Chain(fn, append([]Middleware{authn}, mws...)...)
	}
	instructor := RequireRole(models.RoleInstructor)
	student := RequireRole(models.RoleStudent)

	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.Handle("GET /auth/me", protected(h.Me))

	mux.HandleFunc("GET /courses", h.ListCourses)
	mux.HandleFunc("GET /courses/{id}", h.GetCourse)
	mux.Handle("POST /courses", protected(h.CreateCourse, instructor))
	mux.Handle("PUT /courses/{id}", protected(h.UpdateCourse))
	mux.Handle("DELETE /courses/{id}", protected(h.DeleteCourse))

	mux.HandleFunc("GET /courses/{id}/assessments", h.ListAssessments)
	mux.Handle("POST /courses/{id}/assessments", protected(h.CreateAssessment, instructor))
	mux.HandleFunc("GET /assessments/{id}", h.GetAssessment)

	mux.Handle("POST /assessments/{id}/results", protected(h.SubmitResult, student))
	mux.Handle("GET /results/me", protected(h.MyResults))

	mux.HandleFunc("GET /courses/{id}/media", h.DownloadMedia)
	mux.Handle("POST /courses/{id}/media", protected(h.UploadMedia))

	return Chain(jsonFallback(mux, h.Logger),
		RequestID(),
		Logging(h.Logger),
		Recover(h.Logger),
		CORS(cfg.AllowedOrigins),
	)
}

// jsonFallback serves matched routes from mux and renders the mux's own
// 404 and 405 answers in the API error format, keeping the Allow header.
func jsonFallback(mux *http.ServeMux, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		sw := &statusWriter{header: http.Header{}}
		mux.ServeHTTP(sw, r)

		if sw.status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", sw.header.Get("Allow"))
			WriteError(w, ErrorParams{Code: http.StatusMethodNotAllowed, ErrCode: "method_not_allowed", Err: errMethodNotAllowed})
			return
		}
		writeServiceError(w, r, logger, errRouteNotFound)
	})
}

// statusWriter records the status and headers a handler sets and drops the body.
type statusWriter struct {
	header http.Header
	status int
}

func (s *statusWriter) Header() http.Header { return s.header }

func (s *statusWriter) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
}

func (s *statusWriter) Write(b []byte) (int, error) {
	s.WriteHeader(http.StatusOK)
	return len(b), nil
}
