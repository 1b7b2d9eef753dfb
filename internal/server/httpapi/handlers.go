package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Profile(ctx context.Context, p *auth.Principal) (*models.PublicUser, error)
}

type CourseService interface {
	List(ctx context.Context) ([]*models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, p *auth.Principal, in services.CourseInput) (*models.Course, error)
	Update(ctx context.Context, p *auth.Principal, id string, in services.CourseInput) error
	Delete(ctx context.Context, p *auth.Principal, id string) error
}

type AssessmentService interface {
	ListByCourse(ctx context.Context, courseID string) ([]*models.Assessment, error)
	Get(ctx context.Context, id string) (*models.Assessment, error)
	Create(ctx context.Context, p *auth.Principal, courseID string, in services.AssessmentInput) (*models.Assessment, error)
}

type ResultService interface {
	Submit(ctx context.Context, p *auth.Principal, assessmentID string, score int) (*models.Result, error)
	ListMine(ctx context.Context, p *auth.Principal) ([]*models.Result, error)
}

type MediaService interface {
	UploadURL(ctx context.Context, p *auth.Principal, courseID string) (*services.MediaTicket, error)
	DownloadURL(ctx context.Context, courseID string) (*services.MediaTicket, error)
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers holds the services the HTTP API delegates to.
type Handlers struct {
	Users       UserService
	Courses     CourseService
	Assessments AssessmentService
	Results     ResultService
	Media       MediaService
	DB          Pinger
	Logger      logging.Logger
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.Logger, err)
}

func principal(r *http.Request) *auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	u, err := h.Users.Register(r.Context(), services.RegisterInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, LoginResponse{Token: res.Token, User: res.User})
}

// Me returns the stored profile of the caller identified by the token.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Profile(r.Context(), principal(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handlers) ListCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Courses.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapSlice(list, newCourseResponse))
}

func (h *Handlers) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.Courses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, newCourseResponse(c))
}

func (h *Handlers) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	c, err := h.Courses.Create(r.Context(), principal(r), services.CourseInput(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/courses/"+c.ID)
	WriteJSON(w, http.StatusCreated, newCourseResponse(c))
}

func (h *Handlers) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Courses.Update(r.Context(), principal(r), r.PathValue("id"), services.CourseInput(req)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.Courses.Delete(r.Context(), principal(r), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListAssessments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Assessments.ListByCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapSlice(list, newAssessmentResponse))
}

func (h *Handlers) GetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := h.Assessments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, newAssessmentResponse(a))
}

func (h *Handlers) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	a, err := h.Assessments.Create(r.Context(), principal(r), r.PathValue("id"), services.AssessmentInput(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/assessments/"+a.ID)
	WriteJSON(w, http.StatusCreated, newAssessmentResponse(a))
}

func (h *Handlers) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req ResultRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Score == nil {
		h.fail(w, r, errScoreRequired)
		return
	}
	res, err := h.Results.Submit(r.Context(), principal(r), r.PathValue("id"), *req.Score)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, newResultResponse(res))
}

func (h *Handlers) MyResults(w http.ResponseWriter, r *http.Request) {
	list, err := h.Results.ListMine(r.Context(), principal(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapSlice(list, newResultResponse))
}

func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	t, err := h.Media.UploadURL(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, newMediaResponse(t))
}

func (h *Handlers) DownloadMedia(w http.ResponseWriter, r *http.Request) {
	t, err := h.Media.DownloadURL(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, newMediaResponse(t))
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports liveness and database reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			h.Logger.Warn(r.Context(), "health check: database unreachable", "error", err)
			WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "down"})
			return
		}
	}
	WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}
