package httpapi

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/services"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type CourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"mediaUrl"`
}

type CourseResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	InstructorID   string    `json:"instructorId"`
	InstructorName string    `json:"instructorName"`
	MediaURL       string    `json:"mediaUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newCourseResponse(c *models.Course) CourseResponse {
	return CourseResponse{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		InstructorID:   c.InstructorID,
		InstructorName: c.InstructorName,
		MediaURL:       c.MediaURL,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type AssessmentRequest struct {
	Title     string          `json:"title"`
	Questions json.RawMessage `json:"questions"`
	MaxScore  int             `json:"maxScore"`
}

type AssessmentResponse struct {
	ID        string          `json:"id"`
	CourseID  string          `json:"courseId"`
	Title     string          `json:"title"`
	Questions json.RawMessage `json:"questions"`
	MaxScore  int             `json:"maxScore"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newAssessmentResponse(a *models.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:        a.ID,
		CourseID:  a.CourseID,
		Title:     a.Title,
		Questions: a.Questions,
		MaxScore:  a.MaxScore,
		CreatedAt: a.CreatedAt,
	}
}

type ResultRequest struct {
	Score *int `json:"score"`
}

type ResultResponse struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessmentId"`
	UserID       string    `json:"userId"`
	Score        int       `json:"score"`
	AttemptDate  time.Time `json:"attemptDate"`
}

func newResultResponse(r *models.Result) ResultResponse {
	return ResultResponse{
		ID:           r.ID,
		AssessmentID: r.AssessmentID,
		UserID:       r.UserID,
		Score:        r.Score,
		AttemptDate:  r.AttemptDate,
	}
}

type MediaResponse struct {
	URL       string     `json:"url"`
	Key       string     `json:"key,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func newMediaResponse(t *services.MediaTicket) MediaResponse {
	resp := MediaResponse{URL: t.URL, Key: t.Key}
	if !t.ExpiresAt.IsZero() {
		exp := t.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
