// Package models holds the client-side view of API resources.
package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Course struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	InstructorID   string    `json:"instructorId"`
	InstructorName string    `json:"instructorName"`
	MediaURL       string    `json:"mediaUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CourseInput is the writable part of a course.
type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"mediaUrl,omitempty"`
}

type Assessment struct {
	ID        string          `json:"id"`
	CourseID  string          `json:"courseId"`
	Title     string          `json:"title"`
	Questions json.RawMessage `json:"questions"`
	MaxScore  int             `json:"maxScore"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Result struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessmentId"`
	UserID       string    `json:"userId"`
	Score        int       `json:"score"`
	AttemptDate  time.Time `json:"attemptDate"`
}

// MediaTicket is a presigned URL for a course media object.
type MediaTicket struct {
	URL       string     `json:"url"`
	Key       string     `json:"key,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
