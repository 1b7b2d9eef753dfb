package models

import (
	"encoding/json"
	"time"
)

// Assessment belongs to a course. Questions is an opaque JSON document
// authored by the instructor.
type Assessment struct {
	ID        string
	CourseID  string
	Title     string
	Questions json.RawMessage
	MaxScore  int
	CreatedAt time.Time
}

// Result records one student's attempt at an assessment.
type Result struct {
	ID           string
	AssessmentID string
	UserID       string
	Score        int
	AttemptDate  time.Time
}
