package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type AssessmentInput struct {
	Title     string
	Questions json.RawMessage
	MaxScore  int
}

type AssessmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAssessmentService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AssessmentService {
	return &AssessmentService{db: db, repomanager: m, logger: logger.With("module", "assessments")}
}

// ListByCourse returns the course's assessments; an unknown course is
// ErrorNotFound rather than an empty list.
func (s *AssessmentService) ListByCourse(ctx context.Context, courseID string) ([]*models.Assessment, error) {
	if err := checkID(courseID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Courses(s.db).GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repomanager.Assessments(s.db).ListByCourse(ctx, courseID)
}

func (s *AssessmentService) Get(ctx context.Context, id string) (*models.Assessment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Assessments(s.db).GetByID(ctx, id)
}

// Create adds an assessment to a course owned by the caller.
func (s *AssessmentService) Create(ctx context.Context, p *auth.Principal, courseID string, in AssessmentInput) (*models.Assessment, error) {
	if err := auth.RequireRole(p, models.RoleInstructor); err != nil {
		return nil, err
	}
	if err := checkID(courseID); err != nil {
		return nil, err
	}

	title := trim(in.Title)
	if err := validateLength("title", title, 1, maxTitleLen); err != nil {
		return nil, err
	}
	if in.MaxScore <= 0 {
		return nil, invalid("maxScore must be positive")
	}
	questions := in.Questions
	if len(questions) == 0 {
		questions = json.RawMessage(`[]`)
	}
	if !json.Valid(questions) {
		return nil, invalid("questions must be valid JSON")
	}

	var created *models.Assessment
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		course, err := s.repomanager.Courses(tx).GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if err := auth.RequireOwner(p, course.InstructorID); err != nil {
			return err
		}
		created, err = s.repomanager.Assessments(tx).Create(ctx, &models.Assessment{
			ID:        uuid.NewString(),
			CourseID:  courseID,
			Title:     title,
			Questions: questions,
			MaxScore:  in.MaxScore,
		})
		if err != nil {
			return fmt.Errorf("error creating assessment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "assessment created", "assessment_id", created.ID, "course_id", courseID)
	return created, nil
}
