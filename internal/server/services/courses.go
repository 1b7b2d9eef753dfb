package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CourseInput holds the instructor-editable fields of a course.
type CourseInput struct {
	Title       string
	Description string
	MediaURL    string
}

func (in CourseInput) normalize() (CourseInput, error) {
	out := CourseInput{Title: trim(in.Title), Description: trim(in.Description), MediaURL: trim(in.MediaURL)}
	if err := validateLength("title", out.Title, minTitleLen, maxTitleLen); err != nil {
		return out, err
	}
	if err := validateLength("description", out.Description, 0, maxDescriptionLen); err != nil {
		return out, err
	}
	if err := validateLength("mediaUrl", out.MediaURL, 0, maxMediaURLLen); err != nil {
		return out, err
	}
	return out, nil
}

type CourseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCourseService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *CourseService {
	return &CourseService{db: db, repomanager: m, logger: logger.With("module", "courses")}
}

func (s *CourseService) List(ctx context.Context) ([]*models.Course, error) {
	return s.repomanager.Courses(s.db).List(ctx)
}

func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Courses(s.db).GetByID(ctx, id)
}

// Create stores a new course owned by the caller, who must be an instructor.
func (s *CourseService) Create(ctx context.Context, p *auth.Principal, in CourseInput) (*models.Course, error) {
	if err := auth.RequireRole(p, models.RoleInstructor); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	course, err := s.repomanager.Courses(s.db).Create(ctx, &models.Course{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		InstructorID: p.UserID,
		MediaURL:     in.MediaURL,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating course: %w", err)
	}
	if course.InstructorName == "" {
		course.InstructorName = p.Name
	}

	s.logger.Info(ctx, "course created", "course_id", course.ID, "instructor_id", p.UserID)
	return course, nil
}

// Update replaces the editable fields. The course is locked, checked for
// ownership and written in one transaction, so a missing course is reported
// before an ownership mismatch.
func (s *CourseService) Update(ctx context.Context, p *auth.Principal, id string, in CourseInput) error {
	if p == nil {
		return common.ErrUnauthenticated
	}
	if err := checkID(id); err != nil {
		return err
	}
	in, err := in.normalize()
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Courses(tx)
		course, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwner(p, course.InstructorID); err != nil {
			return err
		}
		course.Title, course.Description, course.MediaURL = in.Title, in.Description, in.MediaURL
		return repo.Update(ctx, course)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "course updated", "course_id", id, "instructor_id", p.UserID)
	return nil
}

// Delete removes the course together with its assessments and results.
func (s *CourseService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if p == nil {
		return common.ErrUnauthenticated
	}
	if err := checkID(id); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Courses(tx)
		course, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwner(p, course.InstructorID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "course deleted", "course_id", id, "instructor_id", p.UserID)
	return nil
}
