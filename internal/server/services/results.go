package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type ResultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewResultService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ResultService {
	return &ResultService{db: db, repomanager: m, logger: logger.With("module", "results")}
}

// Submit records a student's score for an assessment. The score must lie
// within [0, MaxScore].
func (s *ResultService) Submit(ctx context.Context, p *auth.Principal, assessmentID string, score int) (*models.Result, error) {
	if err := auth.RequireRole(p, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := checkID(assessmentID); err != nil {
		return nil, err
	}

	a, err := s.repomanager.Assessments(s.db).GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if score < 0 || score > a.MaxScore {
		return nil, invalid("score must be between 0 and %d", a.MaxScore)
	}

	res, err := s.repomanager.Results(s.db).Create(ctx, &models.Result{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		UserID:       p.UserID,
		Score:        score,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving result: %w", err)
	}

	s.logger.Info(ctx, "result submitted", "assessment_id", assessmentID, "user_id", p.UserID)
	return res, nil
}

// ListMine returns the caller's own attempts.
func (s *ResultService) ListMine(ctx context.Context, p *auth.Principal) ([]*models.Result, error) {
	if p == nil {
		return nil, common.ErrUnauthenticated
	}
	return s.repomanager.Results(s.db).ListByUser(ctx, p.UserID)
}
