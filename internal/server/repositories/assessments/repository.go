package assessments

import (
	"context"

	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Assessment) (*models.Assessment, error)
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.Assessment, error)
}
