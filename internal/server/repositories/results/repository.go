package results

import (
	"context"

	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.Result) (*models.Result, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Result, error)
}
