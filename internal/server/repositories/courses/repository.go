package courses

import (
	"context"

	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	// GetForUpdate locks the course row until the surrounding
	// transaction ends. It must be called with a *sql.Tx.
	GetForUpdate(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	SetMediaURL(ctx context.Context, id, mediaURL string) error
}
