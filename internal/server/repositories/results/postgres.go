// Package results stores students' assessment attempts.
package results

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, res *models.Result) (*models.Result, error) {
	query :=
		`INSERT INTO results (id, assessment_id, user_id, score)
		 VALUES ($1, $2, $3, $4)
		 RETURNING attempt_date
		 `

	err := r.db.QueryRowContext(ctx, query, res.ID, res.AssessmentID, res.UserID, res.Score).
		Scan(&res.AttemptDate)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return res, nil
}

// ListByUser returns the user's attempts, most recent first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Result, error) {
	query :=
		`SELECT id, assessment_id, user_id, score, attempt_date FROM results
		 WHERE user_id = $1
		 ORDER BY attempt_date DESC, id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Result, 0)
	for rows.Next() {
		res := &models.Result{}
		if err := rows.Scan(&res.ID, &res.AssessmentID, &res.UserID, &res.Score, &res.AttemptDate); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}
