// Package assessments provides PostgreSQL persistence for course assessments.
package assessments

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PostgresRepository) Create(ctx context.Context, a *models.Assessment) (*models.Assessment, error) {
	query :=
		`INSERT INTO assessments (id, course_id, title, questions, max_score)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.CourseID, a.Title, []byte(a.Questions), a.MaxScore).Scan(&a.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	query :=
		`SELECT id, course_id, title, questions, max_score, created_at FROM assessments
		 WHERE id = $1
		 `

	a := &models.Assessment{}
	var questions []byte
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.CourseID, &a.Title, &questions, &a.MaxScore, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.Questions = questions
	return a, nil
}

func (r *PostgresRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Assessment, error) {
	query :=
		`SELECT id, course_id, title, questions, max_score, created_at FROM assessments
		 WHERE course_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Assessment, 0)
	for rows.Next() {
		a := &models.Assessment{}
		var questions []byte
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &questions, &a.MaxScore, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Questions = questions
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
