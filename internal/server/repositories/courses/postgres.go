// Package courses provides PostgreSQL persistence for courses.
package courses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
)

const selectCourse = `SELECT c.id, c.title, c.description, c.instructor_id, u.name, c.media_url, c.created_at, c.updated_at
	 FROM courses c JOIN users u ON u.id = c.instructor_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(s scanner) (*models.Course, error) {
	c := &models.Course{}
	err := s.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.InstructorName,
		&c.MediaURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all courses, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Course, error) {
	query := selectCourse + `
	 ORDER BY c.created_at DESC, c.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := selectCourse + `
	 WHERE c.id = $1`

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Course, error) {
	query := selectCourse + `
	 WHERE c.id = $1
	 FOR UPDATE OF c`

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, id string) (*models.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	query :=
		`INSERT INTO courses (id, title, description, instructor_id, media_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		course.ID, course.Title, course.Description, course.InstructorID, course.MediaURL).
		Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: unknown instructor", common.ErrorValidation)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return course, nil
}

// Update overwrites the mutable fields. The owner is never changed.
func (r *PostgresRepository) Update(ctx context.Context, course *models.Course) error {
	query :=
		`UPDATE courses SET title = $2, description = $3, media_url = $4, updated_at = now()
		 WHERE id = $1
		 `

	return r.execOne(ctx, query, course.ID, course.Title, course.Description, course.MediaURL)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM courses WHERE id = $1`, id)
}

func (r *PostgresRepository) SetMediaURL(ctx context.Context, id, mediaURL string) error {
	query :=
		`UPDATE courses SET media_url = $2, updated_at = now()
		 WHERE id = $1
		 `

	return r.execOne(ctx, query, id, mediaURL)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
