// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/server/migrations"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/assessments"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/courses"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/results"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Courses(db dbx.DBTX) courses.Repository {
	return courses.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Assessments(db dbx.DBTX) assessments.Repository {
	return assessments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Results(db dbx.DBTX) results.Repository {
	return results.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
