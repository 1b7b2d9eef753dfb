package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/assessments"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/courses"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/results"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either a pool or a
// transaction, so services can choose the scope per operation.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Courses(db dbx.DBTX) courses.Repository
	Assessments(db dbx.DBTX) assessments.Repository
	Results(db dbx.DBTX) results.Repository
}
