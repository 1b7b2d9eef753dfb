// Package memory provides an in-memory RepositoryManager. It mirrors the
// constraint behaviour of the PostgreSQL schema (unique email, foreign
// keys, cascades) and is used by service and handler tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/assessments"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/courses"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/results"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/users"
)

type store struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[string]models.User
	courses     map[string]models.Course
	assessments map[string]models.Assessment
	results     map[string]models.Result
}

// RepositoryManager ignores the DBTX handle: every repository it vends
// operates on the same store.
type RepositoryManager struct {
	s *store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{s: &store{
		now:         time.Now,
		users:       map[string]models.User{},
		courses:     map[string]models.Course{},
		assessments: map[string]models.Assessment{},
		results:     map[string]models.Result{},
	}}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository             { return userRepo{m.s} }
func (m *RepositoryManager) Courses(dbx.DBTX) courses.Repository         { return courseRepo{m.s} }
func (m *RepositoryManager) Assessments(dbx.DBTX) assessments.Repository { return assessmentRepo{m.s} }
func (m *RepositoryManager) Results(dbx.DBTX) results.Repository         { return resultRepo{m.s} }

type userRepo struct{ s *store }

func (r userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return u, nil
}

func (r userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type courseRepo struct{ s *store }

// withInstructor must be called with the lock held.
func (r courseRepo) withInstructor(c models.Course) *models.Course {
	c.InstructorName = r.s.users[c.InstructorID].Name
	return &c
}

func (r courseRepo) List(context.Context) ([]*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Course, 0, len(r.s.courses))
	for _, c := range r.s.courses {
		list = append(list, r.withInstructor(c))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r courseRepo) GetByID(_ context.Context, id string) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.withInstructor(c), nil
}

func (r courseRepo) GetForUpdate(ctx context.Context, id string) (*models.Course, error) {
	return r.GetByID(ctx, id)
}

func (r courseRepo) Create(_ context.Context, c *models.Course) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[c.InstructorID]; !ok {
		return nil, common.ErrorValidation
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.courses[c.ID] = *c
	return r.withInstructor(*c), nil
}

func (r courseRepo) Update(_ context.Context, c *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.courses[c.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Title, cur.Description, cur.MediaURL = c.Title, c.Description, c.MediaURL
	cur.UpdatedAt = r.s.now()
	r.s.courses[c.ID] = cur
	return nil
}

func (r courseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.courses, id)
	for aid, a := range r.s.assessments {
		if a.CourseID != id {
			continue
		}
		delete(r.s.assessments, aid)
		for rid, res := range r.s.results {
			if res.AssessmentID == aid {
				delete(r.s.results, rid)
			}
		}
	}
	return nil
}

func (r courseRepo) SetMediaURL(_ context.Context, id, mediaURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.courses[id]
	if !ok {
		return common.ErrorNotFound
	}
	cur.MediaURL = mediaURL
	cur.UpdatedAt = r.s.now()
	r.s.courses[id] = cur
	return nil
}

type assessmentRepo struct{ s *store }

func (r assessmentRepo) Create(_ context.Context, a *models.Assessment) (*models.Assessment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[a.CourseID]; !ok {
		return nil, common.ErrorNotFound
	}
	a.CreatedAt = r.s.now()
	r.s.assessments[a.ID] = *a
	return a, nil
}

func (r assessmentRepo) GetByID(_ context.Context, id string) (*models.Assessment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assessments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r assessmentRepo) ListByCourse(_ context.Context, courseID string) ([]*models.Assessment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Assessment, 0)
	for _, a := range r.s.assessments {
		if a.CourseID == courseID {
			a := a
			list = append(list, &a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

type resultRepo struct{ s *store }

func (r resultRepo) Create(_ context.Context, res *models.Result) (*models.Result, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assessments[res.AssessmentID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.s.users[res.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	res.AttemptDate = r.s.now()
	r.s.results[res.ID] = *res
	return res, nil
}

func (r resultRepo) ListByUser(_ context.Context, userID string) ([]*models.Result, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Result, 0)
	for _, res := range r.s.results {
		if res.UserID == userID {
			res := res
			list = append(list, &res)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].AttemptDate.Equal(list[j].AttemptDate) {
			return list[i].AttemptDate.After(list[j].AttemptDate)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}
