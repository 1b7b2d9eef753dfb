package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/dbx"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ObjectPresigner issues time-limited URLs for direct object storage access.
type ObjectPresigner interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MediaTicket is a presigned URL together with the object key it targets.
type MediaTicket struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   ObjectPresigner
	ttl         time.Duration
	now         func() time.Time
	logger      logging.Logger
}

// NewMediaService returns a MediaService. A nil presigner leaves media
// disabled: every call fails with common.ErrMediaNotConfigured except
// downloads of externally hosted media.
func NewMediaService(db *sql.DB, m repomanager.RepositoryManager, presigner ObjectPresigner,
	ttl time.Duration, logger logging.Logger) *MediaService {
	return &MediaService{
		db:          db,
		repomanager: m,
		presigner:   presigner,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger.With("module", "media"),
	}
}

// StorageKey returns a fresh object key under the course prefix.
func StorageKey(courseID string) string {
	return storagePrefix(courseID) + uuid.NewString()
}

func storagePrefix(courseID string) string {
	return fmt.Sprintf("courses/%s/", courseID)
}

func isExternalURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// UploadURL points the course at a new object key and returns a presigned
// PUT URL for it. Only the course owner may upload.
func (s *MediaService) UploadURL(ctx context.Context, p *auth.Principal, courseID string) (*MediaTicket, error) {
	if p == nil {
		return nil, common.ErrUnauthenticated
	}
	if err := checkID(courseID); err != nil {
		return nil, err
	}
	if s.presigner == nil {
		return nil, common.ErrMediaNotConfigured
	}

	var ticket *MediaTicket
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Courses(tx)
		course, err := repo.GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if err := auth.RequireOwner(p, course.InstructorID); err != nil {
			return err
		}

		key := StorageKey(courseID)
		url, err := s.presigner.PresignPut(ctx, key, s.ttl)
		if err != nil {
			return fmt.Errorf("error presigning upload: %w", err)
		}
		if err := repo.SetMediaURL(ctx, courseID, key); err != nil {
			return err
		}
		ticket = &MediaTicket{Key: key, URL: url, ExpiresAt: s.now().Add(s.ttl)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "course media upload issued", "course_id", courseID, "key", ticket.Key)
	return ticket, nil
}

// DownloadURL returns a URL the course media can be fetched from. Media
// stored as an absolute http(s) URL is returned as is. Only keys under the
// course's own prefix are presigned; anything else is reported as missing.
func (s *MediaService) DownloadURL(ctx context.Context, courseID string) (*MediaTicket, error) {
	if err := checkID(courseID); err != nil {
		return nil, err
	}
	course, err := s.repomanager.Courses(s.db).GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.MediaURL == "" {
		return nil, fmt.Errorf("%w: course has no media", common.ErrorNotFound)
	}
	if isExternalURL(course.MediaURL) {
		return &MediaTicket{URL: course.MediaURL}, nil
	}
	if !strings.HasPrefix(course.MediaURL, storagePrefix(courseID)) {
		s.logger.Warn(ctx, "course media key outside course prefix", "course_id", courseID)
		return nil, fmt.Errorf("%w: course has no media", common.ErrorNotFound)
	}
	if s.presigner == nil {
		return nil, common.ErrMediaNotConfigured
	}

	url, err := s.presigner.PresignGet(ctx, course.MediaURL, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("error presigning download: %w", err)
	}
	return &MediaTicket{Key: course.MediaURL, URL: url, ExpiresAt: s.now().Add(s.ttl)}, nil
}
