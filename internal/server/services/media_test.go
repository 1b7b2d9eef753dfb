package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/models"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	putErr error
	getErr error
	keys   []string
	ttl    time.Duration
}

func (f *fakePresigner) PresignPut(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.keys = append(f.keys, key)
	f.ttl = ttl
	return "https://s3.local/bucket/" + key + "?X-Amz-Signature=put", f.putErr
}

func (f *fakePresigner) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.keys = append(f.keys, key)
	f.ttl = ttl
	return "https://s3.local/bucket/" + key + "?X-Amz-Signature=get", f.getErr
}

func newMediaService(f *courseFixture, p ObjectPresigner) *MediaService {
	svc := NewMediaService(f.svc.db, f.rm, p, 15*time.Minute, logging.Nop())
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestStorageKey(t *testing.T) {
	k1, k2 := StorageKey("c1"), StorageKey("c1")
	assert.True(t, strings.HasPrefix(k1, "courses/c1/"))
	assert.NotEqual(t, k1, k2)
}

func TestMediaUploadAndDownload(t *testing.T) {
	f := newCourseFixture(t)
	c := f.create(t)
	p := &fakePresigner{}
	svc := newMediaService(f, p)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	up, err := svc.UploadURL(context.Background(), f.alice, c.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Key, "courses/"+c.ID+"/"))
	assert.Contains(t, up.URL, "X-Amz-Signature=put")
	assert.Equal(t, time.Date(2026, 1, 1, 12, 15, 0, 0, time.UTC), up.ExpiresAt)
	assert.Equal(t, 15*time.Minute, p.ttl)

	stored, _ := f.svc.Get(context.Background(), c.ID)
	assert.Equal(t, up.Key, stored.MediaURL)

	down, err := svc.DownloadURL(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, up.Key, down.Key)
	assert.Contains(t, down.URL, "X-Amz-Signature=get")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMediaUpload_Gates(t *testing.T) {
	f := newCourseFixture(t)
	c := f.create(t)
	svc := newMediaService(f, &fakePresigner{})

	_, err := svc.UploadURL(context.Background(), nil, c.ID)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = svc.UploadURL(context.Background(), f.bob, c.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = svc.UploadURL(context.Background(), f.alice, missing)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMediaUpload_PresignFailureKeepsCourse(t *testing.T) {
	f := newCourseFixture(t)
	c := f.create(t)
	svc := newMediaService(f, &fakePresigner{putErr: errBoom})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := svc.UploadURL(context.Background(), f.alice, c.ID)
	assert.ErrorIs(t, err, errBoom)

	stored, _ := f.svc.Get(context.Background(), c.ID)
	assert.Empty(t, stored.MediaURL)
}

func TestMedia_NotConfigured(t *testing.T) {
	f := newCourseFixture(t)
	c := f.create(t)
	svc := newMediaService(f, nil)

	_, err := svc.UploadURL(context.Background(), f.alice, c.ID)
	assert.ErrorIs(t, err, common.ErrMediaNotConfigured)

	require.NoError(t, f.rm.Courses(nil).SetMediaURL(context.Background(), c.ID, "courses/"+c.ID+"/y"))
	_, err = svc.DownloadURL(context.Background(), c.ID)
	assert.ErrorIs(t, err, common.ErrMediaNotConfigured)
}

func TestMediaDownload(t *testing.T) {
	f := newCourseFixture(t)
	svc := newMediaService(f, &fakePresigner{})

	noMedia := f.create(t)
	_, err := svc.DownloadURL(context.Background(), noMedia.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	external, err := f.svc.Create(context.Background(), f.alice, CourseInput{Title: "Ext", MediaURL: "https://youtu.be/abc"})
	require.NoError(t, err)
	got, err := svc.DownloadURL(context.Background(), external.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/abc", got.URL)
	assert.Empty(t, got.Key)

	_, err = svc.DownloadURL(context.Background(), missing)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMediaDownload_PresignError(t *testing.T) {
	f := newCourseFixture(t)
	c := f.create(t)
	require.NoError(t, f.rm.Courses(nil).SetMediaURL(context.Background(), c.ID, "courses/"+c.ID+"/y"))
	svc := newMediaService(f, &fakePresigner{getErr: errBoom})

	_, err := svc.DownloadURL(context.Background(), c.ID)
	assert.ErrorIs(t, err, errBoom)
}

func TestMediaUpload_SetMediaError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := &faultyManager{
		RepositoryManager: memory.NewRepositoryManager(),
		courses:           &fakeCoursesRepo{course: &models.Course{ID: missing, InstructorID: aliceID}, setErr: errBoom},
	}
	svc := NewMediaService(db, rm, &fakePresigner{}, time.Minute, logging.Nop())
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.UploadURL(context.Background(), &auth.Principal{UserID: aliceID, Role: models.RoleInstructor}, missing)
	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaDownload_KeyOutsideCoursePrefix(t *testing.T) {
	f := newCourseFixture(t)
	c := f.create(t)
	other := f.create(t)
	p := &fakePresigner{}
	svc := newMediaService(f, p)

	for _, key := range []string{
		"private/payroll.csv",
		"courses/" + other.ID + "/k1",
		"courses/" + c.ID,
	} {
		require.NoError(t, f.rm.Courses(nil).SetMediaURL(context.Background(), c.ID, key))
		_, err := svc.DownloadURL(context.Background(), c.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound, key)
	}
	assert.Empty(t, p.keys)
}
