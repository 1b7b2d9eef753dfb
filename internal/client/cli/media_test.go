package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))

	f := &fakeAPI{}
	app, out := newTestApp("upload c1 "+path+"\nupload c1\nupload c1 /does/not/exist\n", f)
	app.Root(context.Background())

	assert.Equal(t, []byte("%PDF-1.7"), f.uploaded)
	assert.Equal(t, int64(8), f.uploadSize)
	assert.Contains(t, out.String(), "Uploaded 8 bytes as courses/c1/k1")
	assert.Contains(t, out.String(), "Usage: upload <course id> <file>")
	assert.Contains(t, out.String(), "error:")
}

func TestUpload_RejectsDirectory(t *testing.T) {
	app, _ := newTestApp("", &fakeAPI{})
	err := app.upload(context.Background(), "c1", t.TempDir())
	assert.ErrorContains(t, err, "not a regular file")
}

func TestDownload(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)

	f := &fakeAPI{media: []byte("video")}
	app, out := newTestApp("download c1 lecture.mp4\n", f)
	app.Root(context.Background())

	got, err := os.ReadFile(filepath.Join(tmp, downloadDir, "lecture.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "video", string(got))
	assert.Contains(t, out.String(), "Saved 5 bytes")

	err = app.download(context.Background(), "c1", "lecture.mp4")
	assert.Error(t, err, "existing file is kept")
}

func TestDownload_RemovesPartialFile(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)

	f := &fakeAPI{downloadErr: errors.New("download failed: 403 Forbidden")}
	app, _ := newTestApp("", f)

	err := app.download(context.Background(), "c1", "c1")
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(tmp, downloadDir, "c1"))
}
