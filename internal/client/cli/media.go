package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/eduplatform/internal/filex"
)

const downloadDir = "downloads"

func (a *App) upload(ctx context.Context, courseID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	t, err := a.api.UploadMedia(ctx, courseID, f, st.Size())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %d bytes as %s\n", st.Size(), t.Key)
	return nil
}

func (a *App) download(ctx context.Context, courseID, name string) (err error) {
	dir, err := filex.EnsureSubdDir(downloadDir)
	if err != nil {
		return err
	}
	f, err := filex.CreateNew(dir, name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	_, n, err := a.api.DownloadMedia(ctx, courseID, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", n, f.Name())
	return nil
}
