package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/client/api"
	"github.com/dmitrijs2005/eduplatform/internal/client/config"
	"github.com/dmitrijs2005/eduplatform/internal/client/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const onlineCheckInterval = 5 * time.Second

// APIClient is the subset of *api.Client the REPL uses.
type APIClient interface {
	Register(ctx context.Context, name, email string, password []byte, role string) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout()
	Me(ctx context.Context) (*models.User, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	CreateCourse(ctx context.Context, in models.CourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, id string) error
	ListAssessments(ctx context.Context, courseID string) ([]models.Assessment, error)
	SubmitResult(ctx context.Context, assessmentID string, score int) (*models.Result, error)
	MyResults(ctx context.Context) ([]models.Result, error)
	UploadMedia(ctx context.Context, courseID string, r io.Reader, size int64) (*models.MediaTicket, error)
	DownloadMedia(ctx context.Context, courseID string, w io.Writer) (*models.MediaTicket, int64, error)
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	api    APIClient
	user   *models.User
	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

func NewApp(c *config.Config) (*App, error) {
	client, err := api.NewClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: client, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		fmt.Fprintf(a.out, "\n[server is %s]\n", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// when reachability changes. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
