// Package api is a small typed client for the EduPlatform REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/client/models"
	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/netx"
)

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient returns a Client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute http(s)", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) LoggedIn() bool { return c.Token() != "" }

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, name, email string, password []byte, role string) (*models.User, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": string(password),
		"role":     role,
	}
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a session token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	body := map[string]string{"email": email, "password": string(password)}
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp.User, nil
}

func (c *Client) Logout() { c.SetToken("") }

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", true, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	if err := c.do(ctx, http.MethodGet, "/courses", false, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var out models.Course
	if err := c.do(ctx, http.MethodGet, "/courses/"+url.PathEscape(id), false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCourse(ctx context.Context, in models.CourseInput) (*models.Course, error) {
	var out models.Course
	if err := c.do(ctx, http.MethodPost, "/courses", true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCourse(ctx context.Context, id string, in models.CourseInput) error {
	return c.do(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), true, in, nil)
}

func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), true, nil, nil)
}

func (c *Client) ListAssessments(ctx context.Context, courseID string) ([]models.Assessment, error) {
	var out []models.Assessment
	path := "/courses/" + url.PathEscape(courseID) + "/assessments"
	if err := c.do(ctx, http.MethodGet, path, false, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubmitResult(ctx context.Context, assessmentID string, score int) (*models.Result, error) {
	var out models.Result
	path := "/assessments/" + url.PathEscape(assessmentID) + "/results"
	if err := c.do(ctx, http.MethodPost, path, true, map[string]int{"score": score}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyResults(ctx context.Context) ([]models.Result, error) {
	var out []models.Result
	if err := c.do(ctx, http.MethodGet, "/results/me", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadMedia asks the API for a presigned PUT URL for the course and
// streams size bytes from r to it.
func (c *Client) UploadMedia(ctx context.Context, courseID string, r io.Reader, size int64) (*models.MediaTicket, error) {
	var t models.MediaTicket
	path := "/courses/" + url.PathEscape(courseID) + "/media"
	if err := c.do(ctx, http.MethodPost, path, true, nil, &t); err != nil {
		return nil, err
	}
	if err := netx.UploadToPresignedURL(ctx, c.http, t.URL, r, size); err != nil {
		return nil, err
	}
	return &t, nil
}

// DownloadMedia resolves the course media URL and streams the object into w.
func (c *Client) DownloadMedia(ctx context.Context, courseID string, w io.Writer) (*models.MediaTicket, int64, error) {
	var t models.MediaTicket
	path := "/courses/" + url.PathEscape(courseID) + "/media"
	if err := c.do(ctx, http.MethodGet, path, false, nil, &t); err != nil {
		return nil, 0, err
	}
	n, err := netx.DownloadFromPresignedURL(ctx, c.http, t.URL, w)
	if err != nil {
		return nil, 0, err
	}
	return &t, n, nil
}

// Ping reports whether the API answers its health endpoint with 200.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", false, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
	}
	return apiErr
}
