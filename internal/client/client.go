// Package client is a typed client for the DrGym REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claude/drgym/internal/feed"
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/postdialog"
	"github.com/claude/drgym/internal/schema"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	// Fields holds per-field validation errors for 400 responses.
	Fields schema.Errors
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("status %d: %s", e.Status, e.Fields.Error())
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Session mirrors the server's login response without importing the server
// package (which would pull in pgx and other server-side dependencies).
type Session struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HTTPClient calls the DrGym API. It never retries.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Compile-time checks: HTTPClient feeds the client-side core.
var (
	_ postdialog.WorkoutFetcher = (*HTTPClient)(nil)
	_ feed.PostLister           = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *HTTPClient) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("client: %s %s: %w", method, path, decodeAPIError(resp.StatusCode, raw))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: strings.TrimSpace(string(raw))}
	var body struct {
		Error  string            `json:"error"`
		Errors map[string]string `json:"errors"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		if len(body.Errors) > 0 {
			apiErr.Fields = schema.Errors(body.Errors)
			keys := make([]string, 0, len(body.Errors))
			for k := range body.Errors {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			apiErr.Message = "validation failed: " + strings.Join(keys, ", ")
		}
	}
	return apiErr
}

// Login authenticates and keeps the returned token for later calls.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (Session, error) {
	var s Session
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Register creates an account.
func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &u)
	return u, err
}

// Me returns the profile of the authenticated user.
func (c *HTTPClient) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u)
	return u, err
}

// ListWorkouts returns the workouts of username.
func (c *HTTPClient) ListWorkouts(ctx context.Context, username string) ([]models.Workout, error) {
	var ws []models.Workout
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(username)+"/workouts", nil, nil, &ws)
	return ws, err
}

// ListFeed returns username's feed for the given filter.
func (c *HTTPClient) ListFeed(ctx context.Context, username string, filter models.FeedFilter) ([]models.Post, error) {
	params := url.Values{}
	params.Set("filter", string(filter))
	var posts []models.Post
	err := c.do(ctx, http.MethodGet, "/api/posts/feed/"+url.PathEscape(username), params, nil, &posts)
	return posts, err
}

// ListExercises returns the exercise catalog, optionally filtered by type.
func (c *HTTPClient) ListExercises(ctx context.Context, t models.ExerciseType) ([]models.Exercise, error) {
	var params url.Values
	if t != models.ExerciseUnset {
		params = url.Values{"type": {string(t)}}
	}
	var exercises []models.Exercise
	err := c.do(ctx, http.MethodGet, "/api/exercises", params, nil, &exercises)
	return exercises, err
}

// DailyExerciseCounts returns the activity calendar of username.
func (c *HTTPClient) DailyExerciseCounts(ctx context.Context, username string, start, end time.Time) ([]models.DailyCount, error) {
	params := url.Values{}
	params.Set("startDate", start.Format("2006-01-02"))
	params.Set("endDate", end.Format("2006-01-02"))
	var counts []models.DailyCount
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(username)+"/daily-exercise-count", params, nil, &counts)
	return counts, err
}

// CreateWorkout stores a workout for the authenticated user.
func (c *HTTPClient) CreateWorkout(ctx context.Context, sub models.WorkoutSubmission) (models.Workout, error) {
	var w models.Workout
	err := c.do(ctx, http.MethodPost, "/api/workouts", nil, sub, &w)
	return w, err
}

// CreatePost publishes a post that references an existing workout.
func (c *HTTPClient) CreatePost(ctx context.Context, req models.PostCreateRequest) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, http.MethodPost, "/api/posts/create", nil, req, &p)
	return p, err
}

// CreatePostWithWorkout publishes a post together with a new workout.
func (c *HTTPClient) CreatePostWithWorkout(ctx context.Context, req models.PostWithWorkoutRequest) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, http.MethodPost, "/api/posts/create_with_workout", nil, req, &p)
	return p, err
}

// AddFriend befriends friend on behalf of username.
func (c *HTTPClient) AddFriend(ctx context.Context, username, friend string) error {
	path := "/api/users/" + url.PathEscape(username) + "/friends/" + url.PathEscape(friend)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}
